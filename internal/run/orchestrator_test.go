package run

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/CaioVictorMota/whitedwarf/internal/config"
	"github.com/CaioVictorMota/whitedwarf/internal/errors"
	"github.com/CaioVictorMota/whitedwarf/internal/source"
	"github.com/CaioVictorMota/whitedwarf/internal/testutil"
)

const sampleFile = "STARTS\n" +
	"BLOCKSTARTS|1111|\n" +
	"COUNTYSTARTS|3685|\n" +
	"data-row-A\n" +
	"COUNTYENDS\n" +
	"ENDS\n"

const sampleFiltered = sampleFile

const emptyResultFile = "STARTS\n" +
	"BLOCKSTARTS|3685|\n" +
	"COUNTYSTARTS|3685|\n" +
	"data-row-A\n" +
	"COUNTYENDS\n" +
	"ENDS\n"

// testConfig returns a run configuration pointing all directories at
// temporary locations.
func testConfig(t *testing.T, sourceDir string) *config.Config {
	t.Helper()

	base := testutil.TempDir(t)
	return &config.Config{
		TargetCountyCode: "|3685|",
		SourceDir:        sourceDir,
		DownloadDir:      filepath.Join(base, "tmpfiles"),
		ExtractionDir:    filepath.Join(base, "filiais"),
		OutputPrefix:     "filiais_",
		CleanseSize:      50,
		SizeOrder:        "desc",
		LogLevel:         "error",
	}
}

func newDirProvider(cfg *config.Config) source.Provider {
	return source.NewDir(cfg.SourceDir, source.Options{
		SizeOrder: cfg.SizeOrder,
		Limit:     cfg.FilesLimit,
		Offset:    cfg.FilesOffset,
	})
}

func TestRunProcessesPlainFile(t *testing.T) {
	sourceDir := testutil.TempDir(t)
	testutil.CreateFileTree(t, sourceDir, map[string]string{
		"extract-01.txt": sampleFile,
	})

	cfg := testConfig(t, sourceDir)
	report, err := New(cfg, newDirProvider(cfg)).Run(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, report.FilesDownloaded)
	testutil.AssertEqual(t, 1, report.FilesParsed)
	testutil.AssertEqual(t, 1, report.FilesProcessed)
	testutil.AssertEqual(t, 1, report.CompaniesSeen)
	testutil.AssertEqual(t, 1, report.CompaniesKept)
	testutil.AssertEqual(t, "filiais_extract-01.txt", report.LastFileParsed)

	testutil.AssertFileContents(t,
		filepath.Join(cfg.ExtractionDir, "filiais_extract-01.txt"), sampleFiltered)
}

func TestRunExpandsZipArchives(t *testing.T) {
	sourceDir := testutil.TempDir(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, member := range []struct{ name, content string }{
		{"member-a.txt", sampleFile},
		{"member-b.txt", emptyResultFile},
	} {
		w, err := zw.Create(member.name)
		testutil.AssertNoError(t, err)
		_, err = w.Write([]byte(member.content))
		testutil.AssertNoError(t, err)
	}
	testutil.AssertNoError(t, zw.Close())
	testutil.AssertNoError(t,
		os.WriteFile(filepath.Join(sourceDir, "bundle.zip"), buf.Bytes(), 0644))

	cfg := testConfig(t, sourceDir)
	report, err := New(cfg, newDirProvider(cfg)).Run(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 1, report.FilesDownloaded)
	testutil.AssertEqual(t, 2, report.FilesParsed)
	testutil.AssertEqual(t, 2, report.CompaniesSeen)
	testutil.AssertEqual(t, 1, report.CompaniesKept)

	testutil.AssertFileContents(t,
		filepath.Join(cfg.ExtractionDir, "filiais_member-a.txt"), sampleFiltered)
	testutil.AssertFileContents(t,
		filepath.Join(cfg.ExtractionDir, "filiais_member-b.txt"), "STARTS\nENDS\n")
}

func TestRunCleansesEmptyOutputs(t *testing.T) {
	sourceDir := testutil.TempDir(t)
	testutil.CreateFileTree(t, sourceDir, map[string]string{
		"useful.txt": sampleFile,
		"empty.txt":  emptyResultFile,
	})

	cfg := testConfig(t, sourceDir)
	cfg.DeleteEmptyOutputs = true

	report, err := New(cfg, newDirProvider(cfg)).Run(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 2, report.FilesParsed)
	testutil.AssertEqual(t, 1, report.FilesProcessed)
	testutil.AssertEqual(t, 1, report.FilesCleansed)

	if _, err := os.Stat(filepath.Join(cfg.ExtractionDir, "filiais_empty.txt")); !os.IsNotExist(err) {
		t.Errorf("expected cleansed output to be removed, stat returned %v", err)
	}
	testutil.AssertFileContents(t,
		filepath.Join(cfg.ExtractionDir, "filiais_useful.txt"), sampleFiltered)
}

func TestRunDeletesTmpFiles(t *testing.T) {
	sourceDir := testutil.TempDir(t)
	testutil.CreateFileTree(t, sourceDir, map[string]string{
		"extract-01.txt": sampleFile,
	})

	cfg := testConfig(t, sourceDir)
	cfg.DeleteTmpFiles = true

	_, err := New(cfg, newDirProvider(cfg)).Run(context.Background())
	testutil.AssertNoError(t, err)

	if _, err := os.Stat(cfg.DownloadDir); !os.IsNotExist(err) {
		t.Errorf("expected download directory to be removed, stat returned %v", err)
	}
}

// flakyProvider fails Fetch a configured number of times before handing the
// file out.
type flakyProvider struct {
	failures int
	content  string
	fetches  int
}

func (p *flakyProvider) List(ctx context.Context) ([]string, error) {
	return []string{"flaky.txt"}, nil
}

func (p *flakyProvider) Fetch(ctx context.Context, id string) (string, io.ReadCloser, error) {
	p.fetches++
	if p.fetches <= p.failures {
		return "", nil, errors.ErrFetchFailed
	}
	return id, io.NopCloser(bytes.NewReader([]byte(p.content))), nil
}

func TestRunNormalModeAbortsOnFailure(t *testing.T) {
	cfg := testConfig(t, testutil.TempDir(t))
	provider := &flakyProvider{failures: 1, content: sampleFile}

	_, err := New(cfg, provider).Run(context.Background())
	testutil.AssertError(t, err, "fetch failed")
	testutil.AssertEqual(t, 1, provider.fetches)
}

func TestRunLongRunRetriesUntilSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("long run retry test sleeps through backoff")
	}

	cfg := testConfig(t, testutil.TempDir(t))
	cfg.LongRun = true
	cfg.Report = true
	cfg.DeleteEmptyOutputs = true
	cfg.DeleteTmpFiles = true

	provider := &flakyProvider{failures: 1, content: sampleFile}
	report, err := New(cfg, provider).Run(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, 2, provider.fetches)
	testutil.AssertEqual(t, 1, report.FilesParsed)
	testutil.AssertEqual(t, 1, report.RetryErrors)
	testutil.AssertEqual(t, 1, len(report.Errors))
	testutil.AssertContains(t, report.Errors[0], "fetch failed")
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	cfg := testConfig(t, testutil.TempDir(t))
	o := New(cfg, newDirProvider(cfg))

	o.recordError(errors.New("first"))
	snapshot := o.Snapshot()
	o.recordError(errors.New("second"))

	testutil.AssertEqual(t, 1, len(snapshot.Errors))
	testutil.AssertEqual(t, 2, len(o.Snapshot().Errors))
}

func TestBackoffBounds(t *testing.T) {
	for attempt := 0; attempt < 20; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d: backoff %v below one second", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v above cap with jitter", attempt, d)
		}
	}
}
