// Package run drives whole extraction runs: it pulls each source file from
// the provider, expands containers, feeds the streams through the filter
// engine into the sink, and aggregates the counters into a run report.
//
// Two run modes exist, mirroring the tool's operational history:
// - Normal mode aborts the run on the first file failure.
// - Long run mode records failures and retries the file in a bounded
//   iterative loop with exponential backoff, then moves on.
//
// The orchestrator is the only writer of the aggregate counters; engines
// hand their per-file results back by value, which keeps the filter engine
// reentrant.
package run

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/CaioVictorMota/whitedwarf/internal/archive"
	"github.com/CaioVictorMota/whitedwarf/internal/config"
	"github.com/CaioVictorMota/whitedwarf/internal/constants"
	"github.com/CaioVictorMota/whitedwarf/internal/errors"
	"github.com/CaioVictorMota/whitedwarf/internal/filter"
	"github.com/CaioVictorMota/whitedwarf/internal/io/fs"
	"github.com/CaioVictorMota/whitedwarf/internal/sink"
	"github.com/CaioVictorMota/whitedwarf/internal/source"
)

// Orchestrator processes the files of one run, one at a time.
type Orchestrator struct {
	cfg      *config.Config
	provider source.Provider
	log      *slog.Logger

	mu     sync.Mutex
	report Report
}

// New creates an orchestrator for one run. Every run gets a fresh id that
// tags all its log entries and its report.
func New(cfg *config.Config, provider source.Provider) *Orchestrator {
	runID := uuid.NewString()
	return &Orchestrator{
		cfg:      cfg,
		provider: provider,
		log:      slog.Default().With("run_id", runID),
		report:   Report{RunID: runID},
	}
}

// Run lists the source files and processes them in order. In normal mode
// the first failure aborts the run; in long run mode failures are retried
// and then recorded. The returned report is final.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	if err := o.setupDirs(); err != nil {
		return o.Snapshot(), err
	}

	ids, err := o.provider.List(ctx)
	if err != nil {
		return o.Snapshot(), err
	}
	o.log.Info("source files listed", "total", len(ids))

	failures := errors.NewMultiError()
	for _, id := range ids {
		if o.cfg.LongRun {
			err = o.processWithRetry(ctx, id)
			if err != nil && ctx.Err() != nil {
				return o.Snapshot(), ctx.Err()
			}
			// The run moves on to the next file; the failure is
			// on the report already.
			failures.Add(err)
			continue
		}

		if err = o.processOne(ctx, id); err != nil {
			return o.Snapshot(), errors.Wrapf(err, "processing file %s", id)
		}
	}

	o.cleanupDirs()

	report := o.Snapshot()
	if o.cfg.Report {
		report.Log(o.log)
	}
	return report, failures.ErrorOrNil()
}

// Snapshot returns a copy of the current report, safe for concurrent use
// with an ongoing run.
func (o *Orchestrator) Snapshot() Report {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := o.report
	report.Errors = append([]string(nil), o.report.Errors...)
	return report
}

// processWithRetry keeps reprocessing one file until it succeeds or the
// retry budget runs out. The loop is iterative on purpose: the original
// long run mode retried by recursing into itself without a depth bound.
func (o *Orchestrator) processWithRetry(ctx context.Context, id string) error {
	alertCount := 0
	for attempt := 0; attempt < constants.MaxRetriesPerFile; attempt++ {
		err := o.processOne(ctx, id)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		o.recordError(err)
		o.log.Warn("error while processing file, long run will retry",
			"file_id", id, "attempt", attempt+1, "error", err)

		alertCount++
		if alertCount >= constants.LongRunAlertEvery {
			o.log.Warn("this run keeps failing on the same file, consider ending it",
				"file_id", id)
			alertCount = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(Backoff(attempt)):
		}
	}

	err := errors.Wrapf(errors.ErrRetriesExhausted, "file id %s", id)
	o.recordError(err)
	return err
}

// processOne downloads a single file and runs it through the pipeline.
func (o *Orchestrator) processOne(ctx context.Context, id string) error {
	name, rc, err := o.provider.Fetch(ctx, id)
	if err != nil {
		return err
	}

	path, err := o.download(name, rc)
	if err != nil {
		return err
	}
	o.addDownloaded()
	o.log.Debug("file downloaded", "file", name)

	if err := o.processFile(ctx, path); err != nil {
		return err
	}

	if o.cfg.DeleteTmpFiles {
		if err := os.Remove(path); err != nil {
			o.log.Warn("could not remove downloaded file", "path", path, "error", err)
		}
	}
	return nil
}

// processFile runs one downloaded file through the engine, expanding zip
// containers member by member.
func (o *Orchestrator) processFile(ctx context.Context, path string) error {
	if archive.IsArchive(path) {
		o.log.Debug("zip file found, walking members", "path", path)
		return archive.Walk(ctx, path, func(name string, r io.Reader) error {
			dr := fs.Decompress(name, r)
			defer dr.Close()
			return o.processStream(ctx, name, dr)
		})
	}

	rc, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return o.processStream(ctx, filepath.Base(path), rc)
}

// processStream filters one line stream into one output file.
func (o *Orchestrator) processStream(ctx context.Context, name string, r io.Reader) error {
	w, err := sink.NewWriter(o.cfg.ExtractionDir, o.cfg.OutputPrefix, name)
	if err != nil {
		return err
	}

	engine := filter.NewEngine(o.cfg.TargetCountyCode, w)
	readErr := fs.NewLineReader(r, 0).ReadLines(ctx, engine)
	closeErr := w.Close()
	if readErr != nil {
		return readErr
	}
	if closeErr != nil {
		return closeErr
	}

	cleansed := false
	if o.cfg.DeleteEmptyOutputs {
		if cleansed, err = w.Cleanse(o.cfg.CleanseSize); err != nil {
			return err
		}
	}

	result := engine.Result()
	o.recordFile(filepath.Base(w.Path()), result, cleansed)

	if o.cfg.Verbose {
		if result.CompaniesKept == 0 {
			o.log.Debug("no companies found according to search parameters",
				"file", name, "companies_seen", result.CompaniesSeen)
		} else {
			o.log.Debug("file processed",
				"file", name,
				"companies_seen", result.CompaniesSeen,
				"companies_kept", result.CompaniesKept)
		}
	}
	return nil
}

// download materializes a fetched stream in the download directory and
// returns the local path.
func (o *Orchestrator) download(name string, rc io.ReadCloser) (string, error) {
	defer rc.Close()

	path := filepath.Join(o.cfg.DownloadDir, filepath.Base(name))
	fd, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "creating download file %s", path)
	}
	if _, err := io.Copy(fd, rc); err != nil {
		fd.Close()
		return "", errors.Wrapf(err, "downloading %s", name)
	}
	if err := fd.Close(); err != nil {
		return "", errors.Wrapf(err, "closing download file %s", path)
	}
	return path, nil
}

func (o *Orchestrator) setupDirs() error {
	if err := os.MkdirAll(o.cfg.DownloadDir, 0755); err != nil {
		return errors.Wrapf(err, "creating download directory %s", o.cfg.DownloadDir)
	}
	if err := os.MkdirAll(o.cfg.ExtractionDir, 0755); err != nil {
		return errors.Wrapf(err, "creating extraction directory %s", o.cfg.ExtractionDir)
	}
	return nil
}

// cleanupDirs removes the download directory after a run that deletes its
// temporary files. The directory must already be empty.
func (o *Orchestrator) cleanupDirs() {
	if !o.cfg.DeleteTmpFiles {
		return
	}
	if err := os.Remove(o.cfg.DownloadDir); err != nil {
		o.log.Debug("download directory not removed", "error", err)
		return
	}
	o.log.Debug("environment cleaned up")
}

func (o *Orchestrator) addDownloaded() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.report.FilesDownloaded++
}

func (o *Orchestrator) recordFile(outputName string, result filter.Result, cleansed bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.report.FilesParsed++
	if cleansed {
		o.report.FilesCleansed++
	} else {
		o.report.FilesProcessed++
	}
	o.report.CompaniesSeen += result.CompaniesSeen
	o.report.CompaniesKept += result.CompaniesKept
	o.report.LastFileParsed = outputName
}

func (o *Orchestrator) recordError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.report.RetryErrors++
	o.report.Errors = append(o.report.Errors, err.Error())
}
