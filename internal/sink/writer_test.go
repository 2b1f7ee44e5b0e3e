package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CaioVictorMota/whitedwarf/internal/testutil"
)

func TestWriterWritesPrefixedFile(t *testing.T) {
	dir := testutil.TempDir(t)

	w, err := NewWriter(dir, "filiais_", "input.txt")
	testutil.AssertNoError(t, err)

	_, err = w.Write([]byte("STARTS\n"))
	testutil.AssertNoError(t, err)
	_, err = w.Write([]byte("ENDS\n"))
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Close())

	testutil.AssertEqual(t, filepath.Join(dir, "filiais_input.txt"), w.Path())
	testutil.AssertEqual(t, int64(12), w.BytesWritten())
	testutil.AssertFileContents(t, w.Path(), "STARTS\nENDS\n")
}

func TestWriterCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(testutil.TempDir(t), "nested", "out")

	w, err := NewWriter(dir, "filiais_", "input.txt")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Close())

	if _, err := os.Stat(w.Path()); err != nil {
		t.Errorf("expected output file to exist: %v", err)
	}
}

func TestWriterStripsMemberPath(t *testing.T) {
	dir := testutil.TempDir(t)

	w, err := NewWriter(dir, "filiais_", "nested/dir/member.txt")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Close())

	testutil.AssertEqual(t, filepath.Join(dir, "filiais_member.txt"), w.Path())
}

func TestWriterCleanse(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		minSize     int64
		wantRemoved bool
	}{
		{
			name:        "small file removed",
			content:     "STARTS\nENDS\n",
			minSize:     50,
			wantRemoved: true,
		},
		{
			name:        "useful file kept",
			content:     "STARTS\nBLOCKSTARTS|1111|\nCOUNTYSTARTS|3685|\ndata\nCOUNTYENDS\nENDS\n",
			minSize:     50,
			wantRemoved: false,
		},
		{
			name:        "exact threshold kept",
			content:     "0123456789",
			minSize:     10,
			wantRemoved: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.TempDir(t)

			w, err := NewWriter(dir, "filiais_", "input.txt")
			testutil.AssertNoError(t, err)
			_, err = w.Write([]byte(tt.content))
			testutil.AssertNoError(t, err)
			testutil.AssertNoError(t, w.Close())

			removed, err := w.Cleanse(tt.minSize)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, tt.wantRemoved, removed)

			_, statErr := os.Stat(w.Path())
			if tt.wantRemoved && !os.IsNotExist(statErr) {
				t.Errorf("expected file to be removed, stat returned %v", statErr)
			}
			if !tt.wantRemoved && statErr != nil {
				t.Errorf("expected file to remain: %v", statErr)
			}
		})
	}
}

func TestWriterCloseTwice(t *testing.T) {
	dir := testutil.TempDir(t)

	w, err := NewWriter(dir, "filiais_", "input.txt")
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, w.Close())
	testutil.AssertNoError(t, w.Close())
}
