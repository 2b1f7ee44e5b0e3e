// Package sink persists the filter engine's output. One Writer produces one
// processed branches file, optionally cleansed afterwards when it carries no
// useful data.
package sink

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
)

// Writer writes one processed file. It satisfies io.Writer so the filter
// engine can emit lines straight into it.
type Writer struct {
	path    string
	file    *os.File
	buf     *bufio.Writer
	written int64
	closed  bool
}

// NewWriter creates the output file <dir>/<prefix><name>, creating the
// directory when missing. The name is stripped to its base to keep archive
// member paths from escaping the extraction directory.
func NewWriter(dir, prefix, name string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating extraction directory %s", dir)
	}

	path := filepath.Join(dir, prefix+filepath.Base(name))
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "creating output file %s", path)
	}

	return &Writer{
		path: path,
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// Write appends bytes to the output file.
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.written += int64(n)
	if err != nil {
		return n, errors.Wrapf(errors.ErrWriteFailed, "%s: %v", w.path, err)
	}
	return n, nil
}

// Path returns the output file path.
func (w *Writer) Path() string {
	return w.path
}

// BytesWritten returns how many bytes have been written so far.
func (w *Writer) BytesWritten() int64 {
	return w.written
}

// Close flushes and closes the output file. Safe to call twice.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.buf.Flush(); err != nil {
		w.file.Close()
		return errors.Wrapf(errors.ErrWriteFailed, "%s: %v", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return errors.Wrapf(errors.ErrWriteFailed, "%s: %v", w.path, err)
	}
	return nil
}

// Cleanse removes the closed output file when it is smaller than minSize
// bytes, reporting whether it was removed. Files below the threshold hold
// nothing but the envelope markers.
func (w *Writer) Cleanse(minSize int64) (bool, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return false, errors.Wrapf(err, "stating output file %s", w.path)
	}
	if info.Size() >= minSize {
		return false, nil
	}
	if err := os.Remove(w.path); err != nil {
		return false, errors.Wrapf(err, "removing output file %s", w.path)
	}
	return true, nil
}
