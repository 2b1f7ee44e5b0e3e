package source

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
)

// Dir serves source files from a local directory. It mirrors the Postgres
// provider's ordering, limit and offset semantics so runs behave the same
// regardless of where the files come from.
type Dir struct {
	path string
	opts Options
}

// NewDir creates a provider over the given directory.
func NewDir(path string, opts Options) *Dir {
	return &Dir{
		path: path,
		opts: opts,
	}
}

// List returns the directory's file names ordered by size.
func (d *Dir) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, errors.Wrapf(err, "listing source directory %s", d.path)
	}

	type fileEntry struct {
		name string
		size int64
	}
	var files []fileEntry
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "stating %s", entry.Name())
		}
		files = append(files, fileEntry{name: entry.Name(), size: info.Size()})
	}

	sort.Slice(files, func(i, j int) bool {
		if d.opts.SizeOrder == "asc" {
			return files[i].size < files[j].size
		}
		return files[i].size > files[j].size
	})

	if d.opts.Offset > 0 {
		if d.opts.Offset >= len(files) {
			files = nil
		} else {
			files = files[d.opts.Offset:]
		}
	}
	if d.opts.Limit > 0 && d.opts.Limit < len(files) {
		files = files[:d.opts.Limit]
	}

	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.name)
	}
	return ids, nil
}

// Fetch opens one file of the directory.
func (d *Dir) Fetch(ctx context.Context, id string) (string, io.ReadCloser, error) {
	path := filepath.Join(d.path, filepath.Base(id))
	fd, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, errors.Wrapf(errors.ErrFileNotFound, "%s", id)
		}
		return "", nil, errors.Wrapf(errors.ErrFetchFailed, "%s: %v", id, err)
	}
	return filepath.Base(id), fd, nil
}
