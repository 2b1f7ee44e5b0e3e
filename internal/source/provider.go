// Package source provides the file sources WhiteDwarf pulls PGDASD extracts
// from. The run orchestrator only sees the Provider interface; whether the
// bytes come out of a Postgres database or a local directory is invisible
// to the rest of the pipeline.
package source

import (
	"context"
	"io"
)

// Provider lists and fetches the raw source files of one run.
type Provider interface {
	// List returns the identifiers of the files to process, already
	// ordered, limited and offset according to the run configuration.
	List(ctx context.Context) ([]string, error)

	// Fetch returns the file's name and an open stream of its raw
	// bytes. The caller owns the stream and must close it.
	Fetch(ctx context.Context, id string) (name string, rc io.ReadCloser, err error)
}
