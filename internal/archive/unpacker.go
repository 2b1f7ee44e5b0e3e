// Package archive implements the container unpacker. Source files arriving
// as zip containers are walked member by member, each member presented as a
// named stream, without ever extracting the whole archive to disk.
package archive

import (
	"archive/zip"
	"context"
	"io"
	"strings"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
)

// WalkFunc is invoked once per archive member with the member's name and an
// open stream of its raw bytes. The stream is only valid for the duration
// of the call.
type WalkFunc func(name string, r io.Reader) error

// IsArchive reports whether the file name denotes a zip container.
func IsArchive(name string) bool {
	return strings.HasSuffix(name, ".zip")
}

// Walk iterates the members of a zip archive in archive order, opening one
// member stream at a time. Directory entries are skipped. Iteration stops
// at the first member error or when the context is canceled.
func Walk(ctx context.Context, path string, fn WalkFunc) error {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return errors.Wrapf(err, "opening archive %s", path)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rc, err := member.Open()
		if err != nil {
			return errors.Wrapf(err, "opening archive member %s", member.Name)
		}
		err = fn(member.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
