package source

import (
	"context"
	"io"
	"testing"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
	"github.com/CaioVictorMota/whitedwarf/internal/testutil"
)

func newTestDir(t *testing.T) string {
	t.Helper()

	dir := testutil.TempDir(t)
	testutil.CreateFileTree(t, dir, map[string]string{
		"small.txt":  "a\n",
		"medium.txt": "aaaa\naaaa\n",
		"large.txt":  "aaaaaaaa\naaaaaaaa\naaaaaaaa\n",
	})
	return dir
}

func TestDirListOrdering(t *testing.T) {
	dir := newTestDir(t)

	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "descending by size",
			opts: Options{SizeOrder: "desc"},
			want: []string{"large.txt", "medium.txt", "small.txt"},
		},
		{
			name: "ascending by size",
			opts: Options{SizeOrder: "asc"},
			want: []string{"small.txt", "medium.txt", "large.txt"},
		},
		{
			name: "limit caps the listing",
			opts: Options{SizeOrder: "desc", Limit: 2},
			want: []string{"large.txt", "medium.txt"},
		},
		{
			name: "offset skips files",
			opts: Options{SizeOrder: "desc", Offset: 1},
			want: []string{"medium.txt", "small.txt"},
		},
		{
			name: "offset past the end lists nothing",
			opts: Options{SizeOrder: "desc", Offset: 10},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, err := NewDir(dir, tt.opts).List(context.Background())
			testutil.AssertNoError(t, err)

			if len(ids) != len(tt.want) {
				t.Fatalf("expected %d ids, got %d: %v", len(tt.want), len(ids), ids)
			}
			for i, want := range tt.want {
				testutil.AssertEqual(t, want, ids[i])
			}
		})
	}
}

func TestDirFetch(t *testing.T) {
	dir := newTestDir(t)
	provider := NewDir(dir, Options{SizeOrder: "desc"})

	name, rc, err := provider.Fetch(context.Background(), "small.txt")
	testutil.AssertNoError(t, err)
	defer rc.Close()

	testutil.AssertEqual(t, "small.txt", name)

	data, err := io.ReadAll(rc)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "a\n", string(data))
}

func TestDirFetchMissingFile(t *testing.T) {
	provider := NewDir(newTestDir(t), Options{SizeOrder: "desc"})

	_, _, err := provider.Fetch(context.Background(), "missing.txt")
	if !errors.Is(err, errors.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDirListMissingDirectory(t *testing.T) {
	_, err := NewDir("/nonexistent/path", Options{SizeOrder: "desc"}).List(context.Background())
	testutil.AssertError(t, err, "listing source directory")
}
