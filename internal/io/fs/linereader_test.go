package fs

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/DataDog/zstd"

	"github.com/CaioVictorMota/whitedwarf/internal/testutil"
)

// collector records every line it is handed and whether Flush was called.
type collector struct {
	lines   []string
	flushed bool
}

func (c *collector) ProcessLine(line []byte) error {
	c.lines = append(c.lines, string(line))
	return nil
}

func (c *collector) Flush() error {
	c.flushed = true
	return nil
}

func TestLineReaderSplitsLines(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		chunkSize int
		want      []string
	}{
		{
			name:      "terminators preserved",
			input:     "one\ntwo\nthree\n",
			chunkSize: 0,
			want:      []string{"one\n", "two\n", "three\n"},
		},
		{
			name:      "final line without terminator delivered",
			input:     "one\ntwo",
			chunkSize: 0,
			want:      []string{"one\n", "two"},
		},
		{
			name:      "lines spanning chunk boundaries",
			input:     "first line\nsecond line\nthird\n",
			chunkSize: 4,
			want:      []string{"first line\n", "second line\n", "third\n"},
		},
		{
			name:      "empty lines kept",
			input:     "a\n\nb\n",
			chunkSize: 0,
			want:      []string{"a\n", "\n", "b\n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c collector
			lr := NewLineReader(strings.NewReader(tt.input), tt.chunkSize)

			testutil.AssertNoError(t, lr.ReadLines(context.Background(), &c))

			if !c.flushed {
				t.Error("expected Flush to be called")
			}
			if len(c.lines) != len(tt.want) {
				t.Fatalf("expected %d lines, got %d: %q", len(tt.want), len(c.lines), c.lines)
			}
			for i, want := range tt.want {
				testutil.AssertEqual(t, want, c.lines[i])
			}
		})
	}
}

func TestLineReaderReproducesInput(t *testing.T) {
	input := "STARTS\nBLOCKSTARTS|1111|\ndata\nENDS\n"

	var c collector
	lr := NewLineReader(strings.NewReader(input), 8)
	testutil.AssertNoError(t, lr.ReadLines(context.Background(), &c))

	testutil.AssertEqual(t, input, strings.Join(c.lines, ""))
}

func TestLineReaderCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var c collector
	lr := NewLineReader(strings.NewReader("one\ntwo\n"), 0)

	err := lr.ReadLines(ctx, &c)
	testutil.AssertError(t, err, "context canceled")
}

func TestOpenCompressedFile(t *testing.T) {
	content := "STARTS\ncompressed row\nENDS\n"
	compressed, err := zstd.Compress(nil, []byte(content))
	testutil.AssertNoError(t, err)

	dir := testutil.TempDir(t)
	path := dir + "/input.txt.zst"
	testutil.AssertNoError(t, os.WriteFile(path, compressed, 0644))

	rc, err := Open(path)
	testutil.AssertNoError(t, err)
	defer rc.Close()

	var c collector
	testutil.AssertNoError(t, NewLineReader(rc, 0).ReadLines(context.Background(), &c))

	testutil.AssertEqual(t, content, strings.Join(c.lines, ""))
}

func TestDecompressPlainStreamPassesThrough(t *testing.T) {
	rc := Decompress("member.txt", bytes.NewReader([]byte("plain\n")))
	defer rc.Close()

	var c collector
	testutil.AssertNoError(t, NewLineReader(rc, 0).ReadLines(context.Background(), &c))

	testutil.AssertEqual(t, 1, len(c.lines))
	testutil.AssertEqual(t, "plain\n", c.lines[0])
}

func TestIsCompressed(t *testing.T) {
	testutil.AssertEqual(t, true, IsCompressed("file.txt.zst"))
	testutil.AssertEqual(t, true, IsCompressed("file.zstd"))
	testutil.AssertEqual(t, false, IsCompressed("file.txt"))
	testutil.AssertEqual(t, false, IsCompressed("file.zip"))
}
