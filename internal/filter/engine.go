// Package filter implements the streaming record filter engine at the heart
// of WhiteDwarf. The engine scans a PGDASD file line by line, recognizes the
// nested block delimiters, and keeps only the company blocks that have a
// branch sub-block in the target county.
//
// Key components:
// - Engine, a single-pass state machine fed one line at a time
// - A pending buffer holding the lines of the company block under evaluation
// - Result counters (companies seen, companies kept) per processed file
//
// The engine performs no file I/O of its own: lines come in through
// ProcessLine and kept blocks go out through the writer supplied at
// construction. One Engine value processes exactly one file; callers create
// a fresh Engine per file, which keeps the engine reentrant across files
// processed concurrently.
package filter

import (
	"bytes"
	"io"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
	"github.com/CaioVictorMota/whitedwarf/internal/io/pool"
)

// Record vocabulary of PGDASD files. Prefixes are literal and case
// sensitive; anything else is ordinary content.
var (
	envelopeStart = []byte("STARTS")
	envelopeEnd   = []byte("ENDS")
	companyStart  = []byte("BLOCKSTARTS")
	countyStart   = []byte("COUNTYSTARTS")
	countyEnd     = []byte("COUNTYENDS")
)

// state tracks where in the block structure the engine currently is.
type state int

const (
	// outside means no company block is open. Envelope markers and
	// ordinary content pass straight through.
	outside state = iota

	// discardBlock drops every line until the next company boundary.
	// Entered for companies headquartered in the target county and after
	// a sub-block decision has been made.
	discardBlock

	// scanBlock buffers every line of the open company block until its
	// first county sub-block closes.
	scanBlock
)

// Result holds the counters of one engine invocation.
type Result struct {
	// CompaniesSeen counts every company boundary in the input.
	CompaniesSeen int
	// CompaniesKept counts company blocks written to the output.
	CompaniesKept int
}

// Engine filters one PGDASD line stream down to the company blocks with a
// branch in the target county. It satisfies line.Processor.
type Engine struct {
	target  []byte
	out     io.Writer
	state   state
	pending []*bytes.Buffer
	matched bool
	result  Result
}

// NewEngine creates an engine extracting branches of the given county code.
// The code must include its bracketing '|' delimiters (e.g. "|3685|"); it is
// matched as an opaque literal substring. Kept lines are written to out
// verbatim and in input order.
func NewEngine(targetCountyCode string, out io.Writer) *Engine {
	return &Engine{
		target: []byte(targetCountyCode),
		out:    out,
	}
}

// ProcessLine consumes the next line of the stream, terminator included.
// The line bytes are copied when buffering, so the caller may reuse the
// slice. An error aborts the stream; no partially flushed block escapes.
func (e *Engine) ProcessLine(line []byte) error {
	switch {
	case bytes.HasPrefix(line, envelopeStart):
		return e.write(line)

	case bytes.HasPrefix(line, envelopeEnd):
		// An open block at the envelope end is unterminated and its
		// pending lines are dropped undecided.
		e.reset()
		return e.write(line)

	case bytes.HasPrefix(line, companyStart):
		return e.openCompany(line)

	case bytes.HasPrefix(line, countyStart):
		if e.state == scanBlock {
			e.buffer(line)
			if bytes.Contains(line, e.target) {
				e.matched = true
			}
		}
		// A sub-block start with no company block under evaluation
		// is dropped, matching the discard of its surroundings.
		return nil

	case bytes.HasPrefix(line, countyEnd):
		if e.state != scanBlock {
			return nil
		}
		e.buffer(line)
		return e.closeSubBlock()

	default:
		// Ordinary content line.
		switch e.state {
		case scanBlock:
			e.buffer(line)
			return nil
		case discardBlock:
			return nil
		default:
			return e.write(line)
		}
	}
}

// Flush finalizes the stream. An unterminated company block is silently
// discarded; structural malformation is never an error.
func (e *Engine) Flush() error {
	e.reset()
	return nil
}

// Result returns the counters accumulated so far.
func (e *Engine) Result() Result {
	return e.result
}

// openCompany starts evaluating a new company block. A still-open previous
// block is implicitly terminated and dropped undecided.
func (e *Engine) openCompany(line []byte) error {
	e.reset()
	e.result.CompaniesSeen++

	if bytes.Contains(line, e.target) {
		// Headquarters already in the target county, nothing to
		// extract from this company.
		e.state = discardBlock
		return nil
	}

	e.state = scanBlock
	e.buffer(line)
	return nil
}

// closeSubBlock decides the fate of the pending block when its first county
// sub-block closes. Only this first sub-block is ever evaluated: the rest of
// the company block is skipped until the next company boundary.
func (e *Engine) closeSubBlock() error {
	var err error
	if e.matched {
		if err = e.flushPending(); err == nil {
			e.result.CompaniesKept++
		}
	}

	e.reset()
	e.state = discardBlock
	return err
}

// buffer appends a copy of the line to the pending block.
func (e *Engine) buffer(line []byte) {
	b := pool.BytesBuffer.Get().(*bytes.Buffer)
	b.Write(line)
	e.pending = append(e.pending, b)
}

// flushPending emits the pending block to the output, oldest line first.
func (e *Engine) flushPending() error {
	for _, b := range e.pending {
		if _, err := e.out.Write(b.Bytes()); err != nil {
			return errors.Wrap(err, "writing kept company block")
		}
	}
	return nil
}

// reset recycles the pending buffers and returns the engine to the outside
// state with the match flag cleared.
func (e *Engine) reset() {
	for _, b := range e.pending {
		pool.RecycleBytesBuffer(b)
	}
	e.pending = e.pending[:0]
	e.matched = false
	e.state = outside
}

// write passes a line through to the output unmodified.
func (e *Engine) write(line []byte) error {
	if _, err := e.out.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}
	return nil
}
