// Package line defines the contract between line producers (the streaming
// file reader, archive members) and line consumers (the filter engine).
package line

// Processor defines an interface for processing lines read from files.
// Lines are handed over with their terminator bytes intact; the final line
// of a stream may lack one. The processor must copy the slice if it needs
// the bytes past the call.
type Processor interface {
	// ProcessLine handles a single line read from a file.
	// Returns error if processing should stop.
	ProcessLine(line []byte) error

	// Flush finalizes the stream. Called exactly once, after the last
	// line has been delivered.
	Flush() error
}
