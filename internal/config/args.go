package config

// Args holds the command line argument surface. Flags are bound to this
// struct by the main package and merged over environment values and
// defaults by Load.
type Args struct {
	// TargetCountyCode is the county extracted, '|' delimited.
	TargetCountyCode string
	// SourceDir reads source files from a local directory instead of
	// the database.
	SourceDir string
	// DatabaseURL is the Postgres connection string of the file store.
	DatabaseURL string
	// FilesLimit caps how many files are processed; 0 means all.
	FilesLimit int
	// FilesOffset skips the first files of the listing.
	FilesOffset int
	// SizeOrder orders files by size, "asc" or "desc".
	SizeOrder string
	// StatusAddr serves the long run status endpoint when set.
	StatusAddr string
	// LogLevel is debug, info, warn or error.
	LogLevel string

	// DeleteEmptyOutputs removes processed files below the cleanse size.
	DeleteEmptyOutputs bool
	// DeleteTmpFiles removes downloaded files after processing.
	DeleteTmpFiles bool
	// Verbose enables per-file counters in the log output.
	Verbose bool
	// Report prints a run report at the end of processing.
	Report bool
	// LongRun keeps retrying failed files instead of aborting the run.
	LongRun bool
}
