package constants

// Default configuration values
const (
	// DefaultTargetCountyCode is the county code extracted when none is
	// configured. Codes are always bracketed by '|' on both sides.
	DefaultTargetCountyCode = "|3685|"

	// DefaultDownloadDir is where source files are downloaded to.
	DefaultDownloadDir = "tmpfiles"

	// DefaultExtractionDir is where processed branch files are written.
	DefaultExtractionDir = "filiais"

	// DefaultOutputPrefix is prepended to every processed file name.
	DefaultOutputPrefix = "filiais_"

	// DefaultCleanseSize is the size in bytes below which a processed file
	// carries no useful data and may be deleted.
	DefaultCleanseSize = 50

	// DefaultSizeOrder orders source files by size, biggest first.
	DefaultSizeOrder = "desc"

	// LongRunAlertEvery is how many retry attempts pass between long run
	// mode warnings for the same file.
	LongRunAlertEvery = 50

	// MaxRetriesPerFile caps long run mode retries for a single file.
	MaxRetriesPerFile = 100

	// MaxRetryBackoff caps the exponential retry backoff.
	MaxRetryBackoffSeconds = 30
)
