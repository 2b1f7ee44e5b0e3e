// Package config provides configuration management for WhiteDwarf runs.
// It merges values from multiple sources with proper precedence.
//
// Configuration precedence (highest to lowest):
// 1. Command-line arguments
// 2. Environment variables (WHITEDWARF_ prefix)
// 3. A .env file in the working directory
// 4. Default values
//
// Validation is eager: a run never starts with a malformed target county
// code or an inconsistent option set.
package config

import (
	"strings"

	"github.com/joho/godotenv"

	"github.com/CaioVictorMota/whitedwarf/internal/constants"
	"github.com/CaioVictorMota/whitedwarf/internal/errors"
)

// CountyCodeDelimiter brackets every county code in a PGDASD line. The
// target code must carry it on both ends so it cannot collide with a
// fragment of an unrelated numeric field.
const CountyCodeDelimiter = "|"

// Config is the validated configuration of one run. It is passed around
// explicitly; nothing in the program reads configuration globals.
type Config struct {
	TargetCountyCode string
	SourceDir        string
	DatabaseURL      string
	DownloadDir      string
	ExtractionDir    string
	OutputPrefix     string
	CleanseSize      int64
	FilesLimit       int
	FilesOffset      int
	SizeOrder        string
	StatusAddr       string
	LogLevel         string

	FileTypeQuery string
	MainQuery     string
	ExtractQuery  string

	DeleteEmptyOutputs bool
	DeleteTmpFiles     bool
	Verbose            bool
	Report             bool
	LongRun            bool
}

// Load builds the run configuration from defaults, a .env file, environment
// variables and the parsed command line arguments, then validates it.
func Load(args *Args) (*Config, error) {
	// A missing .env file is fine, the environment still applies.
	_ = godotenv.Load()

	cfg := newDefaultConfig()
	cfg.applyEnv()
	cfg.applyArgs(args)

	// Long run mode forces the unattended option set: failures are
	// retried, artifacts are cleaned up and chatter is kept down.
	if cfg.LongRun {
		cfg.Report = true
		cfg.DeleteEmptyOutputs = true
		cfg.DeleteTmpFiles = true
		cfg.Verbose = false
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newDefaultConfig() *Config {
	return &Config{
		TargetCountyCode: constants.DefaultTargetCountyCode,
		DownloadDir:      constants.DefaultDownloadDir,
		ExtractionDir:    constants.DefaultExtractionDir,
		OutputPrefix:     constants.DefaultOutputPrefix,
		CleanseSize:      constants.DefaultCleanseSize,
		SizeOrder:        constants.DefaultSizeOrder,
		LogLevel:         "info",
		FileTypeQuery:    "SELECT id FROM tipos_arquivo WHERE nome = 'PGDASD'",
		MainQuery:        "SELECT id FROM arquivos WHERE tipo_id = $1 ORDER BY tamanho",
		ExtractQuery:     "SELECT conteudo, nome FROM arquivos WHERE id = $1",
	}
}

// applyArgs overrides configuration with explicitly set arguments. Empty
// string and zero valued arguments leave the current value alone, except
// for the boolean switches which mirror the command line directly.
func (c *Config) applyArgs(args *Args) {
	if args == nil {
		return
	}
	if args.TargetCountyCode != "" {
		c.TargetCountyCode = args.TargetCountyCode
	}
	if args.SourceDir != "" {
		c.SourceDir = args.SourceDir
	}
	if args.DatabaseURL != "" {
		c.DatabaseURL = args.DatabaseURL
	}
	if args.FilesLimit > 0 {
		c.FilesLimit = args.FilesLimit
	}
	if args.FilesOffset > 0 {
		c.FilesOffset = args.FilesOffset
	}
	if args.SizeOrder != "" {
		c.SizeOrder = args.SizeOrder
	}
	if args.StatusAddr != "" {
		c.StatusAddr = args.StatusAddr
	}
	if args.LogLevel != "" {
		c.LogLevel = args.LogLevel
	}

	c.DeleteEmptyOutputs = c.DeleteEmptyOutputs || args.DeleteEmptyOutputs
	c.DeleteTmpFiles = c.DeleteTmpFiles || args.DeleteTmpFiles
	c.Verbose = c.Verbose || args.Verbose
	c.Report = c.Report || args.Report
	c.LongRun = c.LongRun || args.LongRun
}

func (c *Config) validate() error {
	code := c.TargetCountyCode
	if code == "" {
		return errors.Wrap(errors.ErrInvalidCounty, "target county code is empty")
	}
	if len(code) < 3 || !strings.HasPrefix(code, CountyCodeDelimiter) ||
		!strings.HasSuffix(code, CountyCodeDelimiter) {
		return errors.Wrapf(errors.ErrInvalidCounty,
			"%q must start and end with %q", code, CountyCodeDelimiter)
	}
	inner := code[1 : len(code)-1]
	for _, r := range inner {
		if r < '0' || r > '9' {
			return errors.Wrapf(errors.ErrInvalidCounty,
				"%q must contain only digits between the delimiters", code)
		}
	}

	if c.SizeOrder != "asc" && c.SizeOrder != "desc" {
		return errors.Wrapf(errors.ErrInvalidOrder, "%q is not asc or desc", c.SizeOrder)
	}
	if c.CleanseSize < 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "cleanse size is negative")
	}
	if c.FilesLimit < 0 || c.FilesOffset < 0 {
		return errors.Wrap(errors.ErrInvalidConfig, "files limit and offset must not be negative")
	}
	if c.SourceDir == "" && c.DatabaseURL == "" {
		return errors.Wrap(errors.ErrMissingConfig,
			"either a database URL or a source directory is required")
	}
	return nil
}
