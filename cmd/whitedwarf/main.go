// Package main provides the WhiteDwarf command-line tool, the PGDASD files
// parser and branches extractor. It pulls tax-filing extracts from a file
// store (Postgres) or a local directory, filters each one down to the
// companies with a branch in the target county, and writes the per-county
// subsets next to each other in the extraction directory.
//
// Key features:
// - Streaming single-pass filtering, zip containers expanded lazily
// - Transparent zstd decompression of compressed extracts
// - Cleansing of output files that carry no useful data
// - Long run mode retrying failed files with backoff, with an optional
//   HTTP status endpoint
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CaioVictorMota/whitedwarf/internal/config"
	"github.com/CaioVictorMota/whitedwarf/internal/logging"
	"github.com/CaioVictorMota/whitedwarf/internal/run"
	"github.com/CaioVictorMota/whitedwarf/internal/source"
	"github.com/CaioVictorMota/whitedwarf/internal/status"
	"github.com/CaioVictorMota/whitedwarf/internal/version"
)

func main() {
	var args config.Args
	var displayVersion bool

	flag.StringVar(&args.TargetCountyCode, "county", "",
		"Target county code, '|' delimited (e.g. '|3685|')")
	flag.StringVar(&args.SourceDir, "sourceDir", "",
		"Read source files from a local directory instead of the database")
	flag.StringVar(&args.DatabaseURL, "db", "", "Postgres connection URL of the file store")
	flag.IntVar(&args.FilesLimit, "limit", 0, "Maximum number of files to process (0 = all)")
	flag.IntVar(&args.FilesOffset, "offset", 0, "Number of files to skip")
	flag.StringVar(&args.SizeOrder, "order", "", "Process files by size, 'asc' or 'desc'")
	flag.StringVar(&args.StatusAddr, "statusAddr", "",
		"Serve the long run status endpoint on this address")
	flag.StringVar(&args.LogLevel, "logLevel", "", "Log level")
	flag.BoolVar(&args.DeleteEmptyOutputs, "deb", false,
		"Delete processed branches files below the cleanse size")
	flag.BoolVar(&args.DeleteTmpFiles, "dtmp", false,
		"Delete downloaded files after processing")
	flag.BoolVar(&args.Verbose, "vm", false, "Verbose messaging")
	flag.BoolVar(&args.Report, "pr", false, "Print a report at the end of processing")
	flag.BoolVar(&args.LongRun, "LR", false,
		"Long run mode: retry failing files instead of aborting the run")
	flag.BoolVar(&displayVersion, "version", false, "Display version")
	flag.Parse()

	if displayVersion {
		version.PrintAndExit()
	}

	cfg, err := config.Load(&args)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	logging.Setup(level)
	slog.Info("starting PGDASD branches parser",
		"version", version.Version,
		"target_county", cfg.TargetCountyCode,
		"long_run", cfg.LongRun)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		slog.Error("could not set up source provider", "error", err)
		os.Exit(1)
	}
	defer closeProvider()

	orchestrator := run.New(cfg, provider)

	if cfg.LongRun {
		slog.Warn("long run mode activated, errors will be suppressed and " +
			"files reprocessed indefinitely")
		if cfg.StatusAddr != "" {
			go func() {
				if err := status.New(cfg.StatusAddr, orchestrator).Start(ctx); err != nil {
					slog.Error("status endpoint failed", "error", err)
				}
			}()
			slog.Info("status endpoint listening", "addr", cfg.StatusAddr)
		}
	}

	if _, err := orchestrator.Run(ctx); err != nil {
		slog.Error("processing finished with an error", "error", err)
		os.Exit(1)
	}
	slog.Info("processing finished successfully")
}

// newProvider wires the configured source: a local directory when one is
// given, the Postgres file store otherwise.
func newProvider(ctx context.Context, cfg *config.Config) (source.Provider, func(), error) {
	opts := source.Options{
		SizeOrder: cfg.SizeOrder,
		Limit:     cfg.FilesLimit,
		Offset:    cfg.FilesOffset,
	}

	if cfg.SourceDir != "" {
		return source.NewDir(cfg.SourceDir, opts), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("database successfully connected")

	queries := source.Queries{
		FileType: cfg.FileTypeQuery,
		Main:     cfg.MainQuery,
		Extract:  cfg.ExtractQuery,
	}
	return source.NewPostgres(pool, queries, opts), pool.Close, nil
}
