package config

import (
	"os"
	"strconv"
)

// Environment variable names, all prefixed to keep out of the way of other
// tools sharing the environment.
const (
	envTargetCountyCode = "WHITEDWARF_TARGET_COUNTY_CODE"
	envSourceDir        = "WHITEDWARF_SOURCE_DIR"
	envDatabaseURL      = "WHITEDWARF_DATABASE_URL"
	envDownloadDir      = "WHITEDWARF_DOWNLOAD_DIR"
	envExtractionDir    = "WHITEDWARF_EXTRACTION_DIR"
	envOutputPrefix     = "WHITEDWARF_OUTPUT_PREFIX"
	envCleanseSize      = "WHITEDWARF_CLEANSE_SIZE"
	envFilesLimit       = "WHITEDWARF_FILES_LIMIT"
	envFilesOffset      = "WHITEDWARF_FILES_OFFSET"
	envSizeOrder        = "WHITEDWARF_SIZE_ORDER"
	envStatusAddr       = "WHITEDWARF_STATUS_ADDR"
	envLogLevel         = "WHITEDWARF_LOG_LEVEL"
	envFileTypeQuery    = "WHITEDWARF_FILE_TYPE_QUERY"
	envMainQuery        = "WHITEDWARF_MAIN_QUERY"
	envExtractQuery     = "WHITEDWARF_EXTRACT_QUERY"
)

// applyEnv overrides configuration with values from the environment.
func (c *Config) applyEnv() {
	envString(envTargetCountyCode, &c.TargetCountyCode)
	envString(envSourceDir, &c.SourceDir)
	envString(envDatabaseURL, &c.DatabaseURL)
	envString(envDownloadDir, &c.DownloadDir)
	envString(envExtractionDir, &c.ExtractionDir)
	envString(envOutputPrefix, &c.OutputPrefix)
	envInt64(envCleanseSize, &c.CleanseSize)
	envInt(envFilesLimit, &c.FilesLimit)
	envInt(envFilesOffset, &c.FilesOffset)
	envString(envSizeOrder, &c.SizeOrder)
	envString(envStatusAddr, &c.StatusAddr)
	envString(envLogLevel, &c.LogLevel)
	envString(envFileTypeQuery, &c.FileTypeQuery)
	envString(envMainQuery, &c.MainQuery)
	envString(envExtractQuery, &c.ExtractQuery)
}

func envString(name string, target *string) {
	if value := os.Getenv(name); value != "" {
		*target = value
	}
}

func envInt(name string, target *int) {
	if value := os.Getenv(name); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func envInt64(name string, target *int64) {
	if value := os.Getenv(name); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			*target = parsed
		}
	}
}
