package run

import "log/slog"

// Report aggregates the counters of one run across all processed files.
// The orchestrator owns the only mutable copy; everyone else sees value
// snapshots, so the report is safe to hand to the status endpoint.
type Report struct {
	RunID           string   `json:"run_id"`
	FilesDownloaded int      `json:"files_downloaded"`
	FilesParsed     int      `json:"files_parsed"`
	FilesProcessed  int      `json:"files_processed"`
	FilesCleansed   int      `json:"files_cleansed"`
	CompaniesSeen   int      `json:"companies_seen"`
	CompaniesKept   int      `json:"companies_kept"`
	LastFileParsed  string   `json:"last_file_parsed,omitempty"`
	RetryErrors     int      `json:"retry_errors"`
	Errors          []string `json:"errors,omitempty"`
}

// Log writes the end-of-run report through the logger.
func (r Report) Log(log *slog.Logger) {
	log.Info("run report",
		"files_downloaded", r.FilesDownloaded,
		"files_parsed", r.FilesParsed,
		"files_processed", r.FilesProcessed,
		"files_cleansed", r.FilesCleansed,
		"companies_seen", r.CompaniesSeen,
		"companies_kept", r.CompaniesKept,
		"last_file_parsed", r.LastFileParsed,
	)
	if r.RetryErrors > 0 {
		log.Warn("run finished with retry errors", "total", r.RetryErrors)
		for _, msg := range r.Errors {
			log.Warn("retry error", "error", msg)
		}
	}
}
