// Package logging provides ID formatting helpers so job and batch identifiers
// read the same in every log line.
//
// Debug logs carry the full identifier for correlation with request logs and
// metrics; every other level uses a short prefix that is easier to scan.
package logging

import (
	"github.com/charmbracelet/log"
	"github.com/concave-dev/sluice/internal/utils"
)

// FormatID returns the full ID when DEBUG is enabled and the short form otherwise.
func FormatID(id string) string {
	_, errOut := loggers()
	if errOut.GetLevel() <= log.DebugLevel {
		return id
	}
	return utils.ShortID(id)
}

// FormatJobID formats a job ID for logging.
//
// Usage: logging.Info("Withdrew job %s", logging.FormatJobID(job.ID))
func FormatJobID(jobID string) string {
	return FormatID(jobID)
}

// FormatBatchID formats a batch ID for logging.
func FormatBatchID(batchID string) string {
	return FormatID(batchID)
}
