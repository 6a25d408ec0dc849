// Package utils provides small helpers shared across sluice components.
//
// This file implements identifier generation for jobs, batches and HTTP
// requests. Identifiers are random UUIDv4 strings so they can be correlated
// across the proxy logs, the sluicectl output and the simulated backend.
//
// ID FORMATS:
//   - Full IDs: canonical 36-character UUID strings used in API responses
//   - Short IDs: first 8 hex characters used in INFO-level log lines
package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// ShortIDLength is the number of characters kept by ShortID.
const ShortIDLength = 8

// GenerateID creates a new random identifier for a job, batch or request.
//
// Returns an error only when the system entropy source fails, which callers
// treat as an internal failure rather than retrying.
func GenerateID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// ShortID truncates an identifier for display. IDs shorter than
// ShortIDLength are returned unchanged.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}
