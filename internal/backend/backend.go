// Package backend defines the classification backend contract and its two
// implementations: an in-process simulation and an HTTP client for a remote
// classification server.
//
// BACKEND CONTRACT:
//   - Batches carry at most MaxBatchSize texts
//   - Only one batch may be in service at a time; a concurrent call is refused with ErrBusy
//   - A call costs ServiceTime(max_len) where max_len is the longest text in the batch
//   - Results are positional: labels[i] classifies texts[i]
//
// The quadratic cost is what makes batching by length worthwhile: one long
// text makes every text in its batch pay the long text's price.
package backend

import (
	"context"
	"errors"
	"math"
	"time"
	"unicode/utf8"
)

// MaxBatchSize is the largest batch the classification backend accepts.
const MaxBatchSize = 5

// Labels returned by the classification backend.
const (
	LabelCode    = "code"
	LabelNotCode = "not code"
)

var (
	// ErrBusy is returned when a batch arrives while another is in service.
	ErrBusy = errors.New("backend busy: only one request can be processed at a time")

	// ErrBatchTooLarge is returned for batches over MaxBatchSize.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// ErrMalformedResponse is returned when the result count does not match
	// the number of texts sent.
	ErrMalformedResponse = errors.New("malformed backend response")
)

// Classifier labels a batch of texts. Implementations must return exactly one
// label per text, in order, or an error for the whole batch.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([]string, error)
}

// Length is the size measure used for batching and cost: the number of
// Unicode code points in text.
func Length(text string) int {
	return utf8.RuneCountInString(text)
}

// MaxLength returns the largest Length among texts, or 0 for an empty batch.
func MaxLength(texts []string) int {
	maxLen := 0
	for _, t := range texts {
		if n := Length(t); n > maxLen {
			maxLen = n
		}
	}
	return maxLen
}

// maxServiceTime caps ServiceTime where maxLen² cost units no longer fit in
// a time.Duration.
const maxServiceTime = time.Duration(math.MaxInt64)

// ServiceTime returns the latency of a batch whose longest text has maxLen
// code points: maxLen² cost units, saturating at the largest Duration.
func ServiceTime(maxLen int, unit time.Duration) time.Duration {
	if maxLen <= 0 || unit <= 0 {
		return 0
	}
	n := int64(maxLen)
	if n > math.MaxInt64/n {
		return maxServiceTime
	}
	squared := n * n
	if squared > int64(maxServiceTime/unit) {
		return maxServiceTime
	}
	return time.Duration(squared) * unit
}
