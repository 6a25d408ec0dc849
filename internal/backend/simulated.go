package backend

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// SimulatedStats counts calls made against a Simulated backend.
type SimulatedStats struct {
	Calls     uint64 `json:"calls"`
	Busy      uint64 `json:"busy_rejections"`
	Oversized uint64 `json:"oversized_rejections"`
	Texts     uint64 `json:"texts"`
}

// Simulated is an in-process classification backend that honours the full
// backend contract: it refuses concurrent batches, refuses oversized batches
// and sleeps max_len² cost units before labelling.
type Simulated struct {
	unit    time.Duration
	labeler Labeler

	busy atomic.Bool

	calls     atomic.Uint64
	busyCount atomic.Uint64
	oversized atomic.Uint64
	texts     atomic.Uint64
}

// SimulatedOption configures a Simulated backend.
type SimulatedOption func(*Simulated)

// WithLabeler replaces the default random labeler.
func WithLabeler(l Labeler) SimulatedOption {
	return func(s *Simulated) {
		s.labeler = l
	}
}

// NewSimulated creates a simulated backend charging unit per squared code point.
func NewSimulated(unit time.Duration, opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		unit:    unit,
		labeler: RandomLabeler(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Classify serves one batch. It returns ErrBatchTooLarge for more than
// MaxBatchSize texts and ErrBusy while another batch is in service. Context
// cancellation aborts the simulated work and frees the backend.
func (s *Simulated) Classify(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) > MaxBatchSize {
		s.oversized.Add(1)
		return nil, fmt.Errorf("%w: got %d sequences, max is %d", ErrBatchTooLarge, len(texts), MaxBatchSize)
	}

	if !s.busy.CompareAndSwap(false, true) {
		s.busyCount.Add(1)
		return nil, ErrBusy
	}
	defer s.busy.Store(false)

	s.calls.Add(1)
	s.texts.Add(uint64(len(texts)))

	timer := time.NewTimer(ServiceTime(MaxLength(texts), s.unit))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	labels := make([]string, len(texts))
	for i, text := range texts {
		labels[i] = s.labeler(text)
	}
	return labels, nil
}

// Busy reports whether a batch is currently in service.
func (s *Simulated) Busy() bool {
	return s.busy.Load()
}

// CostUnit returns the configured per-unit latency.
func (s *Simulated) CostUnit() time.Duration {
	return s.unit
}

// Stats returns a snapshot of the call counters.
func (s *Simulated) Stats() SimulatedStats {
	return SimulatedStats{
		Calls:     s.calls.Load(),
		Busy:      s.busyCount.Load(),
		Oversized: s.oversized.Load(),
		Texts:     s.texts.Load(),
	}
}
