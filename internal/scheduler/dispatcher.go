package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
)

// Dispatcher sends batches to the backend one at a time and delivers results
// to the jobs. The single-flight token is a one-slot channel: holding the
// slot means a batch is in flight.
type Dispatcher struct {
	backend  backend.Classifier
	timeout  time.Duration
	inflight chan struct{}
	now      func() time.Time
	observer Observer
}

// NewDispatcher creates a dispatcher for b. Each call is bounded by timeout.
func NewDispatcher(b backend.Classifier, timeout time.Duration, now func() time.Time, observer Observer) *Dispatcher {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Dispatcher{
		backend:  b,
		timeout:  timeout,
		inflight: make(chan struct{}, 1),
		now:      now,
		observer: observer,
	}
}

// InFlight reports whether a batch currently holds the backend.
func (d *Dispatcher) InFlight() bool {
	return len(d.inflight) == 1
}

// Dispatch runs batch against the backend and resolves every job in it.
//
// On success job i receives label i. On any failure (transport error,
// timeout, busy backend, wrong result count, or a panic inside the backend)
// every job fails with the same *BackendError. The single-flight token is
// released on every path.
//
// Dispatching while another batch is in flight panics with
// *InvariantViolationError; the event loop never does this.
func (d *Dispatcher) Dispatch(ctx context.Context, batch *Batch) error {
	select {
	case d.inflight <- struct{}{}:
	default:
		violate("single-flight", "batch %s dispatched while another batch is in flight", batch.ID)
	}
	defer func() { <-d.inflight }()

	if n := len(batch.Jobs); n == 0 || n > backend.MaxBatchSize {
		violate("batch-size", "batch %s has %d jobs, want 1..%d", batch.ID, n, backend.MaxBatchSize)
	}

	batch.DispatchedAt = d.now()
	d.observer.BatchDispatched(batch)
	logging.Debug("Dispatcher: Sending batch %s (%d jobs, max_len=%d, reason=%s)",
		logging.FormatBatchID(batch.ID), len(batch.Jobs), batch.MaxLength, batch.Reason)

	labels, err := d.call(ctx, batch.Texts())
	batch.CompletedAt = d.now()

	if err == nil && len(labels) != len(batch.Jobs) {
		err = fmt.Errorf("%w: got %d labels for %d sequences",
			backend.ErrMalformedResponse, len(labels), len(batch.Jobs))
	}

	if err != nil {
		berr := &BackendError{BatchID: batch.ID, Size: len(batch.Jobs), Cause: err}
		for _, j := range batch.Jobs {
			j.fail(StateInBatch, berr)
		}
		d.observer.BatchCompleted(batch, berr)
		logging.Warn("Dispatcher: Batch %s failed after %v: %v",
			logging.FormatBatchID(batch.ID), batch.ServiceTime(), err)
		return berr
	}

	for i, j := range batch.Jobs {
		j.complete(labels[i])
	}
	d.observer.BatchCompleted(batch, nil)
	logging.Debug("Dispatcher: Batch %s completed in %v",
		logging.FormatBatchID(batch.ID), batch.ServiceTime())
	return nil
}

// call invokes the backend under the configured timeout, converting a panic
// into an error so the batch still resolves.
func (d *Dispatcher) call(ctx context.Context, texts []string) (labels []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			labels = nil
			err = fmt.Errorf("backend panic: %v", r)
		}
	}()

	return d.backend.Classify(ctx, texts)
}
