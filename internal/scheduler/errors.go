package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrQueueFull is matched by *QueueFullError when admission is refused.
	ErrQueueFull = errors.New("pending queue full")

	// ErrBackendFailure is matched by *BackendError when a batch fails.
	ErrBackendFailure = errors.New("backend failure")

	// ErrInvariantViolation is matched by *InvariantViolationError. The
	// scheduler panics with it; it is never returned to callers.
	ErrInvariantViolation = errors.New("internal invariant violation")

	// ErrWithdrawn resolves a job whose submitter withdrew it before dispatch.
	ErrWithdrawn = errors.New("job withdrawn before dispatch")

	// ErrSchedulerClosed is returned by Submit after Stop, and resolves jobs
	// still pending when the scheduler stops.
	ErrSchedulerClosed = errors.New("scheduler closed")
)

// QueueFullError is returned by Submit when the pending queue is at capacity.
// The HTTP layer maps it to 429 so callers back off.
type QueueFullError struct {
	Current  int // Pending jobs at the time of rejection
	Capacity int // Configured MaxQueueDepth
}

func (e *QueueFullError) Error() string {
	return fmt.Sprintf("pending queue full: %d/%d", e.Current, e.Capacity)
}

// Is makes errors.Is(err, ErrQueueFull) true.
func (e *QueueFullError) Is(target error) bool {
	return target == ErrQueueFull
}

// BackendError is the failure delivered to every job of a failed batch.
type BackendError struct {
	BatchID string
	Size    int
	Cause   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend failure for batch %s (%d jobs): %v", e.BatchID, e.Size, e.Cause)
}

// Is makes errors.Is(err, ErrBackendFailure) true.
func (e *BackendError) Is(target error) bool {
	return target == ErrBackendFailure
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// InvariantViolationError describes a broken internal guarantee, such as a
// second batch dispatched while one is in flight. It is a programming error
// and is raised with panic.
type InvariantViolationError struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("internal invariant violation (%s): %s", e.Invariant, e.Detail)
}

// Is makes errors.Is(err, ErrInvariantViolation) true.
func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}

func violate(invariant, format string, args ...any) {
	panic(&InvariantViolationError{
		Invariant: invariant,
		Detail:    fmt.Sprintf(format, args...),
	})
}
