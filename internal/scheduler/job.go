package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
)

// State is the lifecycle position of a job. Transitions only move forward:
// Pending -> InBatch -> Completed|Failed, or Pending -> Failed when a job is
// withdrawn or the scheduler stops.
type State int32

const (
	StatePending State = iota
	StateInBatch
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInBatch:
		return "in_batch"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Job is one submitted string awaiting classification.
type Job struct {
	ID          string
	Text        string
	Length      int // Code points in Text
	SubmittedAt time.Time

	// Admission sequence number; breaks ties between equal timestamps.
	seq uint64

	state atomic.Int32

	// Written once before done is closed.
	label string
	err   error
	done  chan struct{}
}

func newJob(id, text string, seq uint64, now time.Time) *Job {
	return &Job{
		ID:          id,
		Text:        text,
		Length:      backend.Length(text),
		SubmittedAt: now,
		seq:         seq,
		done:        make(chan struct{}),
	}
}

// State returns the job's current state.
func (j *Job) State() State {
	return State(j.state.Load())
}

func (j *Job) transition(from, to State) {
	if !j.state.CompareAndSwap(int32(from), int32(to)) {
		violate("job-lifecycle", "job %s: transition %s -> %s from state %s", j.ID, from, to, j.State())
	}
}

func (j *Job) markInBatch() {
	j.transition(StatePending, StateInBatch)
}

func (j *Job) complete(label string) {
	j.transition(StateInBatch, StateCompleted)
	j.label = label
	close(j.done)
}

func (j *Job) fail(from State, err error) {
	j.transition(from, StateFailed)
	j.err = err
	close(j.done)
}

// Handle is the submitter's view of a job: a one-shot completion plus the
// ability to withdraw while the job is still pending.
type Handle struct {
	job      *Job
	withdraw func(*Job) bool
}

// ID returns the job ID.
func (h *Handle) ID() string {
	return h.job.ID
}

// State returns the job's current state.
func (h *Handle) State() State {
	return h.job.State()
}

// Done is closed once the job reaches a terminal state.
func (h *Handle) Done() <-chan struct{} {
	return h.job.done
}

// Outcome is the resolution of a job: a label on success, an error otherwise.
type Outcome struct {
	Label string
	Err   error
}

// Outcome returns the resolution of the job. ok is false while the job is
// still pending or in a batch.
func (h *Handle) Outcome() (o Outcome, ok bool) {
	select {
	case <-h.job.done:
		return Outcome{Label: h.job.label, Err: h.job.err}, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the job resolves or ctx ends. When ctx ends first the job
// is withdrawn if it has not been dispatched yet; a job already in a batch
// runs to completion and its outcome is dropped.
func (h *Handle) Wait(ctx context.Context) (string, error) {
	select {
	case <-h.job.done:
		return h.job.label, h.job.err
	case <-ctx.Done():
		h.Withdraw()
		return "", ctx.Err()
	}
}

// Withdraw removes a still-pending job from the queue and resolves it with
// ErrWithdrawn. Returns false if the job was already dispatched or resolved.
func (h *Handle) Withdraw() bool {
	return h.withdraw(h.job)
}

// Batch is a group of jobs dispatched together in one backend call.
type Batch struct {
	ID        string
	Jobs      []*Job
	MaxLength int
	Reason    Reason

	DispatchedAt time.Time
	CompletedAt  time.Time
}

func newBatch(id string, jobs []*Job, reason Reason) *Batch {
	b := &Batch{ID: id, Jobs: jobs, Reason: reason}
	for _, j := range jobs {
		if j.Length > b.MaxLength {
			b.MaxLength = j.Length
		}
	}
	return b
}

// Texts returns the batch texts in job order.
func (b *Batch) Texts() []string {
	texts := make([]string, len(b.Jobs))
	for i, j := range b.Jobs {
		texts[i] = j.Text
	}
	return texts
}

// ServiceTime is how long the backend call took.
func (b *Batch) ServiceTime() time.Duration {
	return b.CompletedAt.Sub(b.DispatchedAt)
}
