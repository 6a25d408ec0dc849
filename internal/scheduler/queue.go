package scheduler

import (
	"slices"
	"sync"
	"time"
)

// PendingQueue holds admitted jobs in admission order. All membership changes
// happen under one mutex, so a job is either selected into a batch or
// withdrawn, never both.
type PendingQueue struct {
	mu       sync.Mutex
	jobs     []*Job
	capacity int
	closed   bool
}

// NewPendingQueue creates a queue admitting at most capacity jobs.
func NewPendingQueue(capacity int) *PendingQueue {
	return &PendingQueue{
		jobs:     make([]*Job, 0, min(capacity, 64)),
		capacity: capacity,
	}
}

// Enqueue admits job, or returns *QueueFullError at capacity and
// ErrSchedulerClosed after Close.
func (q *PendingQueue) Enqueue(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrSchedulerClosed
	}
	if len(q.jobs) >= q.capacity {
		return &QueueFullError{
			Current:  len(q.jobs),
			Capacity: q.capacity,
		}
	}
	q.jobs = append(q.jobs, job)
	return nil
}

// SelectForBatch asks p for a decision over the current pending jobs and
// removes the chosen jobs, marking them InBatch, in the same critical section.
func (q *PendingQueue) SelectForBatch(p *Planner, now time.Time) Decision {
	q.mu.Lock()
	defer q.mu.Unlock()

	d := p.Plan(q.jobs, now)
	if len(d.Jobs) == 0 {
		return d
	}

	chosen := make(map[*Job]struct{}, len(d.Jobs))
	for _, j := range d.Jobs {
		chosen[j] = struct{}{}
	}

	kept := q.jobs[:0]
	removed := 0
	for _, j := range q.jobs {
		if _, ok := chosen[j]; ok {
			removed++
			continue
		}
		kept = append(kept, j)
	}
	clear(q.jobs[len(kept):])
	q.jobs = kept

	if removed != len(d.Jobs) {
		violate("batch-membership", "planner chose %d jobs but only %d were pending", len(d.Jobs), removed)
	}
	for _, j := range d.Jobs {
		j.markInBatch()
	}
	return d
}

// Remove takes job out of the queue. Returns false if it is not pending here.
func (q *PendingQueue) Remove(job *Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, j := range q.jobs {
		if j == job {
			copy(q.jobs[i:], q.jobs[i+1:])
			q.jobs[len(q.jobs)-1] = nil
			q.jobs = q.jobs[:len(q.jobs)-1]
			return true
		}
	}
	return false
}

// Size returns the number of pending jobs.
func (q *PendingQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// IsEmpty reports whether no jobs are pending.
func (q *PendingQueue) IsEmpty() bool {
	return q.Size() == 0
}

// Capacity returns the admission limit.
func (q *PendingQueue) Capacity() int {
	return q.capacity
}

// Oldest returns the pending job with the earliest submission time.
func (q *PendingQueue) Oldest() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, false
	}
	return slices.MinFunc(q.jobs, byAge), true
}

// PeekOldestAge returns how long the oldest pending job has waited.
func (q *PendingQueue) PeekOldestAge(now time.Time) (time.Duration, bool) {
	oldest, ok := q.Oldest()
	if !ok {
		return 0, false
	}
	return now.Sub(oldest.SubmittedAt), true
}

// Close stops admission and returns every job still pending, leaving the
// queue empty.
func (q *PendingQueue) Close() []*Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	drained := q.jobs
	q.jobs = nil
	return drained
}
