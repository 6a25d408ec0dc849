// Package scheduler implements size-aware batching and admission control in
// front of a single-flight classification backend.
//
// Callers submit one string at a time and get back a Handle that resolves
// with a label or an error. The scheduler groups pending strings into batches
// of at most five and sends one batch at a time to the backend. Because a
// batch costs the square of its longest string, batches are formed from
// strings of similar length so short strings are not billed at a long
// string's price.
//
// COMPONENTS:
//   - PendingQueue: bounded admission-ordered set of pending jobs
//   - Planner: pure batch selection (overdue first, then similar length, optional linger)
//   - Dispatcher: single-flight backend calls with positional result delivery
//   - Scheduler: event loop tying the three together plus the public API
//
// EVENT LOOP:
// The loop is either Idle or Busy. While Idle it asks the planner for a batch
// whenever something changes (a submission, a timer, a completion) and
// dispatches it asynchronously, becoming Busy. While Busy it only waits for
// the completion. The timer is armed at the earlier of the oldest job's
// MaxWait deadline and any linger wake-up the planner asked for.
//
// GUARANTEES:
//   - At most one batch is in flight at any time
//   - Every admitted job resolves exactly once
//   - A job that has waited MaxWait is in the next batch dispatched, as long
//     as fewer than MaxBatchSize older jobs are also overdue
//   - Admission beyond MaxQueueDepth fails fast with ErrQueueFull
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/utils"
)

// Stats is a point-in-time snapshot of scheduler activity.
type Stats struct {
	State            string        `json:"state"` // idle or busy
	QueueDepth       int           `json:"queue_depth"`
	QueueCapacity    int           `json:"queue_capacity"`
	OldestPendingAge time.Duration `json:"oldest_pending_age"`

	Admitted  uint64 `json:"admitted"`
	Rejected  uint64 `json:"rejected"`
	Withdrawn uint64 `json:"withdrawn"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`

	Batches         uint64        `json:"batches"`
	BatchFailures   uint64        `json:"batch_failures"`
	LastBatchSize   int           `json:"last_batch_size"`
	LastBatchReason Reason        `json:"last_batch_reason,omitempty"`
	LastServiceTime time.Duration `json:"last_service_time"`
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now for submission timestamps and planning.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithObserver registers an event observer such as the metrics collector.
func WithObserver(o Observer) Option {
	return func(s *Scheduler) {
		s.observer = o
	}
}

// Scheduler batches submitted strings and feeds them to a backend.
type Scheduler struct {
	cfg        Config
	queue      *PendingQueue
	planner    *Planner
	dispatcher *Dispatcher
	observer   Observer
	now        func() time.Time

	seq atomic.Uint64

	// Coalescing wake-up signal for the event loop
	wake chan struct{}

	// Lifecycle management
	lifecycle sync.Mutex
	started   bool
	stopped   bool
	stopCh    chan struct{}
	doneCh    chan struct{}

	dispatchCtx    context.Context
	cancelDispatch context.CancelFunc

	busy          atomic.Bool
	admitted      atomic.Uint64
	rejected      atomic.Uint64
	withdrawn     atomic.Uint64
	completed     atomic.Uint64
	failed        atomic.Uint64
	batches       atomic.Uint64
	batchFailures atomic.Uint64

	mu        sync.Mutex
	lastBatch *Batch
}

// New creates a scheduler in front of b. Jobs may be submitted before Start;
// they wait in the queue until the loop runs.
func New(b backend.Classifier, cfg *Config, opts ...Option) (*Scheduler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}

	s := &Scheduler{
		cfg:      *cfg,
		queue:    NewPendingQueue(cfg.MaxQueueDepth),
		planner:  NewPlanner(*cfg),
		observer: NoopObserver{},
		now:      time.Now,
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatchCtx, s.cancelDispatch = context.WithCancel(context.Background())
	s.dispatcher = NewDispatcher(b, cfg.BackendTimeout, s.now, s.observer)

	return s, nil
}

// Start launches the event loop. Calling Start more than once, or after
// Stop, has no effect.
func (s *Scheduler) Start() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.started || s.stopped {
		return
	}
	s.started = true
	go s.run()

	logging.Info("Scheduler: Started (max_wait=%v, max_queue_depth=%d, max_batch_size=%d)",
		s.cfg.MaxWait, s.cfg.MaxQueueDepth, s.cfg.MaxBatchSize)
}

// Submit admits text for classification. It never blocks on the backend:
// it returns a Handle immediately, *QueueFullError when MaxQueueDepth jobs
// are already pending, or ErrSchedulerClosed after Stop.
func (s *Scheduler) Submit(ctx context.Context, text string) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := utils.GenerateID()
	if err != nil {
		return nil, err
	}

	job := newJob(id, text, s.seq.Add(1), s.now())
	if err := s.queue.Enqueue(job); err != nil {
		if errors.Is(err, ErrQueueFull) {
			s.rejected.Add(1)
			s.observer.JobRejected(err)
			logging.Debug("Scheduler: Rejected job (%v)", err)
		}
		return nil, err
	}

	s.admitted.Add(1)
	s.observer.JobAdmitted(job)
	s.signal()

	return &Handle{job: job, withdraw: s.withdraw}, nil
}

// Stop closes admission, fails every pending job with ErrSchedulerClosed and
// waits for the in-flight batch, if any, to resolve. If ctx ends first the
// in-flight backend call is cancelled, its jobs fail, and ctx.Err() is
// returned.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.lifecycle.Lock()
	if s.stopped {
		s.lifecycle.Unlock()
		return nil
	}
	s.stopped = true
	started := s.started
	s.lifecycle.Unlock()

	pending := s.queue.Close()
	for _, j := range pending {
		j.fail(StatePending, ErrSchedulerClosed)
		s.failed.Add(1)
	}
	close(s.stopCh)

	var err error
	if started {
		select {
		case <-s.doneCh:
		case <-ctx.Done():
			s.cancelDispatch()
			<-s.doneCh
			err = ctx.Err()
		}
	}
	s.cancelDispatch()

	logging.Info("Scheduler: Stopped (%d pending jobs failed)", len(pending))
	return err
}

// Stats returns a snapshot of queue and batch counters.
func (s *Scheduler) Stats() Stats {
	st := Stats{
		State:         "idle",
		QueueDepth:    s.queue.Size(),
		QueueCapacity: s.queue.Capacity(),
		Admitted:      s.admitted.Load(),
		Rejected:      s.rejected.Load(),
		Withdrawn:     s.withdrawn.Load(),
		Completed:     s.completed.Load(),
		Failed:        s.failed.Load(),
		Batches:       s.batches.Load(),
		BatchFailures: s.batchFailures.Load(),
	}
	if s.busy.Load() {
		st.State = "busy"
	}
	if age, ok := s.queue.PeekOldestAge(s.now()); ok {
		st.OldestPendingAge = age
	}

	s.mu.Lock()
	if b := s.lastBatch; b != nil {
		st.LastBatchSize = len(b.Jobs)
		st.LastBatchReason = b.Reason
		st.LastServiceTime = b.ServiceTime()
	}
	s.mu.Unlock()

	return st
}

// Config returns the active configuration.
func (s *Scheduler) Config() Config {
	return s.cfg
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) withdraw(job *Job) bool {
	if !s.queue.Remove(job) {
		return false
	}
	job.fail(StatePending, ErrWithdrawn)
	s.withdrawn.Add(1)
	s.failed.Add(1)
	s.observer.JobWithdrawn(job)
	s.observer.QueueDepth(s.queue.Size())
	logging.Debug("Scheduler: Withdrew job %s", logging.FormatJobID(job.ID))
	return true
}

// run is the event loop. It owns the Idle/Busy state.
func (s *Scheduler) run() {
	defer close(s.doneCh)

	completed := make(chan *Batch, 1)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	busy := false
	for {
		var timerC <-chan time.Time

		if !busy {
			d := s.queue.SelectForBatch(s.planner, s.now())
			if !d.Empty() {
				busy = true
				s.launch(d, completed)
			} else if wakeAt, ok := s.nextWake(d); ok {
				timer.Reset(max(time.Millisecond, wakeAt.Sub(s.now())))
				timerC = timer.C
			}
		}
		s.observer.QueueDepth(s.queue.Size())

		select {
		case <-s.wake:
		case <-timerC:
		case b := <-completed:
			busy = false
			s.record(b)
		case <-s.stopCh:
			if busy {
				s.record(<-completed)
			}
			return
		}
		timer.Stop()
	}
}

// nextWake returns when an idle loop with nothing to send should look again:
// the earlier of the planner's linger wake-up and the oldest job's deadline.
func (s *Scheduler) nextWake(d Decision) (time.Time, bool) {
	oldest, ok := s.queue.Oldest()
	if !ok {
		return time.Time{}, false
	}
	wakeAt := s.planner.Deadline(oldest)
	if !d.WakeAt.IsZero() && d.WakeAt.Before(wakeAt) {
		wakeAt = d.WakeAt
	}
	return wakeAt, true
}

func (s *Scheduler) launch(d Decision, completed chan<- *Batch) {
	id, err := utils.GenerateID()
	if err != nil {
		id = fmt.Sprintf("batch-%d", s.batches.Load()+1)
	}
	batch := newBatch(id, d.Jobs, d.Reason)
	s.busy.Store(true)

	go func() {
		defer func() { completed <- batch }()
		_ = s.dispatcher.Dispatch(s.dispatchCtx, batch)
	}()
}

func (s *Scheduler) record(b *Batch) {
	s.busy.Store(false)
	s.batches.Add(1)

	failed := false
	for _, j := range b.Jobs {
		if j.State() == StateCompleted {
			s.completed.Add(1)
		} else {
			s.failed.Add(1)
			failed = true
		}
	}
	if failed {
		s.batchFailures.Add(1)
	}

	s.mu.Lock()
	s.lastBatch = b
	s.mu.Unlock()
}
