package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// echoLabel is the label fakeBackend assigns to text, so tests can check
// that each job received its own result.
func echoLabel(text string) string {
	return "label:" + text
}

// fakeBackend records every batch it serves and tracks concurrent calls.
type fakeBackend struct {
	delay time.Duration
	err   error
	short bool // return one label too few

	// failFirst limits err to the first failFirst calls; 0 fails every call.
	failFirst int32
	calls     atomic.Int32

	mu      sync.Mutex
	batches [][]string

	active    atomic.Int32
	maxActive atomic.Int32

	// When non-nil, Classify blocks until release is closed.
	release chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) Classify(ctx context.Context, texts []string) ([]string, error) {
	call := f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		cur := f.maxActive.Load()
		if n <= cur || f.maxActive.CompareAndSwap(cur, n) {
			break
		}
	}

	f.mu.Lock()
	f.batches = append(f.batches, append([]string(nil), texts...))
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil && (f.failFirst == 0 || call <= f.failFirst) {
		return nil, f.err
	}

	labels := make([]string, 0, len(texts))
	for _, t := range texts {
		labels = append(labels, echoLabel(t))
	}
	if f.short {
		labels = labels[:len(labels)-1]
	}
	return labels, nil
}

func (f *fakeBackend) recorded() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.batches...)
}

// waitObserver records how long each job spent pending before dispatch and
// the longest backend service time seen.
type waitObserver struct {
	NoopObserver
	mu         sync.Mutex
	waits      map[string]time.Duration
	order      []string // job texts in dispatch order
	maxService time.Duration
}

func newWaitObserver() *waitObserver {
	return &waitObserver{waits: make(map[string]time.Duration)}
}

func (o *waitObserver) BatchDispatched(b *Batch) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, j := range b.Jobs {
		o.waits[j.ID] = b.DispatchedAt.Sub(j.SubmittedAt)
		o.order = append(o.order, j.Text)
	}
}

func (o *waitObserver) BatchCompleted(b *Batch, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.maxService = max(o.maxService, b.ServiceTime())
}

// snapshot returns the longest recorded wait, the longest service time and
// the dispatch order.
func (o *waitObserver) snapshot() (longestWait, maxService time.Duration, order []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, w := range o.waits {
		longestWait = max(longestWait, w)
	}
	return longestWait, o.maxService, append([]string(nil), o.order...)
}

type panicBackend struct{}

func (panicBackend) Classify(context.Context, []string) ([]string, error) {
	panic("model crashed")
}

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testJob builds a pending job of the given length submitted at at.
func testJob(seq uint64, length int, at time.Time) *Job {
	return newJob(fmt.Sprintf("job-%d", seq), strings.Repeat("x", length), seq, at)
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.MaxWait = 200 * time.Millisecond
	cfg.MaxQueueDepth = 100
	cfg.BackendTimeout = 2 * time.Second
	return cfg
}
