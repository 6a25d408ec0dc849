package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingQueueCapacity(t *testing.T) {
	q := NewPendingQueue(2)
	now := time.Now()

	require.NoError(t, q.Enqueue(testJob(1, 1, now)))
	require.NoError(t, q.Enqueue(testJob(2, 1, now)))

	err := q.Enqueue(testJob(3, 1, now))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueFull))

	var qf *QueueFullError
	require.True(t, errors.As(err, &qf))
	assert.Equal(t, 2, qf.Current)
	assert.Equal(t, 2, qf.Capacity)
	assert.Equal(t, "pending queue full: 2/2", qf.Error())
	assert.Equal(t, 2, q.Size())
}

func TestPendingQueueSelectMarksInBatch(t *testing.T) {
	q := NewPendingQueue(10)
	p := NewPlanner(*testConfig())
	now := time.Now()

	short := testJob(1, 1, now)
	long := testJob(2, 30, now)
	require.NoError(t, q.Enqueue(short))
	require.NoError(t, q.Enqueue(long))

	d := q.SelectForBatch(p, now)
	require.Equal(t, []*Job{short}, d.Jobs)
	assert.Equal(t, StateInBatch, short.State())
	assert.Equal(t, StatePending, long.State())
	assert.Equal(t, 1, q.Size())

	oldest, ok := q.Oldest()
	require.True(t, ok)
	assert.Same(t, long, oldest)
}

func TestPendingQueueRemove(t *testing.T) {
	q := NewPendingQueue(10)
	now := time.Now()
	a, b, c := testJob(1, 1, now), testJob(2, 2, now), testJob(3, 3, now)
	for _, j := range []*Job{a, b, c} {
		require.NoError(t, q.Enqueue(j))
	}

	assert.True(t, q.Remove(b))
	assert.False(t, q.Remove(b), "second removal is a no-op")
	assert.Equal(t, 2, q.Size())

	d := q.SelectForBatch(NewPlanner(*testConfig()), now)
	assert.Equal(t, []*Job{a, c}, d.Jobs)
	assert.False(t, q.Remove(a), "selected jobs cannot be removed")
	assert.True(t, q.IsEmpty())
}

func TestPendingQueueOldestAge(t *testing.T) {
	q := NewPendingQueue(10)
	base := time.Now()

	_, ok := q.PeekOldestAge(base)
	assert.False(t, ok)

	require.NoError(t, q.Enqueue(testJob(1, 1, base.Add(10*time.Millisecond))))
	require.NoError(t, q.Enqueue(testJob(2, 1, base)))

	age, ok := q.PeekOldestAge(base.Add(100 * time.Millisecond))
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, age)
}

func TestPendingQueueClose(t *testing.T) {
	q := NewPendingQueue(10)
	now := time.Now()
	require.NoError(t, q.Enqueue(testJob(1, 1, now)))
	require.NoError(t, q.Enqueue(testJob(2, 1, now)))

	drained := q.Close()
	assert.Len(t, drained, 2)
	assert.True(t, q.IsEmpty())
	assert.ErrorIs(t, q.Enqueue(testJob(3, 1, now)), ErrSchedulerClosed)
}
