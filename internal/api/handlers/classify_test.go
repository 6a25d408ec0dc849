package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleClassify(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, true, nil)
	handler := HandleClassify(sched)

	tests := []struct {
		name  string
		body  string
		label string
	}{
		{"code", `{"sequence": "func main() {}"}`, backend.LabelCode},
		{"prose", `{"sequence": "the quick brown fox"}`, backend.LabelNotCode},
		{"empty string", `{"sequence": ""}`, backend.LabelNotCode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler, tt.body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp ClassifyResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.label, resp.Result)
			assert.NotEmpty(t, w.Header().Get("X-Job-ID"))
		})
	}
}

func TestHandleClassifyBodyTooLarge(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, true, nil)

	body := `{"sequence": "` + strings.Repeat("a", MaxRequestBodyBytes) + `"}`
	w := postJSON(t, HandleClassify(sched), body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "too large")
	assert.Zero(t, sched.Stats().Admitted)
}

func TestHandleClassifyBadRequest(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, true, nil)
	handler := HandleClassify(sched)

	for _, body := range []string{
		`not json`,
		`{}`,
		`{"sequences": ["a"]}`,
		`{"sequence": 42}`,
	} {
		t.Run(body, func(t *testing.T) {
			w := postJSON(t, handler, body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Zero(t, sched.Stats().Admitted)
}

func TestHandleClassifyConcurrentRequests(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, true, nil)
	handler := HandleClassify(sched)

	const n = 12
	var wg sync.WaitGroup
	codes := make([]int, n)
	results := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			text := fmt.Sprintf("sentence number %d", i)
			if i%2 == 0 {
				text = fmt.Sprintf("func f%d() {}", i)
			}
			w := postJSON(t, handler, fmt.Sprintf(`{"sequence": %q}`, text))
			codes[i] = w.Code

			var resp ClassifyResponse
			_ = json.Unmarshal(w.Body.Bytes(), &resp)
			results[i] = resp.Result
		}()
	}
	wg.Wait()

	for i := range n {
		assert.Equal(t, http.StatusOK, codes[i])
		want := backend.LabelNotCode
		if i%2 == 0 {
			want = backend.LabelCode
		}
		assert.Equal(t, want, results[i], "request %d", i)
	}
}

func TestHandleClassifyQueueFull(t *testing.T) {
	// Not started, so the first job stays pending and fills the queue.
	sched := newTestScheduler(t, &stubBackend{}, false, func(c *scheduler.Config) {
		c.MaxQueueDepth = 1
	})
	_, err := sched.Submit(context.Background(), "occupant")
	require.NoError(t, err)

	w := postJSON(t, HandleClassify(sched), `{"sequence": "overflow"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, uint64(1), sched.Stats().Rejected)
}

func TestHandleClassifyBackendFailure(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{err: errors.New("model crashed")}, true, nil)

	w := postJSON(t, HandleClassify(sched), `{"sequence": "anything"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "model crashed")
}

func TestHandleClassifySchedulerStopped(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, true, nil)
	require.NoError(t, sched.Stop(context.Background()))

	w := postJSON(t, HandleClassify(sched), `{"sequence": "late"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandleClassifyClientGone(t *testing.T) {
	sched := newTestScheduler(t, &stubBackend{}, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := postJSONWithContext(t, ctx, HandleClassify(sched), `{"sequence": "never mind"}`)
	assert.Equal(t, StatusClientClosedRequest, w.Code)
	assert.Zero(t, sched.Stats().QueueDepth)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&scheduler.QueueFullError{Current: 3, Capacity: 3}, http.StatusTooManyRequests},
		{&scheduler.BackendError{BatchID: "b", Size: 2, Cause: errors.New("boom")}, http.StatusBadGateway},
		{scheduler.ErrSchedulerClosed, http.StatusServiceUnavailable},
		{scheduler.ErrWithdrawn, StatusClientClosedRequest},
		{context.Canceled, StatusClientClosedRequest},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{&scheduler.InvariantViolationError{Invariant: "single-flight", Detail: "x"}, http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}
