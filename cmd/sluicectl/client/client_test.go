package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/concave-dev/sluice/internal/api"
	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newProxy serves the real proxy router over an in-process scheduler and
// returns a client pointed at it.
func newProxy(t *testing.T) *SluiceAPIClient {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := scheduler.DefaultConfig()
	cfg.MaxWait = 20 * time.Millisecond
	sim := backend.NewSimulated(time.Microsecond, backend.WithLabeler(backend.HeuristicLabeler))
	sched, err := scheduler.New(sim, cfg)
	require.NoError(t, err)
	sched.Start()
	t.Cleanup(func() { _ = sched.Stop(context.Background()) })

	server := api.NewServer(&api.Config{BindAddr: "127.0.0.1", Scheduler: sched})
	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return NewSluiceAPIClient(strings.TrimPrefix(ts.URL, "http://"), 5)
}

func TestClassify(t *testing.T) {
	c := newProxy(t)

	label, err := c.Classify(context.Background(), "func main() {}")
	require.NoError(t, err)
	assert.Equal(t, backend.LabelCode, label)

	label, err = c.Classify(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, backend.LabelNotCode, label)
}

func TestGetStatsHealthReady(t *testing.T) {
	c := newProxy(t)

	_, err := c.Classify(context.Background(), "abc")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stats, err := c.GetStats()
		return err == nil && stats.Scheduler.Completed == 1
	}, time.Second, 10*time.Millisecond)

	stats, err := c.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Config.MaxBatchSize)

	health, err := c.GetHealth()
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	ready, err := c.GetReady()
	require.NoError(t, err)
	assert.True(t, ready.Ready)
}

func TestClassifyErrorStatuses(t *testing.T) {
	tests := []struct {
		status int
		kind   string
	}{
		{http.StatusTooManyRequests, "queue_full"},
		{http.StatusBadGateway, "backend_failure"},
		{http.StatusServiceUnavailable, "unavailable"},
		{http.StatusTeapot, "http_418"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope","details":"detailed reason"}`))
			}))
			defer ts.Close()

			c := NewSluiceAPIClient(strings.TrimPrefix(ts.URL, "http://"), 5)
			_, err := c.Classify(context.Background(), "x")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "detailed reason", apiErr.Message)
			assert.Equal(t, tt.kind, Kind(err))
		})
	}
}

func TestClassifyConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	addr := strings.TrimPrefix(ts.URL, "http://")
	ts.Close()

	c := NewSluiceAPIClient(addr, 1)
	_, err := c.Classify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is sluiced running?")
	assert.Empty(t, Kind(err))
}
