package api

import (
	"context"
	"testing"
	"time"

	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/metrics"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a config over a running scheduler backed by an
// instant simulated classifier, with metrics enabled.
func newTestConfig(t *testing.T) *Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := scheduler.DefaultConfig()
	cfg.MaxWait = 50 * time.Millisecond

	sched, err := scheduler.New(backend.NewSimulated(time.Microsecond), cfg)
	require.NoError(t, err)
	sched.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sched.Stop(ctx)
	})

	return &Config{
		BindAddr:  "127.0.0.1",
		BindPort:  0,
		Scheduler: sched,
		Metrics:   metrics.NewCollector("sluice_test"),
	}
}
