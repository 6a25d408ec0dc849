package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse reports liveness of a sluice process
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ReadyResponse reports whether the proxy can admit more work
type ReadyResponse struct {
	Ready         bool   `json:"ready"`
	State         string `json:"state"`
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
}

// HandleHealth returns the health status of the server
func HandleHealth(version string, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now(),
			Version:   version,
			Uptime:    time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// HandleReady returns 503 while the pending queue is at capacity, so load
// balancers can steer traffic away before requests start failing with 429.
func HandleReady(sched Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := sched.Stats()
		resp := ReadyResponse{
			Ready:         st.QueueDepth < st.QueueCapacity,
			State:         st.State,
			QueueDepth:    st.QueueDepth,
			QueueCapacity: st.QueueCapacity,
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}
