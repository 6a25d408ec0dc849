package handlers

import (
	"net/http"

	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// StatsResponse reports live scheduler counters alongside the policy in force.
type StatsResponse struct {
	Scheduler scheduler.Stats  `json:"scheduler"`
	Config    scheduler.Config `json:"config"`
}

// HandleStats returns scheduler statistics.
func HandleStats(sched Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, StatsResponse{
			Scheduler: sched.Stats(),
			Config:    sched.Config(),
		})
	}
}
