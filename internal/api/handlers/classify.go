// Package handlers provides the HTTP handlers of the sluice proxy API.
//
// Each handler is built by a factory that receives its dependencies
// explicitly, so the handlers can be mounted on any gin router and tested
// with httptest without starting a server.
//
// ENDPOINTS:
//   - classify: one string in, one label out, batched behind the scenes
//   - stats: scheduler counters and active configuration
//   - health: liveness with version and uptime
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// MaxRequestBodyBytes bounds a classify request body. Larger bodies are
// refused with 413 before they reach the scheduler.
const MaxRequestBodyBytes = 1 << 20

// StatusClientClosedRequest is the non-standard status recorded when the
// caller disconnects before its job resolves.
const StatusClientClosedRequest = 499

// Scheduler is the part of the batching scheduler the API depends on.
type Scheduler interface {
	Submit(ctx context.Context, text string) (*scheduler.Handle, error)
	Stats() scheduler.Stats
	Config() scheduler.Config
}

// ClassifyRequest is the body of a classification request. Sequence is a
// pointer so that an empty string is accepted but a missing field is not.
type ClassifyRequest struct {
	Sequence *string `json:"sequence" binding:"required"`
}

// ClassifyResponse carries the label for the submitted sequence.
type ClassifyResponse struct {
	Result string `json:"result"`
}

// HandleClassify submits the request's sequence to the scheduler and waits
// for its label. The job is withdrawn if the caller disconnects while it is
// still queued.
func HandleClassify(sched Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxRequestBodyBytes)

		var req ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{
					"error":   "Request body too large",
					"details": fmt.Sprintf("limit is %d bytes", tooLarge.Limit),
				})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request format",
				"details": err.Error(),
			})
			return
		}

		ctx := c.Request.Context()

		handle, err := sched.Submit(ctx, *req.Sequence)
		if err != nil {
			respondSchedulerError(c, err)
			return
		}
		c.Header("X-Job-ID", handle.ID())

		label, err := handle.Wait(ctx)
		if err != nil {
			respondSchedulerError(c, err)
			return
		}

		c.JSON(http.StatusOK, ClassifyResponse{Result: label})
	}
}

// StatusForError maps scheduler errors to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, scheduler.ErrBackendFailure):
		return http.StatusBadGateway
	case errors.Is(err, scheduler.ErrSchedulerClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, scheduler.ErrWithdrawn), errors.Is(err, context.Canceled):
		return StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondSchedulerError(c *gin.Context, err error) {
	status := StatusForError(err)

	switch status {
	case StatusClientClosedRequest:
		logging.Debug("Classify request abandoned by client: %v", err)
		c.AbortWithStatus(status)
		return
	case http.StatusTooManyRequests:
		c.Header("Retry-After", "1")
	case http.StatusInternalServerError:
		logging.Error("Classify request failed: %v", err)
	}

	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"details": err.Error(),
	})
}
