// Package classifier implements a stand-alone simulated classification server.
//
// It exposes the classification backend contract over HTTP so the proxy can
// be exercised end to end without a real model:
//
//	POST /classify {"sequences": [...]}  ->  200 {"results": [...]}
//	                                         400 when more than 5 sequences are sent
//	                                         429 while another request is in service
//	GET  /health                          ->  200 health report
//
// Requests are served one at a time and take max_len² cost units, exactly
// like the in-process backend.Simulated it wraps.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/sluice/internal/api/handlers"
	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/netutil"
	"github.com/concave-dev/sluice/internal/version"
	"github.com/gin-gonic/gin"
)

// Server is the simulated classification HTTP server.
type Server struct {
	backend    *backend.Simulated
	httpServer *http.Server
	bindAddr   string
	bindPort   int
	startTime  time.Time
}

// NewServer creates a classification server from cfg.
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid classifier config: %w", err)
	}

	labeler, err := backend.LabelerByName(cfg.Labeler, cfg.Seed)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	return &Server{
		backend:   backend.NewSimulated(cfg.CostUnit, backend.WithLabeler(labeler)),
		bindAddr:  cfg.BindAddr,
		bindPort:  cfg.BindPort,
		startTime: time.Now(),
	}, nil
}

// Router builds the gin engine serving the classification endpoints.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		logging.Debug("classifier: %s %s %d %v", param.Method, param.Path, param.StatusCode, param.Latency)
		return ""
	}))
	router.Use(gin.Recovery())

	router.POST("/classify", s.handleClassify)
	router.GET("/health", handlers.HandleHealth(version.SluicedVersion, s.startTime))
	router.GET("/stats", s.handleStats)

	return router
}

// Start binds the configured address and serves in the background.
func (s *Server) Start() error {
	listener, err := netutil.BindTCP(s.bindAddr, s.bindPort)
	if err != nil {
		return err
	}
	s.Serve(listener)
	return nil
}

// Serve serves on an already bound listener in the background.
func (s *Server) Serve(listener net.Listener) {
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	s.httpServer = &http.Server{
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("Classification server failed: %v", err)
		}
	}()

	logging.Success("Classification server listening on %s (cost unit %v)", listener.Addr(), s.backend.CostUnit())
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down classification server...")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Backend returns the simulated backend behind the server.
func (s *Server) Backend() *backend.Simulated {
	return s.backend
}

func (s *Server) handleClassify(c *gin.Context) {
	var req backend.ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	labels, err := s.backend.Classify(c.Request.Context(), req.Sequences)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, backend.ClassifyResponse{Results: labels})
	case errors.Is(err, backend.ErrBusy):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"detail": "Rate limit exceeded: only one request can be processed at a time",
		})
	case errors.Is(err, backend.ErrBatchTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Too many sequences",
			"details": err.Error(),
		})
	default:
		logging.Warn("classifier: request aborted: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Classification aborted",
			"details": err.Error(),
		})
	}
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.Stats())
}
