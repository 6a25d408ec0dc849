package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/concave-dev/sluice/internal/api/handlers"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/metrics"
	"github.com/concave-dev/sluice/internal/netutil"
	"github.com/concave-dev/sluice/internal/version"
	"github.com/gin-gonic/gin"
)

// Server is the sluice proxy HTTP server
type Server struct {
	scheduler  handlers.Scheduler
	metrics    *metrics.Collector
	httpServer *http.Server
	listener   net.Listener
	bindAddr   string
	bindPort   int
	startTime  time.Time
}

// NewServer creates a new proxy server instance
func NewServer(config *Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		scheduler: config.Scheduler,
		metrics:   config.Metrics,
		bindAddr:  config.BindAddr,
		bindPort:  config.BindPort,
		startTime: time.Now(),
	}
}

// NewServerWithListener creates a server that serves on an already bound
// listener instead of binding BindAddr:BindPort itself.
func NewServerWithListener(config *Config, listener net.Listener) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid api config: %w", err)
	}
	if listener == nil {
		return nil, fmt.Errorf("listener cannot be nil")
	}

	s := NewServer(config)
	s.listener = listener
	if port, err := netutil.ListenerPort(listener); err == nil {
		s.bindPort = port
	}
	return s, nil
}

// Router builds the gin engine with middleware and routes installed.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(s.requestIDMiddleware())
	router.Use(s.loggingMiddleware())
	router.Use(s.corsMiddleware())
	if s.metrics != nil {
		router.Use(s.metricsMiddleware())
	}
	router.Use(gin.Recovery())

	s.setupRoutes(router)
	return router
}

// Start starts the proxy HTTP server in the background
func (s *Server) Start() error {
	// Configure Gin logging only if not already configured by CLI tools
	if !logging.IsConfiguredByCLI() {
		gin.DefaultWriter = logging.NewLevelWriter("INFO", "gin")
		gin.DefaultErrorWriter = logging.NewLevelWriter("ERROR", "gin")
	}

	listener := s.listener
	if listener == nil {
		logging.Info("Starting HTTP API server on %s:%d", s.bindAddr, s.bindPort)

		var err error
		listener, err = netutil.BindTCP(s.bindAddr, s.bindPort)
		if err != nil {
			return err
		}
		s.listener = listener
	}

	// WriteTimeout must exceed the longest a request can wait in the queue
	// plus one backend call, so it is left to the scheduler's own limits.
	s.httpServer = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logging.Error("HTTP server failed: %v", err)
		}
	}()

	logging.Success("HTTP API server listening on %s", listener.Addr())
	return nil
}

// Addr returns the address the server is listening on, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown gracefully shuts down the HTTP server, waiting for in-flight
// classify requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down HTTP API server...")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// getHandlerHealth is a health endpoint handler factory
func (s *Server) getHandlerHealth() gin.HandlerFunc {
	return handlers.HandleHealth(version.SluicedVersion, s.startTime)
}

// getHandlerReady is a readiness endpoint handler factory
func (s *Server) getHandlerReady() gin.HandlerFunc {
	return handlers.HandleReady(s.scheduler)
}

// getHandlerClassify is a classify endpoint handler factory
func (s *Server) getHandlerClassify() gin.HandlerFunc {
	return handlers.HandleClassify(s.scheduler)
}

// getHandlerStats is a stats endpoint handler factory
func (s *Server) getHandlerStats() gin.HandlerFunc {
	return handlers.HandleStats(s.scheduler)
}
