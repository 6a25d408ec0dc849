// Package daemon provides sluice daemon orchestration and lifecycle management.
//
// DAEMON ARCHITECTURE:
// The proxy is three components wired in a line:
//
//   - Backend: HTTP client for a remote classification server, or an
//     in-process simulated backend
//   - Scheduler: pending queue, batch planner and single-flight dispatcher
//   - HTTP API: accepts one string per request and waits for its label
//
// A Prometheus collector observes the scheduler and the API.
//
// SHUTDOWN ORDER:
// The API server stops first and waits up to --shutdown-timeout for
// requests already inside the scheduler to resolve; the scheduler is then
// stopped, failing anything still pending with "scheduler closed".
package daemon

import (
	"context"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/concave-dev/sluice/cmd/sluiced/config"
	"github.com/concave-dev/sluice/internal/api"
	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/classifier"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/metrics"
	"github.com/concave-dev/sluice/internal/netutil"
	"github.com/concave-dev/sluice/internal/scheduler"
	"github.com/concave-dev/sluice/internal/version"
)

// MetricsNamespace prefixes every exported Prometheus metric
const MetricsNamespace = "sluice"

// buildBackend creates the classifier the scheduler dispatches batches to
func buildBackend() (backend.Classifier, error) {
	switch config.Global.Backend {
	case config.BackendHTTP:
		httpConfig := backend.DefaultHTTPConfig(config.Global.BackendURL)
		httpConfig.Timeout = config.Global.BackendTimeout
		httpConfig.BusyRetries = config.Global.BackendRetries
		httpConfig.UserAgent = "sluiced/" + version.SluicedVersion

		logging.Info("Backend: classification server at %s", httpConfig.BaseURL)
		return backend.NewHTTPClient(httpConfig), nil

	case config.BackendSimulated:
		labeler, err := backend.LabelerByName(config.Global.Labeler, seedOrNow(config.Global.Seed))
		if err != nil {
			return nil, err
		}

		logging.Info("Backend: in-process simulation (cost unit %v, labeler %s)",
			config.Global.CostUnit, config.Global.Labeler)
		return backend.NewSimulated(config.Global.CostUnit, backend.WithLabeler(labeler)), nil
	}

	return nil, fmt.Errorf("unknown backend mode %q", config.Global.Backend)
}

// buildAPIConfig converts daemon config to API server config
func buildAPIConfig(sched *scheduler.Scheduler, collector *metrics.Collector) *api.Config {
	apiConfig := api.DefaultConfig()
	apiConfig.BindAddr = config.Global.APIAddr
	apiConfig.BindPort = config.Global.APIPort
	apiConfig.Scheduler = sched
	apiConfig.Metrics = collector
	return apiConfig
}

func seedOrNow(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// Run starts the proxy and blocks until SIGINT or SIGTERM, then shuts down
// gracefully.
func Run() error {
	logging.Info("Starting sluice daemon v%s", version.SluicedVersion)
	redirectStandardLog()

	// Reserve the API port before anything starts so a conflict fails fast
	listener, err := netutil.BindTCP(config.Global.APIAddr, config.Global.APIPort)
	if err != nil {
		return fmt.Errorf("failed to bind API address: %w", err)
	}

	classifierBackend, err := buildBackend()
	if err != nil {
		listener.Close()
		return fmt.Errorf("failed to create backend: %w", err)
	}

	collector := metrics.NewCollector(MetricsNamespace)

	schedConfig := config.Global.SchedulerConfig()
	sched, err := scheduler.New(classifierBackend, schedConfig, scheduler.WithObserver(collector))
	if err != nil {
		listener.Close()
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	sched.Start()

	apiServer, err := api.NewServerWithListener(buildAPIConfig(sched, collector), listener)
	if err != nil {
		listener.Close()
		stopScheduler(sched)
		return fmt.Errorf("invalid API config: %w", err)
	}
	if err := apiServer.Start(); err != nil {
		stopScheduler(sched)
		return fmt.Errorf("failed to start API server: %w", err)
	}

	logging.Success("sluice daemon started successfully")
	logging.Info("Daemon running... Press Ctrl+C to shutdown")
	logging.Info("  - HTTP API: %s", apiServer.Addr())
	logging.Info("  - Backend: %s", config.Global.Backend)
	logging.Info("  - Policy: max_wait=%v max_queue_depth=%d similarity_ratio=%.2f linger=%v",
		schedConfig.MaxWait, schedConfig.MaxQueueDepth, schedConfig.SimilarityRatio, schedConfig.Linger)

	sig := waitForSignal()
	logging.Info("Received signal: %v", sig)

	// ============================================================================
	// GRACEFUL SHUTDOWN SEQUENCE
	// API first so in-flight requests can still be answered, then scheduler
	// ============================================================================

	logging.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Global.ShutdownTimeout)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Error shutting down API server: %v", err)
	}

	stopScheduler(sched)

	logging.Success("sluice daemon shutdown completed")
	return nil
}

// RunBackend starts the simulated classification server and blocks until
// SIGINT or SIGTERM.
func RunBackend() error {
	redirectStandardLog()

	cfg := classifier.DefaultConfig()
	cfg.BindAddr = config.Backend.BindAddr
	cfg.BindPort = config.Backend.BindPort
	cfg.CostUnit = config.Backend.CostUnit
	cfg.Labeler = config.Backend.Labeler
	cfg.Seed = seedOrNow(config.Backend.Seed)

	server, err := classifier.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create classification server: %w", err)
	}
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start classification server: %w", err)
	}

	sig := waitForSignal()
	logging.Info("Received signal: %v", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("Error shutting down classification server: %v", err)
	}

	stats := server.Backend().Stats()
	logging.Success("Classification server stopped after %d calls (%d busy, %d oversized)",
		stats.Calls, stats.Busy, stats.Oversized)
	return nil
}

// redirectStandardLog routes net/http server errors and other standard
// library log output into the daemon log as warnings.
func redirectStandardLog() {
	stdlog.SetFlags(0)
	logging.RedirectStandardLog(logging.NewLevelWriter("WARN", "stdlog"))
}

func stopScheduler(sched *scheduler.Scheduler) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sched.Stop(ctx); err != nil {
		logging.Error("Error stopping scheduler: %v", err)
	}
}

func waitForSignal() os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	return <-sigCh
}
