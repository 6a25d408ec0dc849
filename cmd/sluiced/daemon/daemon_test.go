package daemon

import (
	"bytes"
	stdlog "log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/concave-dev/sluice/cmd/sluiced/config"
	"github.com/concave-dev/sluice/internal/backend"
	"github.com/concave-dev/sluice/internal/logging"
	"github.com/concave-dev/sluice/internal/metrics"
	"github.com/concave-dev/sluice/internal/scheduler"
)

func TestBuildBackend(t *testing.T) {
	saved := config.Global
	t.Cleanup(func() { config.Global = saved })

	tests := []struct {
		name        string
		mode        string
		check       func(backend.Classifier) bool
		expectError bool
	}{
		{
			name: "http",
			mode: config.BackendHTTP,
			check: func(c backend.Classifier) bool {
				h, ok := c.(*backend.HTTPClient)
				return ok && h.BaseURL() == "http://127.0.0.1:8001"
			},
		},
		{
			name: "simulated",
			mode: config.BackendSimulated,
			check: func(c backend.Classifier) bool {
				s, ok := c.(*backend.Simulated)
				return ok && s.CostUnit() == 3*time.Millisecond
			},
		},
		{name: "unknown", mode: "carrier-pigeon", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.Global = config.Config{
				Backend:        tt.mode,
				BackendURL:     "http://127.0.0.1:8001",
				BackendTimeout: time.Second,
				CostUnit:       3 * time.Millisecond,
				Labeler:        "heuristic",
			}

			c, err := buildBackend()
			if tt.expectError {
				if err == nil {
					t.Fatal("buildBackend() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildBackend() error = %v", err)
			}
			if !tt.check(c) {
				t.Errorf("buildBackend() returned %T with unexpected settings", c)
			}
		})
	}
}

func TestBuildAPIConfig(t *testing.T) {
	saved := config.Global
	t.Cleanup(func() { config.Global = saved })

	config.Global.APIAddr = "127.0.0.1"
	config.Global.APIPort = 8123

	sched, err := scheduler.New(backend.NewSimulated(time.Microsecond), nil)
	if err != nil {
		t.Fatalf("scheduler.New() error = %v", err)
	}
	collector := metrics.NewCollector("sluice_daemon_test")

	apiConfig := buildAPIConfig(sched, collector)
	if apiConfig.BindAddr != "127.0.0.1" || apiConfig.BindPort != 8123 {
		t.Errorf("buildAPIConfig() bind = %s:%d, want 127.0.0.1:8123", apiConfig.BindAddr, apiConfig.BindPort)
	}
	if apiConfig.Metrics != collector {
		t.Error("buildAPIConfig() did not wire the metrics collector")
	}
	if err := apiConfig.Validate(); err != nil {
		t.Errorf("buildAPIConfig() produced invalid config: %v", err)
	}
}

func TestSeedOrNow(t *testing.T) {
	if got := seedOrNow(42); got != 42 {
		t.Errorf("seedOrNow(42) = %d, want 42", got)
	}
	if got := seedOrNow(0); got == 0 {
		t.Error("seedOrNow(0) should pick a non-zero seed")
	}
}

func TestRedirectStandardLog(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLevel("INFO")
	logging.SetOutput(&buf)
	t.Cleanup(func() {
		logging.RestoreOutput()
		stdlog.SetOutput(os.Stderr)
		stdlog.SetFlags(stdlog.LstdFlags)
	})

	redirectStandardLog()
	stdlog.Print("http: Accept error: too many open files")

	out := buf.String()
	if !strings.Contains(out, "stdlog: http: Accept error") {
		t.Errorf("standard log line not routed to daemon log: %q", out)
	}
}
