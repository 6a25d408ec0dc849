// Package config provides configuration validation tests for the sluice daemon.
//
// Each case starts from a known-good configuration and changes one field,
// checking both that invalid values are rejected and that the API address
// is split into host and port on success.
package config

import (
	"strings"
	"testing"
	"time"
)

func validGlobal() Config {
	return Config{
		APIAddr:         "127.0.0.1:8000",
		Backend:         BackendHTTP,
		BackendURL:      "http://127.0.0.1:8001",
		BackendRetries:  3,
		CostUnit:        2 * time.Millisecond,
		Labeler:         "random",
		MaxWait:         1500 * time.Millisecond,
		MaxQueueDepth:   1000,
		BackendTimeout:  30 * time.Second,
		SimilarityRatio: 1.5,
		MinSpread:       2,
		ShutdownTimeout: DefaultShutdown,
		LogLevel:        "INFO",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name          string
		modify        func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:   "defaults_ok",
			modify: func(c *Config) {},
		},
		{
			name: "simulated_backend_ok",
			modify: func(c *Config) {
				c.Backend = BackendSimulated
				c.BackendURL = ""
				c.Labeler = "heuristic"
			},
		},
		{
			name:          "unknown_backend_mode",
			modify:        func(c *Config) { c.Backend = "grpc" },
			expectError:   true,
			errorContains: "invalid backend mode",
		},
		{
			name:          "http_mode_requires_url",
			modify:        func(c *Config) { c.BackendURL = "" },
			expectError:   true,
			errorContains: "invalid backend URL",
		},
		{
			name: "simulated_mode_rejects_unknown_labeler",
			modify: func(c *Config) {
				c.Backend = BackendSimulated
				c.Labeler = "oracle"
			},
			expectError:   true,
			errorContains: "unknown labeler",
		},
		{
			name:          "api_port_zero",
			modify:        func(c *Config) { c.APIAddr = "127.0.0.1:0" },
			expectError:   true,
			errorContains: "specific port",
		},
		{
			name:          "api_hostname_rejected",
			modify:        func(c *Config) { c.APIAddr = "localhost:8000" },
			expectError:   true,
			errorContains: "invalid API address",
		},
		{
			name:          "invalid_log_level",
			modify:        func(c *Config) { c.LogLevel = "TRACE" },
			expectError:   true,
			errorContains: "log level",
		},
		{
			name:          "zero_max_wait",
			modify:        func(c *Config) { c.MaxWait = 0 },
			expectError:   true,
			errorContains: "scheduler",
		},
		{
			name:          "zero_queue_depth",
			modify:        func(c *Config) { c.MaxQueueDepth = 0 },
			expectError:   true,
			errorContains: "scheduler",
		},
		{
			name:          "linger_not_below_max_wait",
			modify:        func(c *Config) { c.Linger = 2 * time.Second },
			expectError:   true,
			errorContains: "scheduler",
		},
		{
			name:        "zero_shutdown_timeout",
			modify:      func(c *Config) { c.ShutdownTimeout = 0 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Global = validGlobal()
			tt.modify(&Global)

			err := ValidateConfig()
			if tt.expectError {
				if err == nil {
					t.Fatalf("ValidateConfig() error = nil, want error")
				}
				if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("ValidateConfig() error = %q, want it to contain %q", err, tt.errorContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateConfig() unexpected error = %v", err)
			}
		})
	}
}

func TestValidateConfigSplitsAPIAddress(t *testing.T) {
	Global = validGlobal()
	Global.APIAddr = "0.0.0.0:9090"

	if err := ValidateConfig(); err != nil {
		t.Fatalf("ValidateConfig() unexpected error = %v", err)
	}
	if Global.APIAddr != "0.0.0.0" || Global.APIPort != 9090 {
		t.Errorf("API address = %s:%d, want 0.0.0.0:9090", Global.APIAddr, Global.APIPort)
	}
}

func TestSchedulerConfig(t *testing.T) {
	c := validGlobal()
	c.Linger = 100 * time.Millisecond
	c.LargeLength = 40

	sc := c.SchedulerConfig()
	if sc.MaxWait != c.MaxWait || sc.MaxQueueDepth != c.MaxQueueDepth {
		t.Errorf("SchedulerConfig() = %+v, did not carry max wait / queue depth", sc)
	}
	if sc.Linger != c.Linger || sc.LargeLength != c.LargeLength {
		t.Errorf("SchedulerConfig() = %+v, did not carry linger settings", sc)
	}
	if sc.MaxBatchSize != 5 {
		t.Errorf("SchedulerConfig() MaxBatchSize = %d, want 5", sc.MaxBatchSize)
	}
}

func TestValidateBackendConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfg         BackendConfig
		expectError bool
	}{
		{"ok", BackendConfig{Bind: "0.0.0.0:8001", CostUnit: time.Millisecond, Labeler: "random", LogLevel: "INFO"}, false},
		{"port_zero", BackendConfig{Bind: "0.0.0.0:0", CostUnit: time.Millisecond, Labeler: "random", LogLevel: "INFO"}, true},
		{"zero_cost_unit", BackendConfig{Bind: "0.0.0.0:8001", Labeler: "random", LogLevel: "INFO"}, true},
		{"bad_labeler", BackendConfig{Bind: "0.0.0.0:8001", CostUnit: time.Millisecond, Labeler: "x", LogLevel: "INFO"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Backend = tt.cfg
			err := ValidateBackendConfig()
			if (err != nil) != tt.expectError {
				t.Errorf("ValidateBackendConfig() error = %v, expectError %v", err, tt.expectError)
			}
			if err == nil && Backend.BindPort != 8001 {
				t.Errorf("BindPort = %d, want 8001", Backend.BindPort)
			}
		})
	}
}
