package logging

import (
	"bytes"
	stdlog "log"
	"os"
	"strings"
	"testing"
)

// captureLogOutput routes all log levels into a buffer for the duration of fn.
func captureLogOutput(level string, fn func()) string {
	var buf bytes.Buffer

	SetLevel(level)
	SetOutput(&buf)
	defer RestoreOutput()

	fn()

	return strings.TrimSpace(buf.String())
}

// TestLogLevels tests that each logging function emits its message
func TestLogLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func()
		expected string
	}{
		{
			name:     "Info level",
			logFunc:  func() { Info("test info message") },
			expected: "test info message",
		},
		{
			name:     "Warn level",
			logFunc:  func() { Warn("test warn message") },
			expected: "test warn message",
		},
		{
			name:     "Error level",
			logFunc:  func() { Error("test error message") },
			expected: "test error message",
		},
		{
			name:     "Debug level",
			logFunc:  func() { Debug("test debug message") },
			expected: "test debug message",
		},
		{
			name:     "Success level",
			logFunc:  func() { Success("batch %s dispatched", "b1") },
			expected: "batch b1 dispatched",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput("DEBUG", tt.logFunc)
			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got %q", tt.expected, output)
			}
		})
	}
}

// TestLevelFiltering tests that messages below the configured level are dropped
func TestLevelFiltering(t *testing.T) {
	output := captureLogOutput("WARN", func() {
		Debug("hidden debug")
		Info("hidden info")
		Success("hidden success")
		Warn("visible warn")
	})

	for _, hidden := range []string{"hidden debug", "hidden info", "hidden success"} {
		if strings.Contains(output, hidden) {
			t.Errorf("Expected %q to be filtered, got %q", hidden, output)
		}
	}
	if !strings.Contains(output, "visible warn") {
		t.Errorf("Expected warn message in output, got %q", output)
	}
}

// TestLevelWriter tests line splitting and prefixing for library integration
func TestLevelWriter(t *testing.T) {
	output := captureLogOutput("DEBUG", func() {
		w := NewLevelWriter("info", "gin")
		n, err := w.Write([]byte("first line\n\n  second line  \n"))
		if err != nil {
			t.Errorf("Write returned error: %v", err)
		}
		if n != len("first line\n\n  second line  \n") {
			t.Errorf("Write returned n=%d", n)
		}
	})

	if !strings.Contains(output, "gin: first line") {
		t.Errorf("Expected prefixed first line, got %q", output)
	}
	if !strings.Contains(output, "gin: second line") {
		t.Errorf("Expected trimmed second line, got %q", output)
	}
	if strings.Count(output, "gin:") != 2 {
		t.Errorf("Expected blank lines to be skipped, got %q", output)
	}
}

// TestRestyLogger tests that resty output is demoted and prefixed
func TestRestyLogger(t *testing.T) {
	output := captureLogOutput("DEBUG", func() {
		RestyLogger{}.Errorf("request failed: %s\n", "boom")
		RestyLogger{}.Debugf("retrying")
	})

	if !strings.Contains(output, "(resty) request failed: boom") {
		t.Errorf("Expected resty error line, got %q", output)
	}
	if !strings.Contains(output, "WARN") {
		t.Errorf("Expected resty errors at WARN, got %q", output)
	}
}

// TestValidateLogLevel tests the canonical level set
func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
	}{
		{"DEBUG", false},
		{"INFO", false},
		{"WARN", false},
		{"ERROR", false},
		{"debug", true},
		{"TRACE", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			err := ValidateLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogLevel(%q) error = %v, wantErr %v", tt.level, err, tt.wantErr)
			}
		})
	}
}

// TestFormatID tests level-aware ID truncation
func TestFormatID(t *testing.T) {
	id := "0f8e2c4a-1b3d-4e5f-8a9b-0c1d2e3f4a5b"
	defer RestoreOutput()

	SetLevel("DEBUG")
	if got := FormatJobID(id); got != id {
		t.Errorf("FormatJobID at DEBUG = %q, want full id", got)
	}

	SetLevel("INFO")
	if got := FormatBatchID(id); got != "0f8e2c4a" {
		t.Errorf("FormatBatchID at INFO = %q, want %q", got, "0f8e2c4a")
	}
}

// TestRedirectStandardLog tests that standard library log output reaches the
// level writer
func TestRedirectStandardLog(t *testing.T) {
	t.Cleanup(func() { RedirectStandardLog(os.Stderr) })

	out := captureLogOutput("INFO", func() {
		RedirectStandardLog(NewLevelWriter("WARN", "stdlog"))
		stdlog.Print("http: TLS handshake error")
	})

	if !strings.Contains(out, "WARN") || !strings.Contains(out, "stdlog:") ||
		!strings.Contains(out, "TLS handshake error") {
		t.Errorf("expected redirected warning, got %q", out)
	}

	out = captureLogOutput("INFO", func() {
		RedirectStandardLog(nil)
		stdlog.Print("discarded")
	})
	if strings.Contains(out, "discarded") {
		t.Errorf("expected nil writer to discard output, got %q", out)
	}
}
