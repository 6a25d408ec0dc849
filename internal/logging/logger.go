// Package logging provides colorful leveled logging for the sluice proxy, the
// simulated classification backend and the sluicectl CLI.
//
// All components log through package-level printf-style functions so that the
// scheduler, HTTP layers and command handlers share one output format and one
// level filter. Third-party libraries that expect an io.Writer (gin) or a
// logger interface (resty) are bridged into the same pipeline.
//
// LOGGING FEATURES:
//   - Color-coded levels: DEBUG (purple), INFO (blue), WARN (yellow), ERROR (red), SUCCESS (green)
//   - Unix stream split: INFO/SUCCESS to stdout, WARN/ERROR/DEBUG to stderr
//   - Single-file mode: every level goes to one log file when --log-file is set
//   - Library bridges: LevelWriter for gin, RestyLogger for resty clients
//
// The CLI suppresses everything below ERROR by default so command output stays
// clean; the daemon runs at INFO unless configured otherwise.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	stdlog "log"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	mu sync.RWMutex

	// INFO/SUCCESS messages
	stdoutLogger = newLogger(os.Stdout)

	// WARN/ERROR/DEBUG messages
	stderrLogger = newLogger(os.Stderr)

	cliConfigured = false

	currentStdoutOutput io.Writer = os.Stdout

	// Single destination overriding the stdout/stderr split
	usingLogFile  = false
	logFileHandle io.Writer
)

// setupCustomStyles creates the color scheme for each log level. The colors
// were picked to stay readable on both light and dark terminals.
func setupCustomStyles() *log.Styles {
	styles := log.DefaultStyles()

	// DEBUG: light purple
	styles.Levels[log.DebugLevel] = lipgloss.NewStyle().
		SetString("DEBUG").
		Foreground(lipgloss.Color("#7F6DFF"))

	// INFO: light blue
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO").
		Foreground(lipgloss.Color("#42E7FF"))

	// WARN: light yellow
	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN").
		Foreground(lipgloss.Color("#FFE763"))

	// ERROR: light red/pink
	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR").
		Foreground(lipgloss.Color("#FF4473"))

	return styles
}

// newLogger builds a charmbracelet logger with RFC3339 timestamps and the
// custom level styles applied.
func newLogger(w io.Writer) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	l.SetStyles(setupCustomStyles())
	return l
}

func loggers() (*log.Logger, *log.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return stdoutLogger, stderrLogger
}

// getStdoutLoggerOutput returns the current destination for INFO/SUCCESS,
// honouring log file redirection.
func getStdoutLoggerOutput() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	if usingLogFile {
		return logFileHandle
	}
	return currentStdoutOutput
}

// Info logs informational messages about proxy and scheduler activity.
func Info(format string, v ...any) {
	out, _ := loggers()
	out.Info(fmt.Sprintf(format, v...))
}

// Warn logs non-fatal problems such as backend failures or rejected jobs.
func Warn(format string, v ...any) {
	_, errOut := loggers()
	errOut.Warn(fmt.Sprintf(format, v...))
}

// Error logs failures that need operator attention.
func Error(format string, v ...any) {
	_, errOut := loggers()
	errOut.Error(fmt.Sprintf(format, v...))
}

// Success logs completed operations in green. It is INFO under the hood and
// is filtered exactly like Info.
func Success(format string, v ...any) {
	out, _ := loggers()
	if out.GetLevel() > log.InfoLevel {
		return
	}

	styles := setupCustomStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("SUCCESS").
		Foreground(lipgloss.Color("#60F281")) // Light green

	tempLogger := log.NewWithOptions(getStdoutLoggerOutput(), log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})
	tempLogger.SetStyles(styles)
	tempLogger.Info(fmt.Sprintf(format, v...))
}

// Debug logs per-batch and per-request detail for troubleshooting.
func Debug(format string, v ...any) {
	_, errOut := loggers()
	errOut.Debug(fmt.Sprintf(format, v...))
}

// parseLevel maps a level name to the charmbracelet level, defaulting to INFO
// for anything unrecognised.
func parseLevel(level string) log.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return log.DebugLevel
	case "INFO":
		return log.InfoLevel
	case "WARN":
		return log.WarnLevel
	case "ERROR":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// SetLevel sets the minimum level for both output streams. Accepts DEBUG,
// INFO, WARN and ERROR; unknown values fall back to INFO.
//
// Operators typically run the proxy at INFO and switch to DEBUG to see the
// individual batch decisions made by the scheduler.
func SetLevel(level string) {
	logLevel := parseLevel(level)
	out, errOut := loggers()
	out.SetLevel(logLevel)
	errOut.SetLevel(logLevel)
}

// GetLevel returns the current level name of the stderr stream.
func GetLevel() string {
	_, errOut := loggers()
	return strings.ToUpper(errOut.GetLevel().String())
}

// SetOutput routes every level to w, overriding the stdout/stderr split.
// Passing nil suppresses all output.
//
// The daemon uses this for --log-file; tests use it to capture log lines in a
// buffer.
func SetOutput(w io.Writer) {
	if w == nil {
		out, errOut := loggers()
		out.SetLevel(log.FatalLevel + 1)
		errOut.SetLevel(log.FatalLevel + 1)
		mu.Lock()
		usingLogFile = false
		mu.Unlock()
		return
	}

	_, errOut := loggers()
	level := errOut.GetLevel()

	mu.Lock()
	usingLogFile = true
	logFileHandle = w
	stdoutLogger = newLogger(w)
	stderrLogger = newLogger(w)
	stdoutLogger.SetLevel(level)
	stderrLogger.SetLevel(level)
	mu.Unlock()
}

// SuppressOutput hides everything below ERROR. Used by sluicectl so that only
// command output reaches the terminal.
func SuppressOutput() {
	out, errOut := loggers()
	out.SetLevel(log.ErrorLevel)
	errOut.SetLevel(log.ErrorLevel)
	mu.Lock()
	cliConfigured = true
	mu.Unlock()
}

// RestoreOutput resets both loggers to the Unix stream split at INFO level.
func RestoreOutput() {
	mu.Lock()
	defer mu.Unlock()

	usingLogFile = false
	logFileHandle = nil
	stdoutLogger = newLogger(os.Stdout)
	stderrLogger = newLogger(os.Stderr)
	stdoutLogger.SetLevel(log.InfoLevel)
	stderrLogger.SetLevel(log.InfoLevel)
	currentStdoutOutput = os.Stdout
	cliConfigured = true
}

// IsConfiguredByCLI returns true if logging has been explicitly configured by CLI tools.
func IsConfiguredByCLI() bool {
	mu.RLock()
	defer mu.RUnlock()
	return cliConfigured
}

// ============================================================================
// LIBRARY INTEGRATION - Writers and adapters for third-party libraries
// ============================================================================

// LevelWriter forwards log lines to a specific log level with optional prefix.
// gin's DefaultWriter and DefaultErrorWriter are pointed at one of these.
type LevelWriter struct {
	level  string
	prefix string
}

// NewLevelWriter creates a writer that logs each line at the specified level with prefix.
// Valid levels: DEBUG, INFO, WARN, ERROR
func NewLevelWriter(level, prefix string) io.Writer {
	return &LevelWriter{level: strings.ToUpper(level), prefix: prefix}
}

// Write splits p into lines and logs each non-empty line at the configured
// level. It never fails so that callers are not interrupted by logging.
func (w *LevelWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		msg := line
		if w.prefix != "" {
			msg = w.prefix + ": " + line
		}
		switch w.level {
		case "DEBUG":
			Debug("%s", msg)
		case "WARN":
			Warn("%s", msg)
		case "ERROR":
			Error("%s", msg)
		default:
			Info("%s", msg)
		}
	}
	return len(p), nil
}

// RestyLogger adapts the package logger to resty's Logger interface. Resty
// chatter is demoted one level so retries against a busy backend do not flood
// operator logs.
type RestyLogger struct{}

// Errorf logs resty errors as warnings; the caller decides whether the
// failure is fatal.
func (RestyLogger) Errorf(format string, v ...any) {
	Warn("(resty) "+strings.TrimSpace(format), v...)
}

// Warnf logs resty warnings at DEBUG.
func (RestyLogger) Warnf(format string, v ...any) {
	Debug("(resty) "+strings.TrimSpace(format), v...)
}

// Debugf logs resty debug output at DEBUG.
func (RestyLogger) Debugf(format string, v ...any) {
	Debug("(resty) "+strings.TrimSpace(format), v...)
}

// RedirectStandardLog redirects Go's standard library logger output to the provided writer.
// Passing nil discards standard log output.
func RedirectStandardLog(w io.Writer) {
	if w == nil {
		stdlog.SetOutput(io.Discard)
		return
	}
	stdlog.SetOutput(w)
}
