// Package logger provides leveled, line-oriented logging and run metrics for
// the sync pipeline.
//
// Every entry is rendered as "[timestamp] LEVEL: message" and written to the
// console stream; when a log file is attached the same line is appended
// there, so scheduled runs leave a greppable trail. Structured fields are
// rendered as a sorted key=value suffix.
//
// Example usage:
//
//	logger.Info("Scrape finished", logger.Fields{"fixtures": 12})
//	logger.Error("Insert failed", logger.Fields{"title": title}, err)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARNING"
	LevelError Level = "ERROR"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger writes leveled log lines to a console stream and, optionally, an
// append-only log file.
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	console  io.Writer
	file     *os.File
}

var defaultLogger = New(LevelInfo, os.Stderr)

// New creates a logger writing to the given console stream. Messages below
// the minimum level are discarded.
func New(level Level, console io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		console:  console,
	}
}

// SetDefault sets the package-level logger used by the convenience
// functions (Debug, Info, Warn, Error).
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// AttachFile opens path for appending and mirrors every subsequent line to
// it. The logger keeps writing to the console whether or not this succeeds.
func (l *Logger) AttachFile(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	l.mu.Lock()
	l.file = f
	l.mu.Unlock()
	return nil
}

// Close closes the attached log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	line := FormatLine(time.Now(), level, message, fields, err)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, line)
	if l.file != nil {
		fmt.Fprintln(l.file, line)
	}
}

// FormatLine renders a single log line. Split out so tests can pin the
// format down without capturing wall-clock time.
func FormatLine(ts time.Time, level Level, message string, fields Fields, err error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s: %s", ts.Format("2006-01-02 15:04:05"), level, message))

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
		}
		sb.WriteString(" (" + strings.Join(parts, ", ") + ")")
	}

	if err != nil {
		sb.WriteString(": " + err.Error())
	}

	return sb.String()
}

func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using the default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

// Metrics tracks operational counters and timings for a sync run.
// All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// IncrCounter increments a counter by 1, initializing it on first use.
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// RecordTiming records a duration measurement.
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], duration)
}

// GetSnapshot returns a copy of all counters and per-timing totals.
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}

	timings := make(map[string]string, len(m.timings))
	for name, durations := range m.timings {
		var total time.Duration
		for _, d := range durations {
			total += d
		}
		timings[name] = total.String()
	}

	return map[string]interface{}{
		"counters": counters,
		"timings":  timings,
	}
}

// IncrCounter increments a counter on the default metrics tracker.
func IncrCounter(name string) {
	defaultMetrics.IncrCounter(name)
}

// RecordTiming records a timing on the default metrics tracker.
func RecordTiming(name string, duration time.Duration) {
	defaultMetrics.RecordTiming(name, duration)
}

// GetMetricsSnapshot returns a snapshot of the default metrics tracker.
func GetMetricsSnapshot() map[string]interface{} {
	return defaultMetrics.GetSnapshot()
}
