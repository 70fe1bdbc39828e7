package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFormatLine(t *testing.T) {
	ts := time.Date(2025, time.August, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    string
	}{
		{
			name:    "plain message",
			level:   LevelInfo,
			message: "Sync complete",
			want:    "[2025-08-15 10:30:00] INFO: Sync complete",
		},
		{
			name:    "fields are sorted by key",
			level:   LevelInfo,
			message: "Fetched match window",
			fields:  Fields{"rows": 14, "window": 1},
			want:    "[2025-08-15 10:30:00] INFO: Fetched match window (rows=14, window=1)",
		},
		{
			name:    "error is appended",
			level:   LevelError,
			message: "Insert failed",
			err:     errors.New("boom"),
			want:    "[2025-08-15 10:30:00] ERROR: Insert failed: boom",
		},
		{
			name:    "fields and error together",
			level:   LevelWarn,
			message: "Window fetch failed",
			fields:  Fields{"window": 2},
			err:     errors.New("status 500"),
			want:    "[2025-08-15 10:30:00] WARNING: Window fetch failed (window=2): status 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatLine(ts, tt.level, tt.message, tt.fields, tt.err)
			if got != tt.want {
				t.Errorf("FormatLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogger_levelFiltering(t *testing.T) {
	tests := []struct {
		name     string
		minLevel Level
		logLevel Level
		want     bool
	}{
		{"debug passes at debug", LevelDebug, LevelDebug, true},
		{"debug filtered at info", LevelInfo, LevelDebug, false},
		{"info passes at info", LevelInfo, LevelInfo, true},
		{"warn passes at info", LevelInfo, LevelWarn, true},
		{"info filtered at error", LevelError, LevelInfo, false},
		{"error always passes", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.minLevel, &buf)
			l.log(tt.logLevel, "message", nil, nil)

			if got := buf.Len() > 0; got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}

func TestLogger_AttachFileMirrorsConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	var console bytes.Buffer

	l := New(LevelInfo, &console)
	if err := l.AttachFile(path); err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	defer l.Close() // nolint:errcheck

	l.Info("Sync complete", Fields{"created": 12})

	fileContent, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if console.String() != string(fileContent) {
		t.Errorf("file content %q differs from console %q", fileContent, console.String())
	}
	if !strings.Contains(string(fileContent), "Sync complete (created=12)") {
		t.Errorf("log file missing expected line: %q", fileContent)
	}
}

func TestLogger_AttachFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sync.log")
	var console bytes.Buffer

	first := New(LevelInfo, &console)
	if err := first.AttachFile(path); err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	first.Info("run one", nil)
	first.Close() // nolint:errcheck

	second := New(LevelInfo, &console)
	if err := second.AttachFile(path); err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	second.Info("run two", nil)
	second.Close() // nolint:errcheck

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(content), "run one") || !strings.Contains(string(content), "run two") {
		t.Errorf("log file should accumulate across runs, got %q", content)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("scrape.fetch_failures")
	m.IncrCounter("scrape.fetch_failures")
	m.RecordTiming("sync.duration", 100*time.Millisecond)
	m.RecordTiming("sync.duration", 50*time.Millisecond)

	snapshot := m.GetSnapshot()

	counters, ok := snapshot["counters"].(map[string]int64)
	if !ok {
		t.Fatalf("counters has unexpected type: %T", snapshot["counters"])
	}
	if counters["scrape.fetch_failures"] != 2 {
		t.Errorf("counter = %d, want 2", counters["scrape.fetch_failures"])
	}

	timings, ok := snapshot["timings"].(map[string]string)
	if !ok {
		t.Fatalf("timings has unexpected type: %T", snapshot["timings"])
	}
	if timings["sync.duration"] != "150ms" {
		t.Errorf("timing total = %q, want 150ms", timings["sync.duration"])
	}
}

func TestMetrics_snapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.IncrCounter("events.created")

	snapshot := m.GetSnapshot()
	snapshot["counters"].(map[string]int64)["events.created"] = 99

	fresh := m.GetSnapshot()
	if got := fresh["counters"].(map[string]int64)["events.created"]; got != 1 {
		t.Errorf("counter = %d, mutating a snapshot must not affect the tracker", got)
	}
}
