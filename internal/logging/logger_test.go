package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_JSONFormat(t *testing.T) {
	logger, closer := NewLogger("info", "json", "")
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	logger, closer := NewLogger("debug", "text", "")
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_DefaultFormat(t *testing.T) {
	// Unknown format falls back to the default (JSON).
	logger, closer := NewLogger("info", "unknown", "")
	defer closer.Close()
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewLogger_AllLevels(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "unknown"}
	for _, level := range levels {
		logger, closer := NewLogger(level, "json", "")
		defer closer.Close()
		if logger == nil {
			t.Errorf("expected non-nil logger for level %q", level)
		}
	}
}

func TestNewLogger_WithFileOutput(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "test.log")

	logger, closer := NewLogger("info", "json", logFile)
	if logger == nil {
		t.Fatal("expected non-nil logger")
	}

	logger.Info("test message", "key", "value")
	closer.Close()

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	content := string(data)
	if !strings.Contains(content, "test message") {
		t.Errorf("expected log file to contain 'test message', got: %s", content)
	}
	if !strings.Contains(content, "key") {
		t.Errorf("expected log file to contain 'key', got: %s", content)
	}
}

func TestNewLogger_WithFileOutput_InvalidPath(t *testing.T) {
	// Invalid path: should warn on stderr and still return a working logger.
	logger, closer := NewLogger("info", "json", "/nonexistent/dir/test.log")
	defer closer.Close()

	if logger == nil {
		t.Fatal("expected non-nil logger even with invalid file path")
	}

	logger.Info("still works")
}

func TestDebugSampler_LogsEveryNthCall(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sampler := NewDebugSampler(logger, 3)

	for i := 0; i < 9; i++ {
		sampler.Debug("chunk grown", "i", i)
	}

	got := strings.Count(buf.String(), "chunk grown")
	if got != 3 {
		t.Errorf("expected 3 sampled records out of 9 calls (every=3), got %d", got)
	}
}

func TestDebugSampler_EveryLessThanOneLogsAllCalls(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sampler := NewDebugSampler(logger, 0)

	for i := 0; i < 4; i++ {
		sampler.Debug("drain constructed")
	}
	if got := strings.Count(buf.String(), "drain constructed"); got != 4 {
		t.Errorf("expected every call logged when every<1, got %d", got)
	}
}

func TestDebugSampler_NilSamplerAndNilLoggerAreNoOps(t *testing.T) {
	var nilSampler *DebugSampler
	nilSampler.Debug("should not panic")

	sampler := NewDebugSampler(nil, 1)
	sampler.Debug("should not panic either")
}

func TestNewLogger_AddsSourceAtDebugLevel(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "debug.log")

	logger, closer := NewLogger("debug", "json", logFile)
	defer closer.Close()

	logger.Debug("with source")
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "source") {
		t.Errorf("expected debug-level records to carry source info, got: %s", data)
	}
}
