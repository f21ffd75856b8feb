package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLoggerDefaultsToStderr(t *testing.T) {
	logger := NewLogger(nil)
	if logger == nil {
		t.Fatal("NewLogger(nil) returned nil")
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Fatalf("expected debug/info to be gated out, got: %s", buf.String())
	}

	logger.Warn("warn message")
	if !strings.Contains(buf.String(), "warn message") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestArgsAreFormattedAsKeyValuePairs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Error("send failed", "addr", "pid(3.1)", "code", 2)
	output := buf.String()
	if !strings.Contains(output, "addr=pid(3.1)") {
		t.Errorf("expected addr=pid(3.1) in output, got: %s", output)
	}
	if !strings.Contains(output, "code=2") {
		t.Errorf("expected code=2 in output, got: %s", output)
	}
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	t.Cleanup(func() { SetDefault(NewLogger(nil)) })

	Debug("debug message", "key", "value")
	if !strings.Contains(buf.String(), "debug message") {
		t.Errorf("expected debug message, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected key=value, got: %s", buf.String())
	}

	buf.Reset()
	Warn("warning message")
	if !strings.Contains(buf.String(), "warning message") {
		t.Errorf("expected warning message, got: %s", buf.String())
	}

	buf.Reset()
	Error("error message")
	if !strings.Contains(buf.String(), "error message") {
		t.Errorf("expected error message, got: %s", buf.String())
	}
}
