package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Options{Level: "warn", Format: "JSON", Writer: &buf})

	logger.Info("dropped")
	logger.Warn("kept", slog.String("code", "config"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "kept" || entry["code"] != "config" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewLoggerText(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(Options{Writer: &buf}).Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at info level")
	}
	if ParseLevel("DEBUG") != slog.LevelDebug || ParseLevel("other") != slog.LevelInfo {
		t.Fatalf("unexpected level parsing")
	}
}
