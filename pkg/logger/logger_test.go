package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}

	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn"}, &buf)

	log.Info("dropped")
	log.Warn("pet died", zap.String("user_id", "u1"))
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line above warn level, got %d: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["msg"] != "pet died" || entry["user_id"] != "u1" || entry["level"] != "warn" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestNew_TeesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nico.log")
	var buf bytes.Buffer

	log := New(Options{Level: "info", File: path}, &buf)
	log.Info("checkin submitted")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected log file: %v", err)
	}
	if !strings.Contains(string(data), "checkin submitted") || !strings.Contains(buf.String(), "checkin submitted") {
		t.Error("Expected entry in both stdout and file sinks")
	}
}
