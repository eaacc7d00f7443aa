package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(Config{Level: "info", Format: "json"}, &buf)
	log.Info("sync starting", "years", 2)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "sync starting" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["years"] != float64(2) {
		t.Errorf("years = %v", entry["years"])
	}
}

func TestNewWriterTextDefault(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(Config{}, &buf)
	log.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("unexpected text output: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(Config{Level: "warn"}, &buf)

	log.Info("dropped")
	log.Debug("dropped too")
	if buf.Len() != 0 {
		t.Fatalf("below-level records emitted: %s", buf.String())
	}

	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn record missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
