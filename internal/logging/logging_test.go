package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":      slog.LevelDebug,
		"dev":        slog.LevelDebug,
		"INFO":       slog.LevelInfo,
		"warning":    slog.LevelWarn,
		"production": slog.LevelError,
		"":           slog.LevelInfo,
		"nonsense":   slog.LevelInfo,
	}
	for name, want := range tests {
		if got := ParseLevel(name); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")
	logger.Debug("hidden")
	logger.Info("peer admitted", "room", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("output is not json: %v", err)
	}
	if rec["msg"] != "peer admitted" || rec["room"] != "abc" {
		t.Errorf("record = %v", rec)
	}
}

func TestInitHonoursEnv(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })
	t.Setenv("LOG_LEVEL", "error")

	logger := Init("debug", "text")
	if logger.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("LOG_LEVEL=error should disable warn")
	}
}
