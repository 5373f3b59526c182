package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLoggerWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tuitable.log")
	logger, err := NewLogger("info", "json", path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Debug("hidden")
	logger.Info("catalog load finished", zap.Int("records", 3))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["msg"] != "catalog load finished" || entry["records"] != float64(3) {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewLoggerRejectsBadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	if _, err := NewLogger("loud", "json", path); err == nil {
		t.Fatalf("expected error for bad level")
	}
	if _, err := NewLogger("info", "xml", path); err == nil {
		t.Fatalf("expected error for bad format")
	}
}

func TestNewLoggerEmptyPathIsNop(t *testing.T) {
	logger, err := NewLogger("debug", "console", "")
	if err != nil || logger == nil {
		t.Fatalf("expected nop logger, got %v %v", logger, err)
	}
}
