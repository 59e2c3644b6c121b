package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/config"
	"subforge/internal/logging"
)

func TestNewFromConfigWritesRotatingFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "subforge.log")
	cfg.Logging.Level = "debug"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "history").Debug("committed", logging.CommitID(4))

	content, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("expected one JSON record, got %q: %v", content, err)
	}
	if record["msg"] != "committed" || record["level"] != "debug" || record["component"] != "history" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["commit_id"] != float64(4) {
		t.Fatalf("unexpected commit id %v", record["commit_id"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestNewFromNilConfig(t *testing.T) {
	logger, err := logging.NewFromConfig(nil)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if logger == nil {
		t.Fatal("expected logger instance")
	}
}

func newFileLogger(t *testing.T, format, level string) (*slog.Logger, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "out.log")
	logger, err := logging.New(logging.Options{
		Format:      format,
		Level:       level,
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return logger, logPath
}

func readLog(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	return string(content)
}

func TestConsoleLoggerFormat(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logging.NewComponentLogger(logger, "parser").Info("parsed script",
		logging.Int("lines", 42),
		logging.String("title", "Two words"),
	)

	content := readLog(t, path)
	if !strings.Contains(content, " INFO parser: parsed script lines=42 title=\"Two words\"\n") {
		t.Fatalf("unexpected console line %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logger, path := newFileLogger(t, "console", "debug")
	logger.Info("message with caller")

	if content := readLog(t, path); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerFiltersLevel(t *testing.T) {
	logger, path := newFileLogger(t, "console", "warn")
	logger.Info("hidden")
	logger.Warn("shown")

	content := readLog(t, path)
	if strings.Contains(content, "hidden") || !strings.Contains(content, "WARN shown") {
		t.Fatalf("unexpected filtering %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logger, path := newFileLogger(t, "console", "info")
	logging.WarnWithContext(logger, "unknown script type", "script_type_unknown",
		logging.String(logging.FieldImpact, "styles may be misread"),
	)

	content := readLog(t, path)
	for _, want := range []string{
		"WARN unknown script type event_type=script_type_unknown\n",
		"    - Impact: styles may be misread\n",
		"    - Hint: ",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestErrorWithContextJSON(t *testing.T) {
	logger, path := newFileLogger(t, "json", "info")
	logging.ErrorWithContext(logger, "save failed", "save_failed", logging.Error(errors.New("disk full")))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record["level"] != "error" || record["error"] != "disk full" || record["event_type"] != "save_failed" {
		t.Fatalf("unexpected record %v", record)
	}
	if record[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error hint")
	}
}

func TestNewInvalidFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logger, path := newFileLogger(t, "console", "invalid")
	logger.Debug("dropped")
	logger.Info("kept")
	content := readLog(t, path)
	if strings.Contains(content, "dropped") || !strings.Contains(content, "kept") {
		t.Fatalf("expected info level, got %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := logging.WithScript(context.Background(), "/tmp/ep01.ass")
	ctx = logging.WithSession(ctx, "abc")

	logger, path := newFileLogger(t, "json", "info")
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(readLog(t, path))), &record); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record[logging.FieldScript] != "/tmp/ep01.ass" || record[logging.FieldSessionID] != "abc" {
		t.Fatalf("unexpected record %v", record)
	}
	base := logging.NewNop()
	if logging.WithContext(context.Background(), base) != base {
		t.Fatal("expected empty context to return the logger unchanged")
	}
	if logging.WithContext(logging.WithScript(context.Background(), ""), base) != base {
		t.Fatal("expected blank script to add no fields")
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "x")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected nop logger to be disabled")
	}
}
