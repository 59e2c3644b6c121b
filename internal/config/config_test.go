package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"subforge/internal/asstime"
	"subforge/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "subforge", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantAutosave := filepath.Join(tempHome, ".local", "share", "subforge", "autosave")
	if cfg.Autosave.Dir != wantAutosave {
		t.Fatalf("unexpected autosave dir: got %q want %q", cfg.Autosave.Dir, wantAutosave)
	}
	if cfg.BackupCatalogPath() != filepath.Join(wantAutosave, "backups.db") {
		t.Fatalf("unexpected backup catalog path %q", cfg.BackupCatalogPath())
	}
	if cfg.History.UndoLevels != config.Default().History.UndoLevels {
		t.Fatalf("unexpected undo levels: %d", cfg.History.UndoLevels)
	}
	if cfg.TimePrecision() != asstime.Centiseconds {
		t.Fatalf("unexpected precision %v", cfg.TimePrecision())
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Autosave.Dir, cfg.Catalog.Dir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "subforge.toml")

	type payload struct {
		History struct {
			UndoLevels        int  `toml:"undo_levels"`
			SaveOnEveryChange bool `toml:"save_on_every_change"`
		} `toml:"history"`
		Autosave struct {
			Dir    string `toml:"dir"`
			Retain int    `toml:"retain"`
		} `toml:"autosave"`
		Format struct {
			TimePrecision string `toml:"time_precision"`
		} `toml:"format"`
	}
	custom := payload{}
	custom.History.UndoLevels = 1
	custom.History.SaveOnEveryChange = true
	custom.Autosave.Dir = filepath.Join(tempDir, "backups")
	custom.Autosave.Retain = 3
	custom.Format.TimePrecision = "Milliseconds"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.History.UndoLevels != 2 {
		t.Fatalf("expected undo levels raised to 2, got %d", cfg.History.UndoLevels)
	}
	if !cfg.History.SaveOnEveryChange {
		t.Fatal("expected save_on_every_change from file")
	}
	if cfg.Autosave.Dir != custom.Autosave.Dir || cfg.Autosave.Retain != 3 {
		t.Fatalf("unexpected autosave section %+v", cfg.Autosave)
	}
	if cfg.TimePrecision() != asstime.Milliseconds {
		t.Fatalf("expected millisecond precision, got %v", cfg.TimePrecision())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subforge.toml")
	if err := os.WriteFile(configPath, []byte("[history]\nundo_depth = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvVarOverridesLogLevel(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "subforge.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SUBFORGE_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level from env, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if string(contents) != config.SampleConfig() {
		t.Fatal("expected sample file to match embedded sample")
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	want := config.Default()
	if cfg.History != want.History || cfg.Format != want.Format || cfg.Autosave.Retain != want.Autosave.Retain {
		t.Fatalf("sample drifted from defaults: %+v", cfg)
	}
	if !strings.Contains(cfg.Autosave.Dir, "subforge") {
		t.Fatalf("expected autosave dir to contain subforge, got %q", cfg.Autosave.Dir)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.History.UndoLevels = 7
	text, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.History.UndoLevels != 7 {
		t.Fatalf("unexpected decoded config %+v", decoded)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "negative retain", mutate: func(c *config.Config) { c.Autosave.Retain = -1 }},
		{name: "autosave without dir", mutate: func(c *config.Config) { c.Autosave.Dir = "" }},
		{name: "bad precision", mutate: func(c *config.Config) { c.Format.TimePrecision = "frames" }},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }},
		{name: "bad log level", mutate: func(c *config.Config) { c.Logging.Level = "loud" }},
	}
	for _, tc := range tests {
		cfg := config.Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
