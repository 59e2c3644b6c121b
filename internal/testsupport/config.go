package testsupport

import (
	"path/filepath"
	"testing"

	"subforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Autosave.Dir = filepath.Join(base, "autosave")
	cfgVal.Catalog.Dir = filepath.Join(base, "catalog")
	cfgVal.Logging.File = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithUndoLevels overrides the history depth.
func WithUndoLevels(levels int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.UndoLevels = levels
	}
}

// WithRetain overrides how many autosaves are kept per script.
func WithRetain(retain int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Autosave.Retain = retain
	}
}

// WithTimePrecision overrides the output time precision.
func WithTimePrecision(precision string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Format.TimePrecision = precision
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Autosave.Dir)
}
