package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeHistory()
	if err := c.normalizeAutosave(); err != nil {
		return err
	}
	c.Format.TimePrecision = strings.ToLower(strings.TrimSpace(c.Format.TimePrecision))
	if c.Format.TimePrecision == "" {
		c.Format.TimePrecision = defaultTimePrecision
	}
	if err := c.normalizeCatalog(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

func (c *Config) normalizeHistory() {
	if c.History.UndoLevels < minUndoLevels {
		c.History.UndoLevels = minUndoLevels
	}
}

func (c *Config) normalizeAutosave() error {
	if strings.TrimSpace(c.Autosave.Dir) == "" {
		c.Autosave.Dir = defaultDataDir(autosaveDirSubdirectory)
	}
	var err error
	if c.Autosave.Dir, err = expandPath(c.Autosave.Dir); err != nil {
		return fmt.Errorf("autosave.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() error {
	if strings.TrimSpace(c.Catalog.Dir) == "" {
		c.Catalog.Dir = defaultDataDir(catalogDirSubdirectory)
	}
	var err error
	if c.Catalog.Dir, err = expandPath(c.Catalog.Dir); err != nil {
		return fmt.Errorf("catalog.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv(logLevelEnv); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(c.Logging.File) != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	return nil
}
