package config

import (
	"errors"
	"fmt"

	"subforge/internal/asstime"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAutosave(); err != nil {
		return err
	}
	if _, err := asstime.ParsePrecision(c.Format.TimePrecision); err != nil {
		return fmt.Errorf("format.time_precision: %w", err)
	}
	return c.validateLogging()
}

func (c *Config) validateAutosave() error {
	if c.Autosave.Retain < 0 {
		return errors.New("autosave.retain must be 0 or greater")
	}
	if c.Autosave.Enabled && c.Autosave.Dir == "" {
		return errors.New("autosave.dir must be set when autosave.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// TimePrecision returns the configured output precision.
func (c *Config) TimePrecision() asstime.Precision {
	p, _ := asstime.ParsePrecision(c.Format.TimePrecision)
	return p
}
