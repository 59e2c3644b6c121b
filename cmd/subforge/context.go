package main

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subforge/internal/config"
	"subforge/internal/entry"
	"subforge/internal/logging"
	"subforge/internal/persist"
	"subforge/internal/stylecatalog"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// loggerValue builds the process logger on first use. Console output goes
// to stderr so command output on stdout stays clean.
func (c *commandContext) loggerValue() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg := c.configValue()
		if cfg == nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) files() *persist.Files {
	cfg := c.configValue()
	opts := persist.Options{Logger: c.loggerValue()}
	if cfg != nil {
		opts.Precision = cfg.TimePrecision()
	}
	return persist.New(opts)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps failures onto process exit codes: 2 for scripts or
// catalogues that are malformed or missing, 1 for everything else.
func exitCode(err error) int {
	var classifier interface{ ErrorKind() string }
	if errors.As(err, &classifier) && classifier.ErrorKind() == "validation" {
		return 2
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, stylecatalog.ErrNotFound) || errors.Is(err, entry.ErrMalformedLine) {
		return 2
	}
	return 1
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
