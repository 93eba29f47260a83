package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"mediasort/internal/config"
	"mediasort/internal/logging"
	"mediasort/internal/pipeline"
	"mediasort/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
		c.configPath = resolved
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		logger, err := logging.NewFromConfig(c.config)
		if err != nil {
			logger, _ = logging.New(logging.Options{Level: "info", Format: "console"})
		}
		c.logger = logger
	})
	return c.logger
}

// withRuntime builds the full pipeline for one command. It needs oracle
// credentials.
func (c *commandContext) withRuntime(fn func(*pipeline.Runtime) error) (err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	rt, err := pipeline.Build(cfg, c.log())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rt.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", closeErr)
		}
	}()
	return fn(rt)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
