package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validatePerformers(); err != nil {
		return err
	}
	if c.Categorizer.PerFileConcurrency < 1 {
		return errors.New("categorizer.per_file_concurrency must be at least 1")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		return errors.New("paths.download_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.DownloadDir == c.Paths.LibraryDir {
		return errors.New("paths.download_dir and paths.library_dir must differ")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if err := validateHTTPURL("llm.base_url", c.LLM.BaseURL); err != nil {
		return err
	}
	if c.LLM.TimeoutSeconds < 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryAttempts < 0 {
		return errors.New("llm.retry_attempts must be positive")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.Metadata.MCPURL == "" {
		return nil
	}
	if err := validateHTTPURL("metadata.mcp_url", c.Metadata.MCPURL); err != nil {
		return err
	}
	if c.Metadata.TimeoutSeconds < 0 {
		return errors.New("metadata.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePerformers() error {
	if c.Performers.LockTimeoutSeconds <= 0 {
		return errors.New("performers.lock_timeout_seconds must be positive")
	}
	if err := validateHTTPURL("performers.search_base_url", c.Performers.SearchBaseURL); err != nil {
		return err
	}
	if c.Performers.SearchRetries < 0 {
		return errors.New("performers.search_retries must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (want console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func validateHTTPURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: scheme must be http or https, got %q", field, value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: host is required", field)
	}
	return nil
}
