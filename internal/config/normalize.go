package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeMetadata()
	if err := c.normalizePerformers(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	if c.Categorizer.PerFileConcurrency == 0 {
		c.Categorizer.PerFileConcurrency = defaultPerFileConcurrency
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = firstEnv("MEDIASORT_LLM_API_KEY", "OPENAI_API_KEY")
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		if value := firstEnv("OPENAI_BASE_URL"); value != "" {
			c.LLM.BaseURL = value
		} else {
			c.LLM.BaseURL = defaultLLMBaseURL
		}
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts == 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.MCPURL = strings.TrimSpace(c.Metadata.MCPURL)
	if c.Metadata.MCPURL == "" {
		c.Metadata.MCPURL = firstEnv("METADATA_MCP")
	}
	c.Metadata.MediaTool = strings.TrimSpace(c.Metadata.MediaTool)
	if c.Metadata.MediaTool == "" {
		c.Metadata.MediaTool = defaultMediaTool
	}
	c.Metadata.AdultTool = strings.TrimSpace(c.Metadata.AdultTool)
	if c.Metadata.AdultTool == "" {
		c.Metadata.AdultTool = defaultAdultTool
	}
	if c.Metadata.TimeoutSeconds == 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeout
	}
}

func (c *Config) normalizePerformers() error {
	alias := strings.TrimSpace(c.Performers.AliasFile)
	if alias == "" {
		alias = firstEnv("JAV_ACTOR_FILE")
	}
	if alias == "" {
		alias = filepath.Join(c.Paths.StateDir, defaultAliasFile)
	}
	var err error
	if c.Performers.AliasFile, err = expandPath(alias); err != nil {
		return fmt.Errorf("performers.alias_file: %w", err)
	}
	if c.Performers.LockTimeoutSeconds == 0 {
		c.Performers.LockTimeoutSeconds = defaultLockTimeoutSeconds
	}
	c.Performers.SearchBaseURL = strings.TrimRight(strings.TrimSpace(c.Performers.SearchBaseURL), "/")
	if c.Performers.SearchBaseURL == "" {
		c.Performers.SearchBaseURL = defaultSearchBaseURL
	}
	if c.Performers.SearchTimeoutSeconds == 0 {
		c.Performers.SearchTimeoutSeconds = defaultSearchTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	path := strings.TrimSpace(c.History.Path)
	if path == "" {
		path = filepath.Join(c.Paths.StateDir, defaultHistoryFile)
	}
	var err error
	if c.History.Path, err = expandPath(path); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value, ok := os.LookupEnv(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
