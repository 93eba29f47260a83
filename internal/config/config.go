package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the download and library roots plus local state locations.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	LibraryDir  string `toml:"library_dir"`
	LogDir      string `toml:"log_dir"`
	StateDir    string `toml:"state_dir"`
}

// LLM contains connection settings for the classification oracle.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Metadata configures the MCP server used to resolve provider identifiers.
type Metadata struct {
	MCPURL         string `toml:"mcp_url"`
	MediaTool      string `toml:"media_tool"`
	AdultTool      string `toml:"adult_tool"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Performers configures the performer alias store and alias search.
type Performers struct {
	AliasFile            string `toml:"alias_file"`
	LockTimeoutSeconds   int    `toml:"lock_timeout_seconds"`
	SearchBaseURL        string `toml:"search_base_url"`
	SearchTimeoutSeconds int    `toml:"search_timeout_seconds"`
	SearchRetries        int    `toml:"search_retries"`
	VerifyAliases        bool   `toml:"verify_aliases"`
}

// Categorizer tunes the dispatcher.
type Categorizer struct {
	PerFileConcurrency int `toml:"per_file_concurrency"`
}

// History configures the run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for mediasort.
//
// Configuration sections by subsystem:
//   - Paths: download and library roots, log and state directories
//   - LLM: classification, decision, and alias verification oracle
//   - Metadata: MCP lookup of media and adult catalog identifiers
//   - Performers: alias store file, lock bound, alias search endpoint
//   - Categorizer: per-file check fan-out
//   - History: SQLite run journal
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	LLM         LLM         `toml:"llm"`
	Metadata    Metadata    `toml:"metadata"`
	Performers  Performers  `toml:"performers"`
	Categorizer Categorizer `toml:"categorizer"`
	History     History     `toml:"history"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("mediasort.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and state directories. The library root
// is created on a best-effort basis so planning works while storage is offline.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// LockTimeout returns the alias store lock bound.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Performers.LockTimeoutSeconds) * time.Second
}

// RequireLLM reports a configuration error when no oracle credentials are set.
func (c *Config) RequireLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("llm.api_key is required. Set MEDIASORT_LLM_API_KEY or OPENAI_API_KEY, or edit %s (create with 'mediasort config init')", defaultPath)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	expanded, err := homedir.Expand(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	cleaned := filepath.Clean(expanded)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
