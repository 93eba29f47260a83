package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"mediasort/internal/config"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"MEDIASORT_LLM_API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL", "METADATA_MCP", "JAV_ACTOR_FILE"} {
		t.Setenv(key, "")
	}
	homedir.Reset()
	t.Cleanup(homedir.Reset)
	return home
}

func TestLoadDefaultConfigExpandsPathsAndReadsEnv(t *testing.T) {
	home := isolateHome(t)
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("METADATA_MCP", "http://localhost:8765/mcp")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if cfg.Paths.DownloadDir != filepath.Join(home, "downloads") {
		t.Fatalf("unexpected download dir: %q", cfg.Paths.DownloadDir)
	}
	if cfg.Paths.LibraryDir != filepath.Join(home, "library") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantState := filepath.Join(home, ".local", "share", "mediasort")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if cfg.Performers.AliasFile != filepath.Join(wantState, "performers.json") {
		t.Fatalf("unexpected alias file: %q", cfg.Performers.AliasFile)
	}
	if cfg.History.Path != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.History.Path)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("expected api key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Metadata.MCPURL != "http://localhost:8765/mcp" {
		t.Fatalf("expected mcp url from env, got %q", cfg.Metadata.MCPURL)
	}
	if cfg.LockTimeout().Seconds() != 10 {
		t.Fatalf("expected 10s lock timeout, got %s", cfg.LockTimeout())
	}
	if cfg.Categorizer.PerFileConcurrency != 1 {
		t.Fatalf("expected sequential per-file checks by default, got %d", cfg.Categorizer.PerFileConcurrency)
	}
	if err := cfg.RequireLLM(); err != nil {
		t.Fatalf("RequireLLM returned error: %v", err)
	}
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "mediasort.toml")
	body := `
[paths]
download_dir = "` + filepath.ToSlash(filepath.Join(dir, "dl")) + `"
library_dir = "` + filepath.ToSlash(filepath.Join(dir, "lib")) + `"

[performers]
alias_file = "` + filepath.ToSlash(filepath.Join(dir, "actors.json")) + `"
lock_timeout_seconds = 3

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Performers.AliasFile != filepath.Join(dir, "actors.json") {
		t.Fatalf("unexpected alias file %q", cfg.Performers.AliasFile)
	}
	if cfg.Performers.LockTimeoutSeconds != 3 {
		t.Fatalf("unexpected lock timeout %d", cfg.Performers.LockTimeoutSeconds)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging settings, got %+v", cfg.Logging)
	}
	if cfg.Performers.SearchBaseURL != "https://javdb.com" {
		t.Fatalf("expected default search base url, got %q", cfg.Performers.SearchBaseURL)
	}
}

func TestAliasFileFromEnv(t *testing.T) {
	isolateHome(t)
	aliasPath := filepath.Join(t.TempDir(), "jav_actors.json")
	t.Setenv("JAV_ACTOR_FILE", aliasPath)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Performers.AliasFile != aliasPath {
		t.Fatalf("expected alias file from env, got %q", cfg.Performers.AliasFile)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	isolateHome(t)
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"same roots", func(c *config.Config) { c.Paths.LibraryDir = c.Paths.DownloadDir }, "must differ"},
		{"lock timeout", func(c *config.Config) { c.Performers.LockTimeoutSeconds = -1 }, "lock_timeout_seconds"},
		{"concurrency", func(c *config.Config) { c.Categorizer.PerFileConcurrency = -2 }, "per_file_concurrency"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"mcp url", func(c *config.Config) { c.Metadata.MCPURL = "ftp://example.com" }, "metadata.mcp_url"},
		{"search url", func(c *config.Config) { c.Performers.SearchBaseURL = "javdb" }, "search_base_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, _, err := config.Load("")
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireLLMWithoutKey(t *testing.T) {
	isolateHome(t)
	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if err := cfg.RequireLLM(); err == nil || !strings.Contains(err.Error(), "llm.api_key") {
		t.Fatalf("expected missing key error, got %v", err)
	}
}

func TestSampleConfigParsesAndLoads(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	if decoded.Performers.LockTimeoutSeconds != 10 {
		t.Fatalf("unexpected sample lock timeout %d", decoded.Performers.LockTimeoutSeconds)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load(sample) returned error: %v", err)
	}
}
