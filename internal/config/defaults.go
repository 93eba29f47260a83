package config

const (
	defaultConfigPath           = "~/.config/mediasort/config.toml"
	defaultDownloadDir          = "~/downloads"
	defaultLibraryDir           = "~/library"
	defaultLogDir               = "~/.local/share/mediasort/logs"
	defaultStateDir             = "~/.local/share/mediasort"
	defaultHistoryFile          = "history.db"
	defaultAliasFile            = "performers.json"
	defaultLLMBaseURL           = "https://api.openai.com/v1"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMTimeoutSeconds    = 60
	defaultLLMRetryAttempts     = 4
	defaultMediaTool            = "lookup_media"
	defaultAdultTool            = "lookup_porn"
	defaultMetadataTimeout      = 30
	defaultLockTimeoutSeconds   = 10
	defaultSearchBaseURL        = "https://javdb.com"
	defaultSearchTimeoutSeconds = 15
	defaultSearchRetries        = 2
	defaultPerFileConcurrency   = 1
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir: defaultDownloadDir,
			LibraryDir:  defaultLibraryDir,
			LogDir:      defaultLogDir,
			StateDir:    defaultStateDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Metadata: Metadata{
			MediaTool:      defaultMediaTool,
			AdultTool:      defaultAdultTool,
			TimeoutSeconds: defaultMetadataTimeout,
		},
		Performers: Performers{
			LockTimeoutSeconds:   defaultLockTimeoutSeconds,
			SearchBaseURL:        defaultSearchBaseURL,
			SearchTimeoutSeconds: defaultSearchTimeoutSeconds,
			SearchRetries:        defaultSearchRetries,
			VerifyAliases:        true,
		},
		Categorizer: Categorizer{
			PerFileConcurrency: defaultPerFileConcurrency,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
