package pipeline

import (
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"mediasort/internal/categorizer"
	"mediasort/internal/config"
	"mediasort/internal/executor"
	"mediasort/internal/hints"
	"mediasort/internal/history"
	"mediasort/internal/jellyfin"
	"mediasort/internal/metadata"
	"mediasort/internal/oracle"
	"mediasort/internal/performer"
	"mediasort/internal/planner"
	"mediasort/internal/services"
	"mediasort/internal/services/llm"
	"mediasort/internal/sublang"
)

// Runtime holds the collaborators built from configuration.
type Runtime struct {
	Pipeline   *Pipeline
	Aliases    *performer.Store
	Performers *performer.Resolver
	Executor   *executor.Executor
	// History is nil when the journal is disabled.
	History *history.Store
}

// Close releases the history database.
func (r *Runtime) Close() error {
	if r == nil || r.History == nil {
		return nil
	}
	return r.History.Close()
}

// NewAliasStore opens the performer alias store named by cfg.
func NewAliasStore(cfg *config.Config, logger *slog.Logger) *performer.Store {
	return performer.NewStore(cfg.Performers.AliasFile, cfg.LockTimeout(), logger)
}

// NewExecutor builds a move executor between the configured download and
// library roots on the real filesystem.
func NewExecutor(cfg *config.Config, logger *slog.Logger) *executor.Executor {
	return executor.New(afero.NewOsFs(), cfg.Paths.DownloadDir, cfg.Paths.LibraryDir, logger)
}

// OpenHistory opens the run journal, or returns nil when it is disabled.
func OpenHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", cfg.History.Path, err)
	}
	return store, nil
}

// Build wires every component from cfg. The oracle credentials are required;
// metadata lookup, alias search, and the journal are optional.
func Build(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.RequireLLM(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "build", "", err)
	}

	var llmOpts []llm.Option
	if cfg.LLM.RetryAttempts > 0 {
		llmOpts = append(llmOpts, llm.WithRetryMaxAttempts(cfg.LLM.RetryAttempts))
	}
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	}, llmOpts...)
	oracleLLM := oracle.NewLLM(client, logger)

	var lookup hints.Lookup
	if cfg.Metadata.MCPURL != "" {
		lookup = metadata.NewClient(metadata.Config{
			URL:       cfg.Metadata.MCPURL,
			MediaTool: cfg.Metadata.MediaTool,
			AdultTool: cfg.Metadata.AdultTool,
			Timeout:   time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
		}, logger)
	}

	aliases := NewAliasStore(cfg, logger)
	var searcher performer.Searcher
	if cfg.Performers.SearchBaseURL != "" {
		searcher = performer.NewJavDB(
			cfg.Performers.SearchBaseURL,
			time.Duration(cfg.Performers.SearchTimeoutSeconds)*time.Second,
			cfg.Performers.SearchRetries,
			logger,
		)
	}
	var verifier oracle.AliasVerifier
	if cfg.Performers.VerifyAliases {
		verifier = oracleLLM
	}
	performers := performer.NewResolver(aliases, searcher, verifier, logger)

	journal, err := OpenHistory(cfg)
	if err != nil {
		return nil, err
	}
	var recorder Recorder
	if journal != nil {
		recorder = journal
	}

	dispatcher := categorizer.NewDispatcher(oracleLLM, oracleLLM,
		categorizer.WithPerFileConcurrency(cfg.Categorizer.PerFileConcurrency),
		categorizer.WithLogger(logger),
	)
	placement := planner.New(
		jellyfin.NewRenderer(logger),
		sublang.NewSampler(afero.NewOsFs(), cfg.Paths.DownloadDir),
		performers,
		logger,
	)
	return &Runtime{
		Pipeline:   New(hints.NewResolver(lookup, logger), dispatcher, placement, recorder, logger),
		Aliases:    aliases,
		Performers: performers,
		Executor:   NewExecutor(cfg, logger),
		History:    journal,
	}, nil
}
