package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/khanglvm/mcp-scout/internal/config"
	"github.com/khanglvm/mcp-scout/internal/exa"
	"github.com/khanglvm/mcp-scout/internal/logger"
	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/scout"
	"github.com/khanglvm/mcp-scout/internal/storage"
	"github.com/khanglvm/mcp-scout/internal/tracking"
)

// newProvider builds the search provider. Tests replace it.
var newProvider = func(cfg *config.Config, log *zap.Logger) (scout.Provider, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}
	return exa.New(exa.Options{
		APIKey:     cfg.Exa.APIKey,
		BaseURL:    cfg.Exa.BaseURL,
		Timeout:    cfg.Timeout(),
		MaxRetries: cfg.Exa.MaxRetries,
		Logger:     log,
	}), nil
}

// app holds everything a discovery command needs.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *storage.SQLiteStorage
	tracker *tracking.Tracker
	service *scout.Service
}

// loadConfig reads the configuration from path, or the default location.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func newLogger(opts *globalOptions, cfg *config.Config) *zap.Logger {
	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	return logger.New(level, cfg.Log.Format)
}

// newApp wires configuration, logging, history and the discovery service.
func newApp(opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	log := newLogger(opts, cfg)

	provider, err := newProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	analyzer, err := recommend.NewAnalyzer(cfg.Scoring, recommend.DefaultLexicon)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring configuration: %w", err)
	}

	a := &app{cfg: cfg, logger: log}

	// A nil *SQLiteStorage must not reach the tracker as a non-nil interface
	var history storage.Storage
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			log.Warn("search history disabled", zap.Error(err))
		} else {
			a.store = storage.NewStorage(path, log)
			history = a.store
		}
	}
	a.tracker = tracking.NewTracker(history, log)

	a.service = scout.NewService(provider, scout.Options{
		Analyzer: analyzer,
		Recorder: a.tracker,
		Logger:   log,
		Limits:   cfg.Search,
	})
	return a, nil
}

// Close flushes search history and releases resources.
func (a *app) Close() {
	a.tracker.Stop()
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close history database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
