/*
Package config handles loading and saving mcp-scout configuration.

Configuration is read from ~/.mcp-scout.json, a .env file and the environment,
in increasing order of precedence. EXA_API_KEY is honored directly; every other
key can be overridden as MCPSCOUT_<SECTION>_<KEY>, for example
MCPSCOUT_SEARCH_DEFAULTMAXRESULTS=20.

Schema:

	{
	  "exa": {
	    "apiKey": "...",
	    "baseUrl": "https://api.exa.ai",
	    "timeoutSeconds": 30,
	    "maxRetries": 3
	  },
	  "search": {
	    "defaultMaxResults": 10,
	    "maxResultsLimit": 50,
	    "categorizeMaxResults": 20
	  },
	  "scoring": {
	    "providerWeight": 0.55,
	    "indicatorWeight": 0.30,
	    "credibilityWeight": 0.15
	  },
	  "history": {
	    "enabled": true,
	    "retentionDays": 90
	  },
	  "log": {"level": "info", "format": "console"},
	  "server": {"transport": "stdio", "addr": "127.0.0.1:8080"}
	}
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/khanglvm/mcp-scout/internal/recommend"
)

// Config represents the root configuration structure.
type Config struct {
	Exa     ExaSettings             `json:"exa" mapstructure:"exa"`
	Search  SearchSettings          `json:"search" mapstructure:"search"`
	Scoring recommend.ScoringConfig `json:"scoring" mapstructure:"scoring"`
	History HistorySettings         `json:"history" mapstructure:"history"`
	Log     LogSettings             `json:"log" mapstructure:"log"`
	Server  ServerSettings          `json:"server" mapstructure:"server"`
}

// ExaSettings configures the search provider client.
type ExaSettings struct {
	// APIKey authenticates against the Exa API.
	APIKey string `json:"apiKey,omitempty" mapstructure:"apiKey"`

	BaseURL string `json:"baseUrl" mapstructure:"baseUrl"`

	// TimeoutSeconds bounds a single HTTP request.
	TimeoutSeconds int `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`

	// MaxRetries is how often rate-limited or transient failures are retried.
	MaxRetries int `json:"maxRetries" mapstructure:"maxRetries"`
}

// SearchSettings holds result-count defaults for the discovery tools.
type SearchSettings struct {
	DefaultMaxResults    int `json:"defaultMaxResults" mapstructure:"defaultMaxResults"`
	MaxResultsLimit      int `json:"maxResultsLimit" mapstructure:"maxResultsLimit"`
	CategorizeMaxResults int `json:"categorizeMaxResults" mapstructure:"categorizeMaxResults"`
}

// HistorySettings configures search analytics.
type HistorySettings struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file. Empty means ~/.mcp-scout/history.db.
	Path string `json:"path,omitempty" mapstructure:"path"`

	RetentionDays int `json:"retentionDays" mapstructure:"retentionDays"`
}

// LogSettings configures the zap logger.
type LogSettings struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// ServerSettings configures the MCP transport.
type ServerSettings struct {
	Transport string `json:"transport" mapstructure:"transport"`
	Addr      string `json:"addr" mapstructure:"addr"`
}

// Transport names.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// NewConfig creates a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Exa: ExaSettings{
			BaseURL:        "https://api.exa.ai",
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Search: SearchSettings{
			DefaultMaxResults:    10,
			MaxResultsLimit:      50,
			CategorizeMaxResults: 20,
		},
		Scoring: recommend.DefaultScoringConfig,
		History: HistorySettings{
			Enabled:       true,
			RetentionDays: 90,
		},
		Log: LogSettings{
			Level:  "info",
			Format: "console",
		},
		Server: ServerSettings{
			Transport: TransportStdio,
			Addr:      "127.0.0.1:8080",
		},
	}
}

// Timeout returns the provider request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Exa.TimeoutSeconds) * time.Second
}

// HistoryPath returns the analytics database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// GetDefaultConfigPath returns the path to ~/.mcp-scout.json
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mcp-scout.json"), nil
}

// GetDataDir returns ~/.mcp-scout, where the history database and an
// optional .env file live.
func GetDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mcp-scout"), nil
}
