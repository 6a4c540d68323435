package config

import (
	"fmt"
	"strings"
)

// Validate checks value ranges and the scoring weights.
func (c *Config) Validate() error {
	if c.Exa.TimeoutSeconds <= 0 {
		return fmt.Errorf("exa.timeoutSeconds must be positive, got %d", c.Exa.TimeoutSeconds)
	}
	if c.Exa.MaxRetries < 0 {
		return fmt.Errorf("exa.maxRetries must not be negative, got %d", c.Exa.MaxRetries)
	}
	if c.Search.DefaultMaxResults <= 0 {
		return fmt.Errorf("search.defaultMaxResults must be positive, got %d", c.Search.DefaultMaxResults)
	}
	if c.Search.MaxResultsLimit < c.Search.DefaultMaxResults {
		return fmt.Errorf("search.maxResultsLimit (%d) is below search.defaultMaxResults (%d)",
			c.Search.MaxResultsLimit, c.Search.DefaultMaxResults)
	}
	if c.Search.CategorizeMaxResults <= 0 {
		return fmt.Errorf("search.categorizeMaxResults must be positive, got %d", c.Search.CategorizeMaxResults)
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retentionDays must not be negative, got %d", c.History.RetentionDays)
	}
	switch NormalizeTransport(c.Server.Transport) {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("server.transport must be %q or %q, got %q", TransportStdio, TransportHTTP, c.Server.Transport)
	}
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	return nil
}

// NormalizeTransport lower-cases and trims a transport name.
func NormalizeTransport(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RequireAPIKey returns a *MissingAPIKeyError when no Exa key is set.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Exa.APIKey) == "" {
		return &MissingAPIKeyError{}
	}
	return nil
}
