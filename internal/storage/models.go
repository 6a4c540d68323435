package storage

import "time"

// Outcome values stored with each search.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// SearchRecord represents one discovery call for analytics.
type SearchRecord struct {
	// SearchID is a unique identifier for this search (UUID).
	SearchID string `json:"search_id"`

	// Tool is the discovery operation, e.g. "search_mcps".
	Tool string `json:"tool"`

	// QueryHash is the SHA256 hash of the search query for privacy.
	QueryHash string `json:"query_hash"`

	// Timestamp is when the search was performed.
	Timestamp time.Time `json:"timestamp"`

	// ResultsCount is the number of recommendations returned.
	ResultsCount int `json:"results_count"`

	// Duration is the wall time of the call.
	Duration time.Duration `json:"duration"`

	// Outcome is one of OutcomeSuccess, OutcomeEmpty or OutcomeError.
	Outcome string `json:"outcome"`
}

// ToolStats aggregates searches for one tool.
type ToolStats struct {
	Tool          string    `json:"tool"`
	Searches      int       `json:"searches"`
	Errors        int       `json:"errors"`
	Empty         int       `json:"empty"`
	AvgResults    float64   `json:"avg_results"`
	AvgDurationMs float64   `json:"avg_duration_ms"`
	LastUsed      time.Time `json:"last_used"`
}

// HistoryStats summarizes the search history.
type HistoryStats struct {
	Since         time.Time   `json:"since"`
	TotalSearches int         `json:"total_searches"`
	UniqueQueries int         `json:"unique_queries"`
	Tools         []ToolStats `json:"tools"`
}
