/*
Package tracking records search analytics in the background.

Events are queued without blocking the caller and written to storage in
batches, so a slow or broken database never delays a discovery call.
*/
package tracking

import (
	"time"

	"github.com/google/uuid"

	"github.com/khanglvm/mcp-scout/internal/storage"
)

// SearchEvent describes one completed discovery call.
type SearchEvent struct {
	// SearchID uniquely identifies the call.
	SearchID string

	// Tool is the discovery operation that ran.
	Tool string

	// QueryHash is the SHA256 hash of the query for privacy.
	QueryHash string

	// Timestamp is when the call finished.
	Timestamp time.Time

	// Results is the number of recommendations returned.
	Results int

	// Duration is the wall time of the call.
	Duration time.Duration

	// Outcome is one of the storage outcome values.
	Outcome string
}

// NewSearchEvent creates an event for a call that took duration. The query
// is hashed immediately and never kept.
func NewSearchEvent(tool, query string, results int, duration time.Duration, outcome string) SearchEvent {
	return SearchEvent{
		SearchID:  uuid.NewString(),
		Tool:      tool,
		QueryHash: storage.HashQuery(query),
		Timestamp: time.Now(),
		Results:   results,
		Duration:  duration,
		Outcome:   outcome,
	}
}

// ToStorage converts the event to the storage model.
func (e SearchEvent) ToStorage() storage.SearchRecord {
	return storage.SearchRecord{
		SearchID:     e.SearchID,
		Tool:         e.Tool,
		QueryHash:    e.QueryHash,
		Timestamp:    e.Timestamp,
		ResultsCount: e.Results,
		Duration:     e.Duration,
		Outcome:      e.Outcome,
	}
}
