/*
Package recommend turns raw search hits into ranked MCP server recommendations.

The package is a pure value-to-value transformation: Analyze scores and
annotates hits, Rank deduplicates and orders the resulting records, and
GroupByCategory regroups a ranked list for exploration-style output.
No function in this package performs I/O or keeps state between calls.
*/
package recommend

import (
	"fmt"
	"time"
)

// RawHit is a single result returned by the search provider.
type RawHit struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Text          string     `json:"text"`
	Score         float64    `json:"score"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Author        string     `json:"author,omitempty"`
}

// Recommendation is a scored, annotated MCP server candidate.
type Recommendation struct {
	// Name is the display name derived from the title or URL.
	Name string `json:"name"`

	// Description is the whitespace-collapsed, truncated snippet.
	Description string `json:"description"`

	// SourceURL is the URL of the hit the record was built from.
	SourceURL string `json:"url"`

	// RepositoryURL is the canonical code-hosting URL, empty when the
	// source is not a repository.
	RepositoryURL string `json:"repository,omitempty"`

	// Confidence is the composite relevance score in [0, 1].
	Confidence float64 `json:"confidence_score"`

	// Features holds capability tags in sorted order.
	Features []string `json:"key_features"`

	// Categories holds category labels in vocabulary order. It is never
	// empty: records without a mapped feature carry Uncategorized.
	Categories []Category `json:"categories"`

	// InstallationNotes is an install command detected in the snippet.
	InstallationNotes string `json:"installation_notes,omitempty"`
}

// HasRepository reports whether the record points at a code-hosting repository.
func (r Recommendation) HasRepository() bool {
	return r.RepositoryURL != ""
}

// Key returns the deduplication key of the record.
func (r Recommendation) Key() string {
	if r.RepositoryURL != "" {
		return r.RepositoryURL
	}
	return CanonicalURL(r.SourceURL)
}

// Category is a label from the closed category vocabulary.
type Category string

const (
	CategoryDatabase      Category = "Database & Storage"
	CategoryWeb           Category = "Web & APIs"
	CategoryFileSystem    Category = "File System"
	CategoryCommunication Category = "Communication"
	CategoryDevTools      Category = "Development Tools"
	CategoryAI            Category = "AI & ML"
	CategoryUtilities     Category = "Utilities"
	CategoryUncategorized Category = "Uncategorized"
)

// Categories lists the vocabulary in presentation order.
var Categories = []Category{
	CategoryDatabase,
	CategoryWeb,
	CategoryFileSystem,
	CategoryCommunication,
	CategoryDevTools,
	CategoryAI,
	CategoryUtilities,
	CategoryUncategorized,
}

// categoryRank gives each category its position in the vocabulary.
var categoryRank = func() map[Category]int {
	m := make(map[Category]int, len(Categories))
	for i, c := range Categories {
		m[c] = i
	}
	return m
}()

// ValidationError reports a caller contract violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
