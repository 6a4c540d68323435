package exa

import (
	"strings"
	"time"

	"github.com/khanglvm/mcp-scout/internal/recommend"
)

// SearchRequest describes a neural search call.
type SearchRequest struct {
	Query          string
	NumResults     int
	IncludeDomains []string
}

type contentsOptions struct {
	Text       bool `json:"text"`
	Summary    bool `json:"summary"`
	Highlights bool `json:"highlights,omitempty"`
}

type searchPayload struct {
	Query          string          `json:"query"`
	NumResults     int             `json:"numResults"`
	Type           string          `json:"type"`
	Contents       contentsOptions `json:"contents"`
	IncludeDomains []string        `json:"includeDomains,omitempty"`
}

type findSimilarPayload struct {
	URL        string          `json:"url"`
	NumResults int             `json:"numResults"`
	Contents   contentsOptions `json:"contents"`
}

type answerPayload struct {
	Query string `json:"query"`
	Text  bool   `json:"text"`
}

// result is one entry of the "results" array.
type result struct {
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	Title         string   `json:"title"`
	Score         float64  `json:"score"`
	PublishedDate string   `json:"publishedDate"`
	Author        string   `json:"author"`
	Text          string   `json:"text"`
	Summary       string   `json:"summary"`
	Highlights    []string `json:"highlights"`
}

type resultsResponse struct {
	RequestID string   `json:"requestId"`
	Results   []result `json:"results"`
}

type answerResponse struct {
	Answer    string   `json:"answer"`
	Citations []result `json:"citations"`
}

// Citation is a source backing an answer.
type Citation struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author,omitempty"`
}

// Answer is the response of the answer endpoint.
type Answer struct {
	Text      string
	Citations []Citation
	// Hits holds the citations as raw hits with a zero provider score.
	Hits []recommend.RawHit
}

// toRawHit flattens a provider result. The summary leads the text so the
// most condensed description is used first.
func (r result) toRawHit() recommend.RawHit {
	var parts []string
	for _, s := range []string{r.Summary, r.Text} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 && len(r.Highlights) > 0 {
		parts = append(parts, strings.Join(r.Highlights, " "))
	}
	hit := recommend.RawHit{
		URL:    r.URL,
		Title:  r.Title,
		Text:   strings.Join(parts, "\n"),
		Score:  r.Score,
		Author: r.Author,
	}
	if t, ok := parseDate(r.PublishedDate); ok {
		hit.PublishedDate = &t
	}
	return hit
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toRawHits(results []result) []recommend.RawHit {
	hits := make([]recommend.RawHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, r.toRawHit())
	}
	return hits
}
