package scout

import (
	"github.com/khanglvm/mcp-scout/internal/exa"
	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/search"
)

// SearchResponse is the result of a requirement search.
type SearchResponse struct {
	Query           string                     `json:"query"`
	SearchQueryUsed string                     `json:"search_query_used"`
	Filter          string                     `json:"filter,omitempty"`
	TotalFound      int                        `json:"total_found"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
	Message         string                     `json:"message,omitempty"`

	// Scores is set for reranked searches, in the same order as
	// Recommendations.
	Scores []search.ScoredRecommendation `json:"scores,omitempty"`
}

// DetailsResponse describes one MCP server and its neighbours.
type DetailsResponse struct {
	URL              string                     `json:"url"`
	Details          *recommend.Recommendation  `json:"details"`
	InstallationInfo string                     `json:"installation_info,omitempty"`
	SimilarMCPs      []recommend.Recommendation `json:"similar_mcps"`
	SimilarError     string                     `json:"similar_error,omitempty"`
	Message          string                     `json:"message,omitempty"`
}

// SimilarResponse lists servers similar to a reference URL.
type SimilarResponse struct {
	ReferenceURL string                     `json:"reference_url"`
	SimilarMCPs  []recommend.Recommendation `json:"similar_mcps"`
	Message      string                     `json:"message,omitempty"`
}

// AnswerResponse is a direct answer with its sources.
type AnswerResponse struct {
	Question    string                     `json:"question"`
	Answer      string                     `json:"answer"`
	Sources     []exa.Citation             `json:"sources"`
	RelatedMCPs []recommend.Recommendation `json:"related_mcps"`
}

// CategoryView is one category of a CategorizeResponse.
type CategoryView struct {
	Category recommend.Category         `json:"category"`
	Count    int                        `json:"count"`
	MCPs     []recommend.Recommendation `json:"mcps"`
}

// CategorizeResponse groups search results by category.
type CategorizeResponse struct {
	Requirement string         `json:"requirement"`
	TotalMCPs   int            `json:"total_mcps"`
	Categories  []CategoryView `json:"categories"`
	Message     string         `json:"message,omitempty"`
}
