package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteHit() RawHit {
	return RawHit{
		Title: "awesome-mcp-sqlite — GitHub",
		Text:  "A Model Context Protocol server for SQLite access. Install via pip. 120 stars.",
		URL:   "https://github.com/x/awesome-mcp-sqlite",
		Score: 0.9,
	}
}

func TestAnalyzeSQLiteScenario(t *testing.T) {
	recs := Analyze([]RawHit{sqliteHit()}, false)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "awesome-mcp-sqlite", rec.Name)
	assert.Equal(t, "https://github.com/x/awesome-mcp-sqlite", rec.RepositoryURL)
	assert.Equal(t, "https://github.com/x/awesome-mcp-sqlite", rec.SourceURL)
	assert.Contains(t, rec.Features, "database-access")
	assert.Contains(t, rec.Categories, CategoryDatabase)
	assert.Greater(t, rec.Confidence, 0.6)
	assert.InDelta(t, 0.845, rec.Confidence, 1e-9)
	assert.Equal(t, "A Model Context Protocol server for SQLite access. Install via pip. 120 stars.", rec.Description)
}

func TestAnalyzeDropsHitsWithoutIndicators(t *testing.T) {
	hit := RawHit{
		Title: "Best pizza in Naples",
		Text:  "A guide to the finest pizzerias, with a database of reviews.",
		URL:   "https://example.com/pizza",
		Score: 0.9,
	}

	assert.Empty(t, Analyze([]RawHit{hit}, false))

	broad := Analyze([]RawHit{hit}, true)
	require.Len(t, broad, 1)
	withIndicator := Analyze([]RawHit{{
		Title: hit.Title,
		Text:  hit.Text + " Works as an MCP server.",
		URL:   hit.URL,
		Score: hit.Score,
	}}, false)
	require.Len(t, withIndicator, 1)
	assert.Less(t, broad[0].Confidence, withIndicator[0].Confidence)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	assert.Empty(t, Analyze(nil, false))
	assert.Empty(t, Analyze([]RawHit{}, true))
}

func TestAnalyzeEmptySnippet(t *testing.T) {
	recs := Analyze([]RawHit{{
		Title: "mcp server for slack",
		URL:   "https://example.com/slack-mcp",
		Score: 0.5,
	}}, false)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Description)
	assert.Empty(t, recs[0].RepositoryURL)
	assert.Equal(t, []Category{CategoryCommunication}, recs[0].Categories)
}

func TestAnalyzeConfidenceBounds(t *testing.T) {
	hits := []RawHit{
		{Title: "MCP server", Text: "model context protocol mcp server fastmcp claude desktop readme 9k stars", URL: "https://github.com/a/b", Score: 5},
		{Title: "MCP server", Text: "", URL: "", Score: -3},
		{Title: "", Text: "nothing", URL: "::bad url::", Score: 0.7},
		{Title: "mcp tool", Text: "x", URL: "https://gitlab.com/a", Score: 1},
	}
	for _, broad := range []bool{false, true} {
		for _, rec := range Analyze(hits, broad) {
			assert.GreaterOrEqual(t, rec.Confidence, 0.0)
			assert.LessOrEqual(t, rec.Confidence, 1.0)
			assert.NotEmpty(t, rec.Categories)
		}
	}
}

func TestAnalyzeIndicatorMonotonicity(t *testing.T) {
	base := RawHit{
		Title: "sqlite tools",
		Text:  "A model context protocol integration.",
		URL:   "https://example.com/tools",
		Score: 0.4,
	}
	additions := []string{" mcp server", " fastmcp", " claude desktop", " mcp client", " mcp tool"}

	prev := Analyze([]RawHit{base}, false)
	require.Len(t, prev, 1)
	conf := prev[0].Confidence
	text := base.Text
	for _, add := range additions {
		text += add
		hit := base
		hit.Text = text
		recs := Analyze([]RawHit{hit}, false)
		require.Len(t, recs, 1)
		assert.GreaterOrEqual(t, recs[0].Confidence, conf, "adding %q lowered confidence", add)
		conf = recs[0].Confidence
	}
}

func TestAnalyzeWordBoundaries(t *testing.T) {
	recs := Analyze([]RawHit{{
		Title: "MCP server",
		Text:  "Digitally brag about your mysqlish legitimate rages.",
		URL:   "https://example.com/x",
		Score: 0.5,
	}}, false)
	require.Len(t, recs, 1)
	assert.Empty(t, recs[0].Features)
	assert.Equal(t, []Category{CategoryUncategorized}, recs[0].Categories)
}

func TestAnalyzeFeaturesAndCategories(t *testing.T) {
	recs := Analyze([]RawHit{{
		Title: "GitHub - acme/browser-mcp: MCP server for Playwright and Slack",
		Text:  "Model Context Protocol server with headless browser automation, Slack notifications and PostgreSQL.",
		URL:   "https://github.com/Acme/Browser-MCP.git",
		Score: 0.8,
	}}, false)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "browser-mcp", rec.Name)
	assert.Equal(t, "https://github.com/acme/browser-mcp", rec.RepositoryURL)
	assert.Equal(t, []string{"browser-automation", "communication", "database-access"}, rec.Features)
	assert.Equal(t, []Category{CategoryDatabase, CategoryWeb, CategoryCommunication}, rec.Categories)
}

func TestAnalyzeInstallationNotes(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Run npx -y @modelcontextprotocol/server-filesystem to start the MCP server.", "npx -y @modelcontextprotocol/server-filesystem"},
		{"MCP server. Install with pip install mcp-server-git today", "pip install mcp-server-git"},
		{"MCP server: docker run -i --rm mcp/sqlite", "docker run -i --rm mcp/sqlite"},
		{"MCP server. Install via pip.", ""},
	}
	for _, tt := range tests {
		recs := Analyze([]RawHit{{Title: "x", Text: tt.text, URL: "https://example.com", Score: 0.5}}, false)
		require.Len(t, recs, 1, tt.text)
		assert.Equal(t, tt.want, recs[0].InstallationNotes, tt.text)
	}
}

func TestAnalyzeTruncatesDescription(t *testing.T) {
	long := "MCP server " + strings.Repeat("lorem ipsum dolor ", 40)
	recs := Analyze([]RawHit{{Title: "x", Text: long, URL: "https://example.com", Score: 0.5}}, false)
	require.Len(t, recs, 1)

	desc := recs[0].Description
	assert.LessOrEqual(t, len([]rune(desc)), MaxDescriptionRunes)
	assert.True(t, strings.HasSuffix(desc, "..."))
	assert.NotContains(t, desc, "  ")
}

func TestNewAnalyzerRejectsBadWeights(t *testing.T) {
	cfg := DefaultScoringConfig
	cfg.ProviderWeight = 0.9

	_, err := NewAnalyzer(cfg, DefaultLexicon)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "scoring", verr.Field)

	cfg = DefaultScoringConfig
	cfg.IndicatorCap = 0
	_, err = NewAnalyzer(cfg, DefaultLexicon)
	require.ErrorAs(t, err, &verr)
}

func TestNewAnalyzerCustomLexicon(t *testing.T) {
	lex := Lexicon{
		Indicators: []string{"widget"},
		Features:   []FeatureRule{{Feature: "weather", Category: CategoryUtilities, Keywords: []string{"forecast"}}},
		CodeHosts:  []string{"example.org"},
	}
	a, err := NewAnalyzer(DefaultScoringConfig, lex)
	require.NoError(t, err)

	recs := a.Analyze([]RawHit{{Title: "Widget", Text: "daily forecast", URL: "https://example.org/me/widget", Score: 1}}, false)
	require.Len(t, recs, 1)
	assert.Equal(t, "https://example.org/me/widget", recs[0].RepositoryURL)
	assert.Equal(t, []string{"weather"}, recs[0].Features)
	assert.Equal(t, []Category{CategoryUtilities}, recs[0].Categories)
}
