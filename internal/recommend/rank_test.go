package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(name, url, repo string, conf float64, features ...string) Recommendation {
	return Recommendation{
		Name:          name,
		SourceURL:     url,
		RepositoryURL: repo,
		Confidence:    conf,
		Features:      features,
		Categories:    []Category{CategoryUncategorized},
	}
}

func TestRankEmpty(t *testing.T) {
	out, err := Rank(nil, 5)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = Rank([]Recommendation{}, 5)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRankRejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		_, err := Rank([]Recommendation{rec("a", "https://a.dev", "", 0.5)}, limit)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "limit", verr.Field)
	}
}

func TestRankOrdering(t *testing.T) {
	records := []Recommendation{
		rec("zeta", "https://z.dev", "", 0.7),
		rec("alpha", "https://a.dev", "", 0.7),
		rec("beta", "https://github.com/o/beta", "https://github.com/o/beta", 0.7),
		rec("top", "https://t.dev", "", 0.9),
		rec("low", "https://l.dev", "", 0.1),
	}

	out, err := Rank(records, 10)
	require.NoError(t, err)

	var names []string
	for _, r := range out {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"top", "beta", "alpha", "zeta", "low"}, names)

	out, err = Rank(records, 2)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, "top", out[0].Name)
}

func TestRankIdempotent(t *testing.T) {
	hits := []RawHit{
		sqliteHit(),
		{Title: "mcp server for slack", Text: "Slack MCP server readme", URL: "https://github.com/a/slack-mcp", Score: 0.7},
		{Title: "mcp server for slack", Text: "Send email too", URL: "https://github.com/a/slack-mcp/tree/main", Score: 0.6},
		{Title: "files", Text: "model context protocol filesystem", URL: "https://example.com/files?ref=x", Score: 0.5},
		{Title: "files", Text: "model context protocol local files", URL: "https://example.com/files/", Score: 0.5},
		{Title: "weather mcp tool", Text: "weather", URL: "https://w.example.com", Score: 0.2},
	}
	records := Analyze(hits, false)

	for n := 1; n <= len(records); n++ {
		once, err := Rank(records, n)
		require.NoError(t, err)
		twice, err := Rank(once, n)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "limit %d", n)
	}
}

func TestRankDedupUnionsFeatures(t *testing.T) {
	hits := []RawHit{
		{
			Title: "GitHub - acme/multi-mcp",
			Text:  "Model Context Protocol server for PostgreSQL.",
			URL:   "https://github.com/acme/multi-mcp",
			Score: 0.8,
		},
		{
			Title: "multi-mcp/README.md",
			Text:  "MCP server that also posts to Slack.",
			URL:   "https://github.com/ACME/multi-mcp/blob/main/README.md",
			Score: 0.4,
		},
	}
	records := Analyze(hits, false)
	require.Len(t, records, 2)

	out, err := Rank(records, 5)
	require.NoError(t, err)
	require.Len(t, out, 1)

	want := unionFeatures(records[0].Features, records[1].Features)
	assert.Equal(t, want, out[0].Features)
	assert.Contains(t, out[0].Features, "database-access")
	assert.Contains(t, out[0].Features, "communication")
	assert.Equal(t, []Category{CategoryDatabase, CategoryCommunication}, out[0].Categories)
	assert.Equal(t, "https://github.com/acme/multi-mcp", out[0].SourceURL)
	assert.Equal(t, records[0].Confidence, out[0].Confidence)
}

func TestRankDedupCanonicalSourceURL(t *testing.T) {
	records := []Recommendation{
		rec("docs", "https://Example.com/mcp/?utm=1", "", 0.3, "web-search"),
		rec("docs", "https://example.com/mcp#install", "", 0.6, "file-system"),
	}
	out, err := Rank(records, 5)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 0.6, out[0].Confidence)
	assert.Equal(t, []string{"file-system", "web-search"}, out[0].Features)
}

func TestMergeAssociative(t *testing.T) {
	a := rec("a", "https://github.com/o/r", "https://github.com/o/r", 0.5, "git")
	a.Description = ""
	b := rec("b", "https://github.com/o/r/issues", "https://github.com/o/r", 0.5, "ci-cd")
	b.Description = "b desc"
	b.InstallationNotes = "npx b"
	c := rec("c", "https://github.com/o/r/wiki", "https://github.com/o/r", 0.9, "memory")
	c.Categories = []Category{CategoryAI}

	left := Merge(Merge(a, b), c)
	right := Merge(a, Merge(b, c))
	assert.Equal(t, left, right)

	assert.Equal(t, "c", left.Name)
	assert.Equal(t, 0.9, left.Confidence)
	assert.Equal(t, "b desc", left.Description)
	assert.Equal(t, "npx b", left.InstallationNotes)
	assert.Equal(t, []string{"ci-cd", "git", "memory"}, left.Features)
	assert.Equal(t, []Category{CategoryAI}, left.Categories)
}

func TestMergePrefersRepositoryOnTie(t *testing.T) {
	withRepo := rec("z", "https://github.com/o/r", "https://github.com/o/r", 0.5)
	without := rec("a", "https://github.com/o/r", "", 0.5)

	assert.Equal(t, "z", Merge(withRepo, without).Name)
	assert.Equal(t, "z", Merge(without, withRepo).Name)
}

func TestCanonicalURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://Example.COM/Path/", "https://example.com/Path"},
		{"HTTP://www.example.com/a?b=c#d", "http://example.com/a"},
		{"https://example.com", "https://example.com"},
		{"  https://example.com/x/  ", "https://example.com/x"},
		{"not a url/", "not a url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalURL(tt.in), tt.in)
	}
}

func TestRepositoryURL(t *testing.T) {
	hosts := map[string]bool{"github.com": true, "gitlab.com": true}
	tests := []struct {
		in, want string
	}{
		{"https://github.com/Owner/Repo", "https://github.com/owner/repo"},
		{"https://www.github.com/owner/repo.git", "https://github.com/owner/repo"},
		{"https://github.com/owner/repo/tree/main/src?x=1", "https://github.com/owner/repo"},
		{"https://gitlab.com/group/project/-/blob/main/README.md", "https://gitlab.com/group/project"},
		{"https://github.com/owner", ""},
		{"https://github.com/topics/mcp", ""},
		{"https://example.com/owner/repo", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, repositoryURL(tt.in, hosts), tt.in)
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		title, repo, source, want string
	}{
		{"awesome-mcp-sqlite — GitHub", "", "", "awesome-mcp-sqlite"},
		{"GitHub - owner/tool: does things", "https://github.com/owner/tool", "", "tool"},
		{"owner/other: does things", "https://github.com/owner/tool", "", "owner/other: does things"},
		{"CI/CD", "", "https://example.com/ci", "CI/CD"},
		{"CI/CD", "https://github.com/acme/pipelines", "", "CI/CD"},
		{"Slack MCP · GitHub", "", "", "Slack MCP"},
		{"", "https://github.com/o/fallback", "https://github.com/o/fallback", "fallback"},
		{"   ", "", "https://www.docs.example.com/page", "docs.example.com"},
		{"", "", "", "Unknown MCP"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, deriveName(tt.title, tt.repo, tt.source), tt.title)
	}
}
