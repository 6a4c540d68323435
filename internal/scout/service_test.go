package scout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khanglvm/mcp-scout/internal/config"
	"github.com/khanglvm/mcp-scout/internal/exa"
	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/storage"
	"github.com/khanglvm/mcp-scout/internal/tracking"
)

type fakeProvider struct {
	mu sync.Mutex

	searchFn  func(req exa.SearchRequest) ([]recommend.RawHit, error)
	similarFn func(url string, n int) ([]recommend.RawHit, error)
	answerFn  func(query string) (*exa.Answer, error)

	searches []exa.SearchRequest
	similar  []int
	answers  []string
}

func (f *fakeProvider) Search(_ context.Context, req exa.SearchRequest) ([]recommend.RawHit, error) {
	f.mu.Lock()
	f.searches = append(f.searches, req)
	f.mu.Unlock()
	if f.searchFn == nil {
		return nil, &exa.EmptyResultError{Endpoint: exa.EndpointSearch, Query: req.Query}
	}
	return f.searchFn(req)
}

func (f *fakeProvider) FindSimilar(_ context.Context, url string, n int) ([]recommend.RawHit, error) {
	f.mu.Lock()
	f.similar = append(f.similar, n)
	f.mu.Unlock()
	if f.similarFn == nil {
		return nil, &exa.EmptyResultError{Endpoint: exa.EndpointFindSimilar, Query: url}
	}
	return f.similarFn(url, n)
}

func (f *fakeProvider) Answer(_ context.Context, query string) (*exa.Answer, error) {
	f.mu.Lock()
	f.answers = append(f.answers, query)
	f.mu.Unlock()
	if f.answerFn == nil {
		return nil, &exa.EmptyResultError{Endpoint: exa.EndpointAnswer, Query: query}
	}
	return f.answerFn(query)
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []tracking.SearchEvent
}

func (r *fakeRecorder) Track(e tracking.SearchEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *fakeRecorder) last(t *testing.T) tracking.SearchEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.events)
	return r.events[len(r.events)-1]
}

func newTestService(p Provider) (*Service, *fakeRecorder) {
	rec := &fakeRecorder{}
	return NewService(p, Options{Recorder: rec, Limits: config.NewConfig().Search}), rec
}

func sqliteHit() recommend.RawHit {
	return recommend.RawHit{
		Title: "awesome-mcp-sqlite - GitHub",
		Text:  "A Model Context Protocol server for SQLite access. Install via pip. 120 stars.",
		URL:   "https://github.com/x/awesome-mcp-sqlite",
		Score: 0.9,
	}
}

func slackHit() recommend.RawHit {
	return recommend.RawHit{
		Title: "slack-mcp - GitHub",
		Text:  "An MCP server for Slack messaging and channels.",
		URL:   "https://github.com/y/slack-mcp",
		Score: 0.7,
	}
}

func pizzaHit() recommend.RawHit {
	return recommend.RawHit{
		Title: "Best pizza in Naples",
		Text:  "A guide to the finest pizzerias.",
		URL:   "https://example.com/pizza",
		Score: 0.95,
	}
}

func TestSearchBuildsQueryAndRanks(t *testing.T) {
	dup := sqliteHit()
	dup.URL += "/"
	dup.Score = 0.4
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{pizzaHit(), sqliteHit(), dup, slackHit()}, nil
	}}
	svc, rec := newTestService(p)

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "  sqlite database "})
	require.NoError(t, err)

	require.Len(t, p.searches, 1)
	assert.Equal(t, "MCP server sqlite database Model Context Protocol", p.searches[0].Query)
	assert.Equal(t, 20, p.searches[0].NumResults)
	assert.Empty(t, p.searches[0].IncludeDomains)

	assert.Equal(t, "sqlite database", resp.Query)
	assert.Equal(t, 2, resp.TotalFound)
	require.Len(t, resp.Recommendations, 2)
	assert.Equal(t, "awesome-mcp-sqlite", resp.Recommendations[0].Name)
	assert.Equal(t, "slack-mcp", resp.Recommendations[1].Name)
	assert.Empty(t, resp.Message)

	event := rec.last(t)
	assert.Equal(t, ToolSearch, event.Tool)
	assert.Equal(t, 2, event.Results)
	assert.Equal(t, storage.OutcomeSuccess, event.Outcome)
	assert.Equal(t, storage.HashQuery("sqlite database"), event.QueryHash)
}

func TestSearchGitHubOnly(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{sqliteHit()}, nil
	}}
	svc, _ := newTestService(p)

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "sqlite", GitHubOnly: true, MaxResults: 3})
	require.NoError(t, err)

	req := p.searches[0]
	assert.True(t, strings.HasSuffix(req.Query, " site:github.com"))
	assert.Equal(t, GitHubDomains, req.IncludeDomains)
	assert.Equal(t, 6, req.NumResults)
	assert.Equal(t, req.Query, resp.SearchQueryUsed)
}

func TestSearchClampsMaxResults(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{sqliteHit()}, nil
	}}
	svc, _ := newTestService(p)

	_, err := svc.Search(context.Background(), SearchOptions{Requirement: "sqlite", MaxResults: 500})
	require.NoError(t, err)
	assert.Equal(t, 100, p.searches[0].NumResults)
}

func TestSearchRejectsEmptyRequirement(t *testing.T) {
	p := &fakeProvider{}
	svc, rec := newTestService(p)

	_, err := svc.Search(context.Background(), SearchOptions{Requirement: "   "})
	var verr *recommend.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "requirement", verr.Field)
	assert.Empty(t, p.searches)
	assert.Equal(t, storage.OutcomeError, rec.last(t).Outcome)
}

func TestSearchEmptyProviderResult(t *testing.T) {
	svc, rec := newTestService(&fakeProvider{})

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "quantum toaster"})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalFound)
	assert.NotNil(t, resp.Recommendations)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, storage.OutcomeEmpty, rec.last(t).Outcome)
}

func TestSearchPropagatesProviderErrors(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return nil, &exa.AuthError{StatusCode: 401, Message: "bad key"}
	}}
	svc, _ := newTestService(p)

	_, err := svc.Search(context.Background(), SearchOptions{Requirement: "sqlite"})
	var authErr *exa.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestSearchBroadModeKeepsUnmarkedHits(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{pizzaHit()}, nil
	}}
	svc, _ := newTestService(p)

	strict, err := svc.Search(context.Background(), SearchOptions{Requirement: "pizza"})
	require.NoError(t, err)
	assert.Zero(t, strict.TotalFound)
	assert.NotEmpty(t, strict.Message)

	broad, err := svc.Search(context.Background(), SearchOptions{Requirement: "pizza", Broad: true})
	require.NoError(t, err)
	assert.Equal(t, 1, broad.TotalFound)
}

func TestSearchKeywordFilter(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{sqliteHit(), slackHit()}, nil
	}}
	svc, _ := newTestService(p)

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "tools", Keywords: "slack"})
	require.NoError(t, err)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "slack-mcp", resp.Recommendations[0].Name)
	assert.Equal(t, "slack", resp.Filter)
}

// lowAndHighHits returns four well-scored postgres servers followed by four
// weakly scored playwright servers.
func lowAndHighHits() []recommend.RawHit {
	var hits []recommend.RawHit
	for i := range 4 {
		hits = append(hits, recommend.RawHit{
			Title: fmt.Sprintf("postgres-mcp-%d - GitHub", i),
			Text:  "An MCP server for PostgreSQL queries.",
			URL:   fmt.Sprintf("https://github.com/pg/postgres-mcp-%d", i),
			Score: 0.9,
		})
	}
	for i := range 4 {
		hits = append(hits, recommend.RawHit{
			Title: fmt.Sprintf("playwright-mcp-%d - GitHub", i),
			Text:  "An MCP server for browser automation with Playwright.",
			URL:   fmt.Sprintf("https://github.com/pw/playwright-mcp-%d", i),
			Score: 0.3,
		})
	}
	return hits
}

func TestSearchKeywordFilterSeesAllCandidates(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return lowAndHighHits(), nil
	}}
	svc, _ := newTestService(p)

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "tools", MaxResults: 3, Keywords: "playwright"})
	require.NoError(t, err)
	assert.Equal(t, 6, p.searches[0].NumResults)
	require.Equal(t, 3, resp.TotalFound)
	assert.Empty(t, resp.Message)
	for _, r := range resp.Recommendations {
		assert.Contains(t, r.Name, "playwright")
	}
}

func TestSearchRerankSeesAllCandidates(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return lowAndHighHits(), nil
	}}
	svc, _ := newTestService(p)

	resp, err := svc.Search(context.Background(), SearchOptions{Requirement: "tools", MaxResults: 2, Keywords: "playwright", Rerank: true})
	require.NoError(t, err)
	require.Len(t, resp.Scores, 2)
	require.Len(t, resp.Recommendations, 2)
	for i, sr := range resp.Scores {
		assert.Contains(t, sr.Name, "playwright")
		assert.Equal(t, sr.Recommendation.Key(), resp.Recommendations[i].Key())
	}
}

func TestDetails(t *testing.T) {
	site := sqliteHit()
	site.Text += " " + strings.Repeat("setup notes ", 60)
	p := &fakeProvider{
		searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
			return []recommend.RawHit{site, slackHit()}, nil
		},
		similarFn: func(string, int) ([]recommend.RawHit, error) {
			return []recommend.RawHit{sqliteHit(), slackHit()}, nil
		},
	}
	svc, rec := newTestService(p)

	target := "https://github.com/x/awesome-mcp-sqlite"
	resp, err := svc.Details(context.Background(), target)
	require.NoError(t, err)

	require.Len(t, p.searches, 1)
	assert.Equal(t, "site:github.com "+target+" MCP server documentation setup", p.searches[0].Query)
	assert.Equal(t, 5, p.searches[0].NumResults)

	require.NotNil(t, resp.Details)
	assert.Equal(t, "awesome-mcp-sqlite", resp.Details.Name)

	assert.LessOrEqual(t, utf8.RuneCountInString(resp.InstallationInfo), 500)
	assert.True(t, strings.HasSuffix(resp.InstallationInfo, "..."))

	// The reference itself never appears among its neighbours
	require.Len(t, resp.SimilarMCPs, 1)
	assert.Equal(t, "slack-mcp", resp.SimilarMCPs[0].Name)
	assert.Empty(t, resp.SimilarError)

	assert.Equal(t, ToolDetails, rec.last(t).Tool)
}

func TestDetailsToleratesSimilarFailure(t *testing.T) {
	p := &fakeProvider{
		searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
			return []recommend.RawHit{sqliteHit()}, nil
		},
		similarFn: func(string, int) ([]recommend.RawHit, error) {
			return nil, &exa.TransientNetworkError{StatusCode: 503, Err: errors.New("unavailable")}
		},
	}
	svc, _ := newTestService(p)

	resp, err := svc.Details(context.Background(), "https://github.com/x/awesome-mcp-sqlite")
	require.NoError(t, err)
	require.NotNil(t, resp.Details)
	assert.Empty(t, resp.SimilarMCPs)
	assert.Contains(t, resp.SimilarError, "unavailable")
}

func TestDetailsNoDocumentation(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{})

	resp, err := svc.Details(context.Background(), "https://example.com/unknown")
	require.NoError(t, err)
	assert.Nil(t, resp.Details)
	assert.NotEmpty(t, resp.Message)
}

func TestDetailsFailsOnSiteSearchError(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return nil, &exa.RateLimitError{Message: "slow down"}
	}}
	svc, _ := newTestService(p)

	_, err := svc.Details(context.Background(), "https://github.com/x/y")
	var rl *exa.RateLimitError
	assert.ErrorAs(t, err, &rl)
}

func TestURLValidation(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{})

	for _, raw := range []string{"", "not a url", "ftp://example.com/x", "https://"} {
		_, err := svc.Details(context.Background(), raw)
		var verr *recommend.ValidationError
		assert.ErrorAs(t, err, &verr, raw)

		_, err = svc.Similar(context.Background(), raw, 5)
		assert.ErrorAs(t, err, &verr, raw)
	}
}

func TestSimilar(t *testing.T) {
	p := &fakeProvider{similarFn: func(string, int) ([]recommend.RawHit, error) {
		return []recommend.RawHit{sqliteHit(), slackHit(), pizzaHit()}, nil
	}}
	svc, _ := newTestService(p)

	resp, err := svc.Similar(context.Background(), "https://www.github.com/x/awesome-mcp-sqlite/", 5)
	require.NoError(t, err)
	assert.Equal(t, []int{10}, p.similar)
	assert.Equal(t, "https://www.github.com/x/awesome-mcp-sqlite/", resp.ReferenceURL)
	require.Len(t, resp.SimilarMCPs, 1)
	assert.Equal(t, "slack-mcp", resp.SimilarMCPs[0].Name)
}

func TestSimilarEmpty(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{})

	resp, err := svc.Similar(context.Background(), "https://github.com/x/y", 0)
	require.NoError(t, err)
	assert.Empty(t, resp.SimilarMCPs)
	assert.NotEmpty(t, resp.Message)
}

func TestAsk(t *testing.T) {
	p := &fakeProvider{answerFn: func(string) (*exa.Answer, error) {
		hit := sqliteHit()
		hit.Score = 0
		return &exa.Answer{
			Text:      "Use an SQLite MCP server.",
			Citations: []exa.Citation{{Title: "awesome-mcp-sqlite", URL: hit.URL}},
			Hits:      []recommend.RawHit{hit},
		}, nil
	}}
	svc, rec := newTestService(p)

	resp, err := svc.Ask(context.Background(), "which server talks to sqlite?")
	require.NoError(t, err)
	assert.Equal(t, []string{"Model Context Protocol MCP which server talks to sqlite?"}, p.answers)
	assert.Equal(t, "Use an SQLite MCP server.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	require.Len(t, resp.RelatedMCPs, 1)
	assert.Equal(t, "awesome-mcp-sqlite", resp.RelatedMCPs[0].Name)
	assert.Equal(t, ToolAsk, rec.last(t).Tool)
}

func TestAskEmptyAnswer(t *testing.T) {
	svc, _ := newTestService(&fakeProvider{})

	resp, err := svc.Ask(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, "No answer available", resp.Answer)
	assert.NotNil(t, resp.Sources)

	_, err = svc.Ask(context.Background(), " ")
	var verr *recommend.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCategorize(t *testing.T) {
	p := &fakeProvider{searchFn: func(exa.SearchRequest) ([]recommend.RawHit, error) {
		return []recommend.RawHit{slackHit(), sqliteHit()}, nil
	}}
	svc, rec := newTestService(p)

	resp, err := svc.Categorize(context.Background(), "team tools")
	require.NoError(t, err)
	assert.Equal(t, 40, p.searches[0].NumResults)
	assert.Equal(t, "team tools", resp.Requirement)
	assert.Equal(t, 2, resp.TotalMCPs)

	require.Len(t, resp.Categories, 2)
	assert.Equal(t, recommend.CategoryDatabase, resp.Categories[0].Category)
	assert.Equal(t, 1, resp.Categories[0].Count)
	assert.Equal(t, recommend.CategoryCommunication, resp.Categories[1].Category)

	// Categorize records only its own event
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.events, 1)
	assert.Equal(t, ToolCategorize, rec.events[0].Tool)
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "abcdefg...", clip("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo", clip("héllo", 5))
}
