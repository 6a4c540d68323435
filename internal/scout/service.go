/*
Package scout orchestrates MCP server discovery.

A Service sends queries to the search provider, feeds the hits through the
recommendation engine and shapes the result for the tool and CLI layers.
Every call is timed, counted and recorded in search history.
*/
package scout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/mcp-scout/internal/config"
	"github.com/khanglvm/mcp-scout/internal/exa"
	"github.com/khanglvm/mcp-scout/internal/metrics"
	"github.com/khanglvm/mcp-scout/internal/recommend"
	"github.com/khanglvm/mcp-scout/internal/search"
	"github.com/khanglvm/mcp-scout/internal/storage"
	"github.com/khanglvm/mcp-scout/internal/tracking"
)

// Tool names, shared by the MCP server, metrics and search history.
const (
	ToolSearch     = "search_mcps"
	ToolDetails    = "get_mcp_details"
	ToolSimilar    = "find_similar_mcps"
	ToolAsk        = "ask_mcp_question"
	ToolCategorize = "categorize_mcps"
)

const (
	// maxProviderResults caps a single provider request.
	maxProviderResults = 100

	detailsSiteResults    = 5
	detailsSimilarResults = 3
	installationInfoRunes = 500
	relatedMCPs           = 5
)

// GitHubDomains restricts a GitHub-only search.
var GitHubDomains = []string{"github.com", "docs.anthropic.com", "modelcontextprotocol.io"}

// Provider is the search backend.
type Provider interface {
	Search(ctx context.Context, req exa.SearchRequest) ([]recommend.RawHit, error)
	FindSimilar(ctx context.Context, url string, numResults int) ([]recommend.RawHit, error)
	Answer(ctx context.Context, query string) (*exa.Answer, error)
}

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	Analyzer *recommend.Analyzer
	Recorder tracking.Recorder
	Logger   *zap.Logger
	Limits   config.SearchSettings
}

// Service runs discovery operations.
type Service struct {
	provider Provider
	analyzer *recommend.Analyzer
	recorder tracking.Recorder
	logger   *zap.Logger
	limits   config.SearchSettings
}

// NewService creates a discovery service on top of provider.
func NewService(provider Provider, opts Options) *Service {
	s := &Service{
		provider: provider,
		analyzer: opts.Analyzer,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		limits:   opts.Limits,
	}
	if s.analyzer == nil {
		s.analyzer = recommend.DefaultAnalyzer()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	defaults := config.NewConfig().Search
	if s.limits.DefaultMaxResults <= 0 {
		s.limits.DefaultMaxResults = defaults.DefaultMaxResults
	}
	if s.limits.MaxResultsLimit <= 0 {
		s.limits.MaxResultsLimit = defaults.MaxResultsLimit
	}
	if s.limits.CategorizeMaxResults <= 0 {
		s.limits.CategorizeMaxResults = defaults.CategorizeMaxResults
	}
	return s
}

// SearchOptions are the inputs of Search.
type SearchOptions struct {
	// Requirement describes the capability the user needs.
	Requirement string

	// MaxResults bounds the result list. Zero selects the configured default.
	MaxResults int

	// GitHubOnly restricts results to GitHub and the MCP documentation sites.
	GitHubOnly bool

	// Broad keeps hits without MCP indicators at a confidence penalty.
	Broad bool

	// Keywords narrows the ranked list to records matching any keyword.
	Keywords string

	// Rerank orders the keyword matches by fused confidence and BM25
	// relevance instead of confidence alone. It needs Keywords.
	Rerank bool
}

// Search finds MCP servers matching a requirement.
func (s *Service) Search(ctx context.Context, opts SearchOptions) (resp *SearchResponse, err error) {
	start := time.Now()
	defer func() { s.observe(ToolSearch, opts.Requirement, start, countOf(resp), err) }()

	return s.search(ctx, ToolSearch, opts)
}

func (s *Service) search(ctx context.Context, tool string, opts SearchOptions) (*SearchResponse, error) {
	requirement := strings.TrimSpace(opts.Requirement)
	if requirement == "" {
		return nil, &recommend.ValidationError{Field: "requirement", Message: "must not be empty"}
	}
	limit := s.clampMax(opts.MaxResults)

	query := fmt.Sprintf("MCP server %s Model Context Protocol", requirement)
	req := exa.SearchRequest{Query: query, NumResults: min(limit*2, maxProviderResults)}
	if opts.GitHubOnly {
		req.Query += " site:github.com"
		req.IncludeDomains = GitHubDomains
	}

	resp := &SearchResponse{
		Query:           requirement,
		SearchQueryUsed: req.Query,
		Filter:          strings.TrimSpace(opts.Keywords),
		Recommendations: []recommend.Recommendation{},
	}

	hits, err := s.provider.Search(ctx, req)
	if err != nil {
		if msg, ok := emptyMessage(err); ok {
			resp.Message = msg
			return resp, nil
		}
		return nil, fmt.Errorf("search for %q failed: %w", requirement, err)
	}
	s.logger.Debug("provider returned hits", zap.String("tool", tool), zap.Int("hits", len(hits)))

	// Keyword selection runs over every candidate, then the limit applies.
	pool := limit
	if resp.Filter != "" {
		pool = max(len(hits), limit)
	}
	ranked, err := recommend.Rank(s.analyzer.Analyze(hits, opts.Broad), pool)
	if err != nil {
		return nil, err
	}
	switch {
	case resp.Filter != "" && opts.Rerank:
		scored, err := search.Rerank(ranked, resp.Filter, search.DefaultFusionConfig)
		if err != nil {
			return nil, fmt.Errorf("keyword rerank failed: %w", err)
		}
		resp.Scores = scored[:min(len(scored), limit)]
		ranked = make([]recommend.Recommendation, len(resp.Scores))
		for i, sr := range resp.Scores {
			ranked[i] = sr.Recommendation
		}
	case resp.Filter != "":
		if ranked, err = search.Refine(ranked, resp.Filter); err != nil {
			return nil, fmt.Errorf("keyword filter failed: %w", err)
		}
		ranked = ranked[:min(len(ranked), limit)]
	}

	resp.Recommendations = ranked
	resp.TotalFound = len(ranked)
	if len(ranked) == 0 {
		resp.Message = "No MCP servers matched. Try a broader requirement or enable broad mode."
	}
	return resp, nil
}

// Details gathers information about one MCP server. The site search and
// the similarity lookup run concurrently; a failed similarity lookup is
// reported in the response rather than failing the call.
func (s *Service) Details(ctx context.Context, rawURL string) (resp *DetailsResponse, err error) {
	start := time.Now()
	defer func() { s.observe(ToolDetails, rawURL, start, detailsCount(resp), err) }()

	target, err := parseHTTPURL(rawURL)
	if err != nil {
		return nil, err
	}
	resp = &DetailsResponse{URL: rawURL, SimilarMCPs: []recommend.Recommendation{}}

	var siteHits, similarHits []recommend.RawHit
	var similarErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		query := fmt.Sprintf("site:%s %s MCP server documentation setup", target.Host, rawURL)
		hits, err := s.provider.Search(gctx, exa.SearchRequest{Query: query, NumResults: detailsSiteResults})
		if err != nil {
			var empty *exa.EmptyResultError
			if errors.As(err, &empty) {
				return nil
			}
			return err
		}
		siteHits = hits
		return nil
	})
	g.Go(func() error {
		hits, err := s.provider.FindSimilar(gctx, rawURL, detailsSimilarResults*2)
		if err != nil {
			var empty *exa.EmptyResultError
			if !errors.As(err, &empty) {
				similarErr = err
			}
			return nil
		}
		similarHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("details for %s failed: %w", rawURL, err)
	}

	if similarErr != nil {
		s.logger.Warn("similar lookup failed", zap.String("url", rawURL), zap.Error(similarErr))
		resp.SimilarError = similarErr.Error()
	}

	if len(siteHits) == 0 {
		resp.Message = "No documentation found for this URL."
	} else {
		resp.InstallationInfo = clip(collapse(siteHits[0].Text), installationInfoRunes)
		if rec := s.mainRecord(siteHits, rawURL); rec != nil {
			resp.Details = rec
		}
	}

	if len(similarHits) > 0 {
		similar, err := recommend.Rank(s.analyzer.Analyze(similarHits, false), detailsSimilarResults+1)
		if err != nil {
			return nil, err
		}
		resp.SimilarMCPs = excludeKey(similar, s.referenceKey(rawURL), detailsSimilarResults)
	}
	return resp, nil
}

// mainRecord picks the record describing target, falling back to the best
// ranked record.
func (s *Service) mainRecord(hits []recommend.RawHit, target string) *recommend.Recommendation {
	ranked, err := recommend.Rank(s.analyzer.Analyze(hits, true), len(hits))
	if err != nil || len(ranked) == 0 {
		return nil
	}
	key := s.referenceKey(target)
	for i := range ranked {
		if ranked[i].Key() == key {
			return &ranked[i]
		}
	}
	return &ranked[0]
}

// Similar finds MCP servers similar to a reference URL.
func (s *Service) Similar(ctx context.Context, rawURL string, maxResults int) (resp *SimilarResponse, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if resp != nil {
			n = len(resp.SimilarMCPs)
		}
		s.observe(ToolSimilar, rawURL, start, n, err)
	}()

	if _, err := parseHTTPURL(rawURL); err != nil {
		return nil, err
	}
	limit := s.clampMax(maxResults)
	resp = &SimilarResponse{ReferenceURL: rawURL, SimilarMCPs: []recommend.Recommendation{}}

	hits, err := s.provider.FindSimilar(ctx, rawURL, min(limit*2, maxProviderResults))
	if err != nil {
		if msg, ok := emptyMessage(err); ok {
			resp.Message = msg
			return resp, nil
		}
		return nil, fmt.Errorf("similar search for %s failed: %w", rawURL, err)
	}

	ranked, err := recommend.Rank(s.analyzer.Analyze(hits, false), limit+1)
	if err != nil {
		return nil, err
	}
	resp.SimilarMCPs = excludeKey(ranked, s.referenceKey(rawURL), limit)
	if len(resp.SimilarMCPs) == 0 {
		resp.Message = "No similar MCP servers found."
	}
	return resp, nil
}

// Ask answers a question about MCP servers with citations.
func (s *Service) Ask(ctx context.Context, question string) (resp *AnswerResponse, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if resp != nil {
			n = len(resp.RelatedMCPs)
		}
		s.observe(ToolAsk, question, start, n, err)
	}()

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &recommend.ValidationError{Field: "question", Message: "must not be empty"}
	}
	resp = &AnswerResponse{
		Question:    question,
		Sources:     []exa.Citation{},
		RelatedMCPs: []recommend.Recommendation{},
	}

	answer, err := s.provider.Answer(ctx, "Model Context Protocol MCP "+question)
	if err != nil {
		var empty *exa.EmptyResultError
		if errors.As(err, &empty) {
			resp.Answer = "No answer available"
			return resp, nil
		}
		return nil, fmt.Errorf("answer for %q failed: %w", question, err)
	}

	resp.Answer = answer.Text
	if len(answer.Citations) > 0 {
		resp.Sources = answer.Citations
	}
	if related, err := recommend.Rank(s.analyzer.Analyze(answer.Hits, true), relatedMCPs); err == nil {
		resp.RelatedMCPs = related
	}
	return resp, nil
}

// Categorize searches for a requirement and groups the results by category.
func (s *Service) Categorize(ctx context.Context, requirement string) (resp *CategorizeResponse, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if resp != nil {
			n = resp.TotalMCPs
		}
		s.observe(ToolCategorize, requirement, start, n, err)
	}()

	found, err := s.search(ctx, ToolCategorize, SearchOptions{
		Requirement: requirement,
		MaxResults:  s.limits.CategorizeMaxResults,
	})
	if err != nil {
		return nil, err
	}

	resp = &CategorizeResponse{
		Requirement: found.Query,
		TotalMCPs:   found.TotalFound,
		Categories:  []CategoryView{},
		Message:     found.Message,
	}
	for _, g := range recommend.Groups(found.Recommendations) {
		resp.Categories = append(resp.Categories, CategoryView{
			Category: g.Category,
			Count:    len(g.Recommendations),
			MCPs:     g.Recommendations,
		})
	}
	return resp, nil
}

// clampMax applies the configured default and upper bound.
func (s *Service) clampMax(n int) int {
	if n <= 0 {
		return s.limits.DefaultMaxResults
	}
	if n > s.limits.MaxResultsLimit {
		return s.limits.MaxResultsLimit
	}
	return n
}

// observe records metrics, a log line and a history event for one call.
func (s *Service) observe(tool, query string, start time.Time, results int, err error) {
	elapsed := time.Since(start)

	outcome := storage.OutcomeSuccess
	switch {
	case err != nil:
		outcome = storage.OutcomeError
	case results == 0:
		outcome = storage.OutcomeEmpty
	}

	metrics.ToolCalls.WithLabelValues(tool, outcome).Inc()
	metrics.ToolDuration.WithLabelValues(tool).Observe(elapsed.Seconds())
	if err == nil {
		metrics.RecommendationsReturned.WithLabelValues(tool).Observe(float64(results))
	}

	fields := []zap.Field{
		zap.String("tool", tool),
		zap.Int("results", results),
		zap.Duration("duration", elapsed),
	}
	if err != nil {
		s.logger.Warn("discovery call failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("discovery call completed", fields...)
	}

	if s.recorder != nil {
		s.recorder.Track(tracking.NewSearchEvent(tool, query, results, elapsed, outcome))
	}
}

func countOf(resp *SearchResponse) int {
	if resp == nil {
		return 0
	}
	return resp.TotalFound
}

func detailsCount(resp *DetailsResponse) int {
	if resp == nil {
		return 0
	}
	n := len(resp.SimilarMCPs)
	if resp.Details != nil {
		n++
	}
	return n
}

// emptyMessage turns an empty provider result into a user-facing message.
func emptyMessage(err error) (string, bool) {
	var empty *exa.EmptyResultError
	if errors.As(err, &empty) {
		return "The search provider returned no results.", true
	}
	return "", false
}

func parseHTTPURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, &recommend.ValidationError{Field: "url", Message: fmt.Sprintf("%q is not an http(s) URL", raw)}
	}
	return u, nil
}

// referenceKey is the deduplication key a record built from raw would have.
func (s *Service) referenceKey(raw string) string {
	rec := s.analyzer.Analyze([]recommend.RawHit{{URL: raw}}, true)
	if len(rec) == 0 {
		return recommend.CanonicalURL(raw)
	}
	return rec[0].Key()
}

// excludeKey drops the record with key and truncates to limit.
func excludeKey(recs []recommend.Recommendation, key string, limit int) []recommend.Recommendation {
	out := make([]recommend.Recommendation, 0, len(recs))
	for _, r := range recs {
		if r.Key() == key {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// clip shortens s to at most n runes, marking the cut with "...".
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}
