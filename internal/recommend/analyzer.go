package recommend

import (
	"math"
	"sort"
	"strings"
)

// Analyzer scores and annotates raw hits. An Analyzer is immutable after
// construction and safe for concurrent use.
type Analyzer struct {
	scoring    ScoringConfig
	indicators []termMatcher
	features   []compiledFeature
	docs       []termMatcher
	codeHosts  map[string]bool
}

type compiledFeature struct {
	feature  string
	category Category
	keywords []termMatcher
}

// NewAnalyzer compiles the lexicon and validates the scoring weights.
func NewAnalyzer(scoring ScoringConfig, lex Lexicon) (*Analyzer, error) {
	if err := scoring.Validate(); err != nil {
		return nil, err
	}
	a := &Analyzer{
		scoring:    scoring,
		indicators: compileTerms(lex.Indicators),
		docs:       compileTerms(lex.DocsTerms),
		codeHosts:  make(map[string]bool, len(lex.CodeHosts)),
	}
	for _, h := range lex.CodeHosts {
		a.codeHosts[strings.ToLower(h)] = true
	}
	for _, rule := range lex.Features {
		category := rule.Category
		if _, ok := categoryRank[category]; !ok {
			category = CategoryUncategorized
		}
		a.features = append(a.features, compiledFeature{
			feature:  rule.Feature,
			category: category,
			keywords: compileTerms(rule.Keywords),
		})
	}
	return a, nil
}

var defaultAnalyzer = func() *Analyzer {
	a, err := NewAnalyzer(DefaultScoringConfig, DefaultLexicon)
	if err != nil {
		panic(err)
	}
	return a
}()

// DefaultAnalyzer returns the analyzer built from DefaultScoringConfig and
// DefaultLexicon.
func DefaultAnalyzer() *Analyzer { return defaultAnalyzer }

// Analyze runs the default analyzer over hits.
func Analyze(hits []RawHit, broad bool) []Recommendation {
	return defaultAnalyzer.Analyze(hits, broad)
}

// Scoring returns the weights the analyzer was built with.
func (a *Analyzer) Scoring() ScoringConfig { return a.scoring }

// Analyze turns hits into candidate recommendations in input order. Hits
// without an MCP indicator are dropped unless broad is set, in which case
// they are kept with a confidence penalty.
func (a *Analyzer) Analyze(hits []RawHit, broad bool) []Recommendation {
	out := make([]Recommendation, 0, len(hits))
	for _, hit := range hits {
		rec, ok := a.analyzeHit(hit, broad)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func (a *Analyzer) analyzeHit(hit RawHit, broad bool) (Recommendation, bool) {
	text := strings.ToLower(hit.Title + "\n" + hit.Text)

	indicators := countMatches(a.indicators, text)
	if indicators == 0 && !broad {
		return Recommendation{}, false
	}

	repo := repositoryURL(hit.URL, a.codeHosts)
	credibility := a.credibility(hit, text)

	confidence := a.scoring.ProviderWeight*clamp01(hit.Score) +
		a.scoring.IndicatorWeight*a.indicatorTerm(indicators) +
		a.scoring.CredibilityWeight*credibility
	if indicators == 0 {
		confidence -= a.scoring.BroadModePenalty
	}

	features, categories := a.annotate(text)

	return Recommendation{
		Name:              deriveName(hit.Title, repo, hit.URL),
		Description:       truncateRunes(collapseWhitespace(hit.Text), MaxDescriptionRunes),
		SourceURL:         hit.URL,
		RepositoryURL:     repo,
		Confidence:        clamp01(confidence),
		Features:          features,
		Categories:        categories,
		InstallationNotes: installationNotes(hit.Text),
	}, true
}

func (a *Analyzer) indicatorTerm(count int) float64 {
	if count > a.scoring.IndicatorCap {
		count = a.scoring.IndicatorCap
	}
	return float64(count) / float64(a.scoring.IndicatorCap)
}

// credibility sums the code-host, documentation and popularity bonuses.
func (a *Analyzer) credibility(hit RawHit, text string) float64 {
	var c float64
	if a.codeHosts[hostOf(hit.URL)] {
		c += a.scoring.CodeHostBonus
	}
	if countMatches(a.docs, text) > 0 || countMatches(a.docs, strings.ToLower(hit.URL)) > 0 {
		c += a.scoring.DocsBonus
	}
	if popularityPattern.MatchString(hit.Text) {
		c += a.scoring.PopularityBonus
	}
	return math.Min(c, 1.0)
}

// annotate returns the sorted feature tags found in text and the categories
// they map to in vocabulary order.
func (a *Analyzer) annotate(text string) ([]string, []Category) {
	seenFeature := make(map[string]bool)
	seenCategory := make(map[Category]bool)
	features := []string{}
	for _, f := range a.features {
		if seenFeature[f.feature] || countMatches(f.keywords, text) == 0 {
			continue
		}
		seenFeature[f.feature] = true
		seenCategory[f.category] = true
		features = append(features, f.feature)
	}
	sort.Strings(features)
	return features, categorySet(seenCategory)
}

// categorySet returns the members of set in vocabulary order. Uncategorized
// is kept only when no other category is present.
func categorySet(set map[Category]bool) []Category {
	out := make([]Category, 0, len(set))
	for _, c := range Categories {
		if c != CategoryUncategorized && set[c] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = append(out, CategoryUncategorized)
	}
	return out
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
