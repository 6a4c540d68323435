package recommend

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ScoringConfig holds the tunable constants of the confidence formula:
//
//	confidence = clamp(0, 1, ProviderWeight*score + IndicatorWeight*indicators + CredibilityWeight*credibility)
//
// The three weights must sum to 1.0.
type ScoringConfig struct {
	ProviderWeight    float64 `json:"providerWeight" mapstructure:"providerWeight"`
	IndicatorWeight   float64 `json:"indicatorWeight" mapstructure:"indicatorWeight"`
	CredibilityWeight float64 `json:"credibilityWeight" mapstructure:"credibilityWeight"`

	// IndicatorCap is the indicator match count at which the indicator
	// term saturates to 1.0.
	IndicatorCap int `json:"indicatorCap" mapstructure:"indicatorCap"`

	// Credibility components, summed and capped at 1.0.
	CodeHostBonus   float64 `json:"codeHostBonus" mapstructure:"codeHostBonus"`
	DocsBonus       float64 `json:"docsBonus" mapstructure:"docsBonus"`
	PopularityBonus float64 `json:"popularityBonus" mapstructure:"popularityBonus"`

	// BroadModePenalty is subtracted from hits kept in broad mode
	// without any indicator match.
	BroadModePenalty float64 `json:"broadModePenalty" mapstructure:"broadModePenalty"`
}

// DefaultScoringConfig lets provider relevance dominate, keyword presence
// confirm the domain, and credibility break ties.
var DefaultScoringConfig = ScoringConfig{
	ProviderWeight:    0.55,
	IndicatorWeight:   0.30,
	CredibilityWeight: 0.15,
	IndicatorCap:      3,
	CodeHostBonus:     0.6,
	DocsBonus:         0.2,
	PopularityBonus:   0.2,
	BroadModePenalty:  0.15,
}

// Validate checks that the weights are usable.
func (c ScoringConfig) Validate() error {
	for name, w := range map[string]float64{
		"provider weight":    c.ProviderWeight,
		"indicator weight":   c.IndicatorWeight,
		"credibility weight": c.CredibilityWeight,
	} {
		if w < 0 || w > 1 {
			return &ValidationError{Field: "scoring", Message: fmt.Sprintf("%s %.3f outside [0, 1]", name, w)}
		}
	}
	sum := c.ProviderWeight + c.IndicatorWeight + c.CredibilityWeight
	if math.Abs(sum-1.0) > 0.001 {
		return &ValidationError{Field: "scoring", Message: fmt.Sprintf("weights sum to %.3f, want 1.0", sum)}
	}
	if c.IndicatorCap <= 0 {
		return &ValidationError{Field: "scoring", Message: "indicator cap must be positive"}
	}
	if c.BroadModePenalty < 0 {
		return &ValidationError{Field: "scoring", Message: "broad mode penalty must not be negative"}
	}
	return nil
}

// FeatureRule maps capability keywords to a feature tag and the single
// category that feature belongs to.
type FeatureRule struct {
	Feature  string
	Category Category
	Keywords []string
}

// Lexicon is the static vocabulary the analyzer matches against.
type Lexicon struct {
	// Indicators identify text that talks about MCP servers.
	Indicators []string

	// Features map capability keywords to feature tags.
	Features []FeatureRule

	// CodeHosts are hosts whose URLs resolve to repositories.
	CodeHosts []string

	// DocsTerms signal documentation completeness.
	DocsTerms []string
}

// DefaultLexicon is the built-in vocabulary.
var DefaultLexicon = Lexicon{
	Indicators: []string{
		"model context protocol",
		"context protocol",
		"mcp server",
		"mcp-server",
		"mcp servers",
		"fastmcp",
		"mcp tool",
		"mcp client",
		"anthropic mcp",
		"claude desktop",
		"claude tool",
		"cursor mcp",
		"modelcontextprotocol",
		"llm tool",
		"ai assistant tool",
	},
	Features: []FeatureRule{
		{Feature: "database-access", Category: CategoryDatabase, Keywords: []string{
			"sql", "sqlite", "postgres", "postgresql", "mysql", "mariadb", "mongodb", "redis", "database", "supabase", "duckdb",
		}},
		{Feature: "cloud-storage", Category: CategoryDatabase, Keywords: []string{
			"s3", "object storage", "google drive", "dropbox", "blob storage",
		}},
		{Feature: "web-scraping", Category: CategoryWeb, Keywords: []string{
			"scrape", "scraper", "scraping", "crawl", "crawler", "crawling", "web data", "selenium",
		}},
		{Feature: "browser-automation", Category: CategoryWeb, Keywords: []string{
			"browser automation", "headless browser", "puppeteer", "playwright",
		}},
		{Feature: "api-integration", Category: CategoryWeb, Keywords: []string{
			"rest api", "graphql", "webhook", "webhooks", "openapi", "http api",
		}},
		{Feature: "web-search", Category: CategoryWeb, Keywords: []string{
			"web search", "search engine", "brave search", "exa search",
		}},
		{Feature: "file-system", Category: CategoryFileSystem, Keywords: []string{
			"file system", "filesystem", "directories", "file management", "local files",
		}},
		{Feature: "document-processing", Category: CategoryFileSystem, Keywords: []string{
			"pdf", "docx", "markdown", "csv", "spreadsheet", "excel",
		}},
		{Feature: "communication", Category: CategoryCommunication, Keywords: []string{
			"slack", "discord", "telegram", "microsoft teams", "whatsapp",
		}},
		{Feature: "email", Category: CategoryCommunication, Keywords: []string{
			"email", "gmail", "smtp", "outlook",
		}},
		{Feature: "version-control", Category: CategoryDevTools, Keywords: []string{
			"git", "pull request", "pull requests", "commits", "repository management",
		}},
		{Feature: "ci-cd", Category: CategoryDevTools, Keywords: []string{
			"ci/cd", "deployment", "docker", "kubernetes", "terraform",
		}},
		{Feature: "code-analysis", Category: CategoryDevTools, Keywords: []string{
			"code analysis", "static analysis", "linter", "code review", "testing",
		}},
		{Feature: "llm-integration", Category: CategoryAI, Keywords: []string{
			"llm", "openai", "machine learning", "hugging face", "huggingface", "ollama",
		}},
		{Feature: "knowledge-memory", Category: CategoryAI, Keywords: []string{
			"knowledge graph", "memory", "rag", "vector database", "embeddings",
		}},
		{Feature: "utilities", Category: CategoryUtilities, Keywords: []string{
			"weather", "time zone", "timezone", "calculator", "converter", "utility",
		}},
	},
	CodeHosts: []string{"github.com", "gitlab.com", "bitbucket.org", "codeberg.org"},
	DocsTerms: []string{
		"readme", "install", "installation", "usage", "documentation", "getting started", "quickstart", "docs",
	},
}

// termMatcher reports whether a lowercased text contains a term on word
// boundaries.
type termMatcher struct {
	term    string
	pattern *regexp.Regexp
}

func compileTerms(terms []string) []termMatcher {
	matchers := make([]termMatcher, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		matchers = append(matchers, termMatcher{
			term:    t,
			pattern: regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(t) + `(?:$|[^a-z0-9])`),
		})
	}
	return matchers
}

// countMatches returns how many distinct terms occur in text.
func countMatches(matchers []termMatcher, text string) int {
	n := 0
	for _, m := range matchers {
		if m.pattern.MatchString(text) {
			n++
		}
	}
	return n
}

var (
	// popularityPattern finds star or fork counts such as "120 stars",
	// "1.2k forks", "★ 340" or "stars: 87".
	popularityPattern = regexp.MustCompile(`(?i)(?:\b\d[\d,.]*\s*k?\s*(?:stars?|forks?|stargazers)\b|[★⭐]\s*\d|\b(?:stars?|forks?)\s*[:=]\s*\d)`)

	// installPattern finds the first install command in a snippet.
	installPattern = regexp.MustCompile(`(?i)\b(?:npx\s+(?:-y\s+)?[@\w./-]+|npm\s+(?:install|i)\s+(?:-g\s+)?[@\w./-]+|pip3?\s+install\s+[\w.\[\]-]+|uvx\s+[\w.-]+|go\s+install\s+[\w./@-]+|cargo\s+install\s+[\w-]+|brew\s+install\s+[\w/@.-]+|docker\s+(?:run|pull)\s+(?:-[-\w]+\s+)*[\w./:-]+|claude\s+mcp\s+add\s+[\w.@/-]+)`)
)
