package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"

	"github.com/khanglvm/mcp-scout/internal/recommend"
)

// SearchBM25 performs BM25 keyword search using Bleve.
func (i *Indexer) SearchBM25(query string, limit int) ([]SearchResult, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	searchRequest := bleve.NewSearchRequestOptions(i.buildMatchQuery(query), limit, 0, false)
	searchRequest.Fields = []string{"name"}

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}
	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve search results to our SearchResult format.
func convertBleveResults(results *bleve.SearchResult) []SearchResult {
	searchResults := make([]SearchResult, 0, len(results.Hits))
	for _, hit := range results.Hits {
		name, _ := hit.Fields["name"].(string)
		searchResults = append(searchResults, SearchResult{
			Key:   hit.ID,
			Name:  name,
			Score: hit.Score,
		})
	}
	return searchResults
}

// keywordScores indexes recs and returns BM25 scores by record key.
func keywordScores(recs []recommend.Recommendation, keywords string) (map[string]float64, error) {
	indexer, err := NewIndexer()
	if err != nil {
		return nil, err
	}
	defer indexer.Close()

	if err := indexer.IndexRecommendations(recs); err != nil {
		return nil, err
	}

	hits, err := indexer.SearchBM25(keywords, len(recs))
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		scores[h.Key] = h.Score
	}
	return scores, nil
}

// Refine keeps the records matching any of the keywords, preserving their
// ranked order. Blank keywords return recs unchanged.
func Refine(recs []recommend.Recommendation, keywords string) ([]recommend.Recommendation, error) {
	if strings.TrimSpace(keywords) == "" || len(recs) == 0 {
		return recs, nil
	}

	scores, err := keywordScores(recs, keywords)
	if err != nil {
		return nil, err
	}

	out := make([]recommend.Recommendation, 0, len(scores))
	for _, rec := range recs {
		if _, ok := scores[rec.Key()]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
