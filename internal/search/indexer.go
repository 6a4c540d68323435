package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/khanglvm/mcp-scout/internal/recommend"
)

// Indexer holds an in-memory index of recommendations.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
}

// NewIndexer creates an empty in-memory index.
func NewIndexer() (*Indexer, error) {
	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Indexer{bleveIndex: index}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	recMapping := bleve.NewDocumentMapping()

	for _, field := range []string{"name", "description", "features", "categories", "installation"} {
		recMapping.AddFieldMappingsAt(field, bleve.NewTextFieldMapping())
	}

	// URL: stored for retrieval, not searched
	urlMapping := bleve.NewTextFieldMapping()
	urlMapping.Index = false
	urlMapping.IncludeInAll = false
	recMapping.AddFieldMappingsAt("url", urlMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", recMapping)
	return indexMapping
}

// IndexRecommendations adds records keyed by their deduplication key.
func (i *Indexer) IndexRecommendations(recs []recommend.Recommendation) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()
	for _, rec := range recs {
		categories := make([]string, 0, len(rec.Categories))
		for _, c := range rec.Categories {
			categories = append(categories, string(c))
		}
		doc := map[string]interface{}{
			"name":         rec.Name,
			"description":  rec.Description,
			"features":     strings.ReplaceAll(strings.Join(rec.Features, " "), "-", " "),
			"categories":   strings.Join(categories, " "),
			"installation": rec.InstallationNotes,
			"url":          rec.SourceURL,
		}
		if err := batch.Index(rec.Key(), doc); err != nil {
			return fmt.Errorf("failed to index %s: %w", rec.Key(), err)
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index recommendations: %w", err)
	}
	return nil
}

// Count returns the number of indexed records.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}
	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}
	return nil
}

// buildMatchQuery matches any of the keywords across all indexed fields.
func (i *Indexer) buildMatchQuery(searchText string) query.Query {
	return bleve.NewMatchQuery(searchText)
}
