/*
Package search narrows a ranked recommendation list by keyword.

Each call builds an in-memory Bleve index over the records it was given,
runs a BM25 match query and discards the index. Nothing is persisted.
*/
package search

// SearchResult is a keyword hit against an indexed recommendation.
type SearchResult struct {
	// Key is the recommendation's deduplication key.
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}
