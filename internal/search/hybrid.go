package search

import (
	"sort"
	"strings"

	"github.com/khanglvm/mcp-scout/internal/recommend"
)

// FusionConfig defines weights for combining confidence and keyword scores.
type FusionConfig struct {
	ConfidenceWeight float64
	KeywordWeight    float64
}

// DefaultFusionConfig keeps confidence dominant (70% confidence, 30% keyword).
var DefaultFusionConfig = FusionConfig{
	ConfidenceWeight: 0.7,
	KeywordWeight:    0.3,
}

// ScoredRecommendation pairs a record with its fused score.
type ScoredRecommendation struct {
	recommend.Recommendation
	KeywordScore float64 `json:"keyword_score"`
	FusedScore   float64 `json:"fused_score"`
}

// Rerank keeps the records matching the keywords and orders them by a
// weighted sum of confidence and normalized BM25 score. Ties keep the
// ranked order. Confidence values themselves are not modified.
func Rerank(recs []recommend.Recommendation, keywords string, config FusionConfig) ([]ScoredRecommendation, error) {
	if strings.TrimSpace(keywords) == "" || len(recs) == 0 {
		out := make([]ScoredRecommendation, 0, len(recs))
		for _, rec := range recs {
			out = append(out, ScoredRecommendation{Recommendation: rec, FusedScore: rec.Confidence})
		}
		return out, nil
	}

	scores, err := keywordScores(recs, keywords)
	if err != nil {
		return nil, err
	}

	matched := make([]SearchResult, 0, len(scores))
	byKey := make(map[string]recommend.Recommendation, len(scores))
	for _, rec := range recs {
		if score, ok := scores[rec.Key()]; ok {
			matched = append(matched, SearchResult{Key: rec.Key(), Name: rec.Name, Score: score})
			byKey[rec.Key()] = rec
		}
	}

	normalized := normalizeScores(matched)
	out := make([]ScoredRecommendation, 0, len(normalized))
	for _, res := range normalized {
		rec := byKey[res.Key]
		out = append(out, ScoredRecommendation{
			Recommendation: rec,
			KeywordScore:   res.Score,
			FusedScore:     config.ConfidenceWeight*rec.Confidence + config.KeywordWeight*res.Score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FusedScore > out[j].FusedScore
	})
	return out, nil
}

// normalizeScores normalizes scores to [0, 1] range.
func normalizeScores(results []SearchResult) []SearchResult {
	if len(results) == 0 {
		return results
	}

	minScore := results[0].Score
	maxScore := results[0].Score
	for _, result := range results {
		if result.Score < minScore {
			minScore = result.Score
		}
		if result.Score > maxScore {
			maxScore = result.Score
		}
	}

	normalized := make([]SearchResult, len(results))
	for i, result := range results {
		normalized[i] = result
		// Avoid division by zero - when all scores are equal, set all to 1.0
		if maxScore == minScore {
			normalized[i].Score = 1.0
			continue
		}
		normalized[i].Score = (result.Score - minScore) / (maxScore - minScore)
	}
	return normalized
}
