package recommend

import (
	"sort"
)

// Merge combines two records describing the same project. Scalar fields
// come from the preferred record (higher confidence, then one with a
// repository, then the smaller name, then the smaller source URL); an empty
// description or installation note is filled from the other side; features
// and categories are unioned. Merge is associative and commutative.
func Merge(a, b Recommendation) Recommendation {
	if prefer(b, a) {
		a, b = b, a
	}
	out := a
	if out.Description == "" {
		out.Description = b.Description
	}
	if out.InstallationNotes == "" {
		out.InstallationNotes = b.InstallationNotes
	}
	if out.RepositoryURL == "" {
		out.RepositoryURL = b.RepositoryURL
	}
	out.Features = unionFeatures(a.Features, b.Features)
	out.Categories = unionCategories(a.Categories, b.Categories)
	return out
}

// prefer reports whether a should supply the scalar fields over b.
func prefer(a, b Recommendation) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.HasRepository() != b.HasRepository() {
		return a.HasRepository()
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.SourceURL != b.SourceURL {
		return a.SourceURL < b.SourceURL
	}
	return a.Description < b.Description
}

// Rank collapses records sharing a deduplication key, orders the survivors
// by confidence (repository-backed records first on ties, then by name) and
// returns at most limit of them.
func Rank(records []Recommendation, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		return nil, &ValidationError{Field: "limit", Message: "must be positive"}
	}

	index := make(map[string]int, len(records))
	merged := make([]Recommendation, 0, len(records))
	for _, r := range records {
		key := r.Key()
		if i, ok := index[key]; ok {
			merged[i] = Merge(merged[i], r)
			continue
		}
		index[key] = len(merged)
		merged = append(merged, r)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		if a.HasRepository() != b.HasRepository() {
			return a.HasRepository()
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Key() < b.Key()
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func unionFeatures(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if !set[f] {
				set[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}

func unionCategories(a, b []Category) []Category {
	set := make(map[Category]bool, len(a)+len(b))
	for _, c := range a {
		set[c] = true
	}
	for _, c := range b {
		set[c] = true
	}
	return categorySet(set)
}
