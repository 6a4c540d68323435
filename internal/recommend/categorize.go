package recommend

// CategoryGroup is one category with its records in ranked order.
type CategoryGroup struct {
	Category        Category         `json:"category"`
	Recommendations []Recommendation `json:"recommendations"`
}

// GroupByCategory files each record under every category it carries,
// keeping the input order within each group. Records without categories go
// to Uncategorized.
func GroupByCategory(records []Recommendation) map[Category][]Recommendation {
	groups := make(map[Category][]Recommendation)
	for _, r := range records {
		if len(r.Categories) == 0 {
			groups[CategoryUncategorized] = append(groups[CategoryUncategorized], r)
			continue
		}
		for _, c := range r.Categories {
			groups[c] = append(groups[c], r)
		}
	}
	return groups
}

// Groups returns GroupByCategory as a slice in vocabulary order, omitting
// empty categories.
func Groups(records []Recommendation) []CategoryGroup {
	byCategory := GroupByCategory(records)
	out := make([]CategoryGroup, 0, len(byCategory))
	for _, c := range Categories {
		if recs := byCategory[c]; len(recs) > 0 {
			out = append(out, CategoryGroup{Category: c, Recommendations: recs})
		}
	}
	return out
}
