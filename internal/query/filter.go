package query

import (
	"slices"
	"strings"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Filter returns the items matching every active predicate of q, in their
// original order. The input slice is never modified.
func Filter(items []catalog.Item, cfg Config, q Query) []catalog.Item {
	term := normalizeTerm(q.Search)
	fields := cfg.searchFields()

	matches := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if !matchesSearch(it, fields, term) {
			continue
		}
		if !matchesCategory(it, q.Category) {
			continue
		}
		if !matchesFilters(it, cfg.Dimensions, q.Filters) {
			continue
		}
		matches = append(matches, it)
	}
	return matches
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// matchesSearch expects an already normalized term
func matchesSearch(it catalog.Item, fields []catalog.Field, term string) bool {
	if term == "" {
		return true
	}
	for _, f := range fields {
		for _, v := range it.Values(f) {
			if strings.Contains(strings.ToLower(v), term) {
				return true
			}
		}
	}
	return false
}

// Categories come from a closed list, so the comparison is exact
func matchesCategory(it catalog.Item, category string) bool {
	return isAll(category) || it.Category == category
}

func matchesFilters(it catalog.Item, dims []Dimension, filters map[string][]string) bool {
	for _, d := range dims {
		selected := filters[d.Name]
		if len(selected) == 0 {
			continue
		}
		if !slices.ContainsFunc(it.Values(d.Field), func(v string) bool {
			return slices.Contains(selected, v)
		}) {
			return false
		}
	}
	return true
}
