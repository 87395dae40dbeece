package query

import (
	"slices"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Option is one selectable value of a facet
type Option struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
}

// Facet is the option list of one dimension
type Facet struct {
	Name    string   `json:"name"`
	Options []Option `json:"options"`
}

// FacetSet holds everything a filter panel renders
type FacetSet struct {
	Categories []string `json:"categories"`
	Facets     []Facet  `json:"facets"`
	Active     []Chip   `json:"active"`
}

// Distinct returns the distinct values of a field in first-seen order
func Distinct(items []catalog.Item, f catalog.Field) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, it := range items {
		for _, v := range it.Values(f) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			values = append(values, v)
		}
	}
	return values
}

// Categories returns the category buttons of a catalog, All first
func Categories(items []catalog.Item, cfg Config) []string {
	known := cfg.Categories
	if len(known) == 0 {
		known = Distinct(items, catalog.FieldCategory)
	}
	return append([]string{All}, known...)
}

// Facets builds the option lists for every dimension. An option's count is
// the number of items it would match given every other active constraint,
// so selecting values within a dimension never zeroes its siblings.
func Facets(items []catalog.Item, cfg Config, q Query) FacetSet {
	set := FacetSet{
		Categories: Categories(items, cfg),
		Facets:     make([]Facet, 0, len(cfg.Dimensions)),
		Active:     q.Active(cfg),
	}

	for _, d := range cfg.Dimensions {
		base := Filter(items, cfg, q.Without(d.Name))
		counts := make(map[string]int)
		for _, it := range base {
			for _, v := range it.Values(d.Field) {
				counts[v]++
			}
		}

		selected := q.Filters[d.Name]
		facet := Facet{Name: d.Name}
		for _, v := range Distinct(items, d.Field) {
			facet.Options = append(facet.Options, Option{
				Value:    v,
				Count:    counts[v],
				Selected: slices.Contains(selected, v),
			})
		}
		set.Facets = append(set.Facets, facet)
	}
	return set
}
