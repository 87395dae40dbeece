package query

import "slices"

// All is the category sentinel meaning "no category constraint"
const All = "All"

// Query is the user-controlled state of a listing page
type Query struct {
	Search   string              `json:"search" schema:"q"`
	Category string              `json:"category" schema:"category"`
	Filters  map[string][]string `json:"filters,omitempty" schema:"-"`
	Page     int                 `json:"page" schema:"page,default:1"`
	PageSize int                 `json:"page_size,omitempty" schema:"size"`
}

// Default returns the query a page starts with
func Default() Query {
	return Query{Category: All, Page: 1}
}

// Clear resets search, category, facet selections and page. The page size
// is a property of the view and is kept.
func (q Query) Clear() Query {
	d := Default()
	d.PageSize = q.PageSize
	return d
}

// IsCleared reports whether no search, category or facet constraint is active
func (q Query) IsCleared() bool {
	if q.Search != "" || !isAll(q.Category) {
		return false
	}
	for _, values := range q.Filters {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Toggle adds value to a facet selection, or removes it when present.
// The receiver is left untouched.
func (q Query) Toggle(dimension, value string) Query {
	next := q
	next.Filters = cloneFilters(q.Filters)

	selected := next.Filters[dimension]
	if i := slices.Index(selected, value); i >= 0 {
		selected = slices.Delete(selected, i, i+1)
	} else {
		selected = append(selected, value)
	}

	if len(selected) == 0 {
		delete(next.Filters, dimension)
	} else {
		next.Filters[dimension] = selected
	}
	return next
}

// Without returns the query with one facet dimension unconstrained
func (q Query) Without(dimension string) Query {
	next := q
	next.Filters = cloneFilters(q.Filters)
	delete(next.Filters, dimension)
	return next
}

// Chip is one active facet selection
type Chip struct {
	Dimension string `json:"dimension"`
	Value     string `json:"value"`
}

// Active lists every selected facet value, dimension by dimension in
// configuration order, values in selection order.
func (q Query) Active(cfg Config) []Chip {
	var chips []Chip
	for _, d := range cfg.Dimensions {
		for _, v := range q.Filters[d.Name] {
			chips = append(chips, Chip{Dimension: d.Name, Value: v})
		}
	}
	return chips
}

func cloneFilters(filters map[string][]string) map[string][]string {
	out := make(map[string][]string, len(filters))
	for k, v := range filters {
		out[k] = slices.Clone(v)
	}
	return out
}

func isAll(category string) bool {
	return category == "" || category == All
}
