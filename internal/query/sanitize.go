package query

import (
	"slices"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// MaxPageSize bounds page sizes requested from outside
const MaxPageSize = 100

// Sanitize makes an externally supplied query safe to run. Nothing is
// rejected: an unknown category becomes All, unknown dimensions and values
// are dropped, and page/size fall back to their defaults. The upper page
// bound depends on the result and is applied by Run.
func Sanitize(q Query, cfg Config, items []catalog.Item) Query {
	out := Query{
		Search:   q.Search,
		Category: All,
		Page:     max(1, q.Page),
		PageSize: q.PageSize,
	}

	if !isAll(q.Category) && slices.Contains(Categories(items, cfg), q.Category) {
		out.Category = q.Category
	}

	if out.PageSize <= 0 {
		out.PageSize = cfg.PageSize
	}
	out.PageSize = min(out.PageSize, MaxPageSize)

	for name, values := range q.Filters {
		d, ok := cfg.Dimension(name)
		if !ok {
			continue
		}
		known := Distinct(items, d.Field)
		var kept []string
		for _, v := range values {
			if slices.Contains(known, v) && !slices.Contains(kept, v) {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			continue
		}
		if out.Filters == nil {
			out.Filters = make(map[string][]string)
		}
		out.Filters[name] = kept
	}

	return out
}
