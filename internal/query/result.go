package query

import (
	"fmt"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Result is everything a listing page renders for one query
type Result struct {
	Catalog   string         `json:"catalog"`
	Query     Query          `json:"query"`
	Total     int            `json:"total"`
	NoResults bool           `json:"no_results"`
	Featured  []catalog.Item `json:"featured,omitempty"`
	Flat      bool           `json:"flat"`
	Page      Page           `json:"page"`
}

// Run filters, lays out and paginates items. The grid (regular items, or
// every match for flat listings) is what gets paginated. The page number
// is clamped to the available pages; the effective page and page size are
// reported in Result.Query.
func Run(items []catalog.Item, cfg Config, q Query) Result {
	matches := Filter(items, cfg, q)
	listing := Layout(matches, cfg, q.Category)

	size := q.PageSize
	if size <= 0 {
		size = cfg.PageSize
	}
	q.PageSize = size
	q.Page = ClampPage(q.Page, TotalPages(len(listing.Items), size))

	return Result{
		Catalog:   cfg.Name,
		Query:     q,
		Total:     len(matches),
		NoResults: len(matches) == 0,
		Featured:  listing.Featured,
		Flat:      listing.Flat,
		Page:      Paginate(listing.Items, q.Page, size),
	}
}

// Summary renders the result count line, e.g. "3 courses found"
func (r Result) Summary(noun string) string {
	if r.Total == 1 {
		return fmt.Sprintf("1 %s found", noun)
	}
	return fmt.Sprintf("%d %ss found", r.Total, noun)
}
