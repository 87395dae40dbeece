package query

import "github.com/renderinc/catalog-search/internal/catalog"

// Partition splits matches into featured and regular items. Both keep the
// relative order of matches and together hold every match exactly once.
func Partition(matches []catalog.Item) (featured, regular []catalog.Item) {
	featured = make([]catalog.Item, 0)
	regular = make([]catalog.Item, 0, len(matches))
	for _, it := range matches {
		if it.Featured {
			featured = append(featured, it)
		} else {
			regular = append(regular, it)
		}
	}
	return featured, regular
}

// Listing is how matches are grouped on a listing page
type Listing struct {
	// Featured is the highlight strip, at most Config.FeaturedCap items
	Featured []catalog.Item `json:"featured,omitempty"`
	// Items is the main grid: regular items below the strip, or every
	// match when the listing is flat
	Items []catalog.Item `json:"items"`
	Flat  bool           `json:"flat"`
}

// Layout groups matches for display. The featured strip is shown only for
// catalogs with a featured cap, when no category is selected and at least
// one match is featured. Featured items past the cap are not repeated in
// the grid.
func Layout(matches []catalog.Item, cfg Config, category string) Listing {
	if cfg.FeaturedCap <= 0 || !isAll(category) {
		return Listing{Items: matches, Flat: true}
	}

	featured, regular := Partition(matches)
	if len(featured) == 0 {
		return Listing{Items: matches, Flat: true}
	}
	if len(featured) > cfg.FeaturedCap {
		featured = featured[:cfg.FeaturedCap]
	}
	return Listing{Featured: featured, Items: regular}
}
