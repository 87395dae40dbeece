package query

import (
	"slices"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Page is one slice of a result set plus the navigation state around it
type Page struct {
	Items      []catalog.Item `json:"items"`
	Number     int            `json:"page"`
	Size       int            `json:"page_size"`
	Total      int            `json:"total"`
	TotalPages int            `json:"total_pages"`
	// Pages lists every page number 1..TotalPages, without windowing
	Pages   []int `json:"pages"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
	// Paginated is false when everything fits on one page and the page
	// navigation is hidden
	Paginated bool `json:"paginated"`
}

// TotalPages returns ceil(total/pageSize). A non-positive page size puts
// everything on a single page.
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	if pageSize <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage bounds page to [1, max(1, totalPages)]
func ClampPage(page, totalPages int) int {
	return max(1, min(page, max(1, totalPages)))
}

// Paginate returns the 1-indexed page of matches. Pages outside
// [1, TotalPages] are empty rather than an error, and the page number is
// not adjusted.
func Paginate(matches []catalog.Item, page, pageSize int) Page {
	total := len(matches)
	size := pageSize
	if size <= 0 {
		size = total
	}
	totalPages := TotalPages(total, pageSize)

	p := Page{
		Items:      []catalog.Item{},
		Number:     page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Pages:      make([]int, totalPages),
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Paginated:  total > size,
	}
	for i := range p.Pages {
		p.Pages[i] = i + 1
	}

	if page < 1 || page > totalPages {
		return p
	}
	start := (page - 1) * size
	end := min(start+size, total)
	p.Items = slices.Clone(matches[start:end])
	return p
}
