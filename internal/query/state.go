package query

import "github.com/renderinc/catalog-search/internal/catalog"

// State is the local query state of one listing page. Every transition
// recomputes against the full item list; nothing is cached between calls.
//
// Changing the category returns to page 1. Other changes keep the current
// page when it still exists and otherwise move to the last available page.
type State struct {
	cfg   Config
	items []catalog.Item
	q     Query
}

// NewState starts a page in its default state
func NewState(cfg Config, items []catalog.Item) *State {
	q := Default()
	q.PageSize = cfg.PageSize
	return &State{cfg: cfg, items: items, q: q}
}

// Query returns the current query
func (s *State) Query() Query {
	return s.q
}

// Result computes the current view
func (s *State) Result() Result {
	return Run(s.items, s.cfg, s.q)
}

func (s *State) SetSearch(term string) {
	s.q.Search = term
	s.clamp()
}

func (s *State) SetCategory(category string) {
	s.q.Category = category
	s.q.Page = 1
}

func (s *State) ToggleFilter(dimension, value string) {
	s.q = s.q.Toggle(dimension, value)
	s.clamp()
}

// GoTo moves to page, bounded by the available pages
func (s *State) GoTo(page int) {
	s.q.Page = page
	s.clamp()
}

func (s *State) Next() { s.GoTo(s.q.Page + 1) }

func (s *State) Prev() { s.GoTo(s.q.Page - 1) }

// Clear is the no-results affordance: every constraint back to default
func (s *State) Clear() {
	s.q = s.q.Clear()
}

func (s *State) clamp() {
	s.q.Page = s.Result().Query.Page
}
