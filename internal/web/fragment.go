package web

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
)

// handleResultsFragment renders a query result as an HTML fragment for the
// index page
func (s *Server) handleResultsFragment(w http.ResponseWriter, r *http.Request) {
	cfg, res, ok := s.runQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html")

	if res.NoResults {
		fmt.Fprintf(w, `<div class="no-results">
			<p>No %ss found</p>
			<a href="?" class="clear-filters">Clear filters</a>
		</div>`, Noun(cfg.Name))
		return
	}

	fmt.Fprintf(w, `<div class="results-header"><p>%s</p></div>`,
		template.HTMLEscapeString(Summarize(cfg, res)))

	if len(res.Featured) > 0 {
		fmt.Fprint(w, `<section class="featured">`)
		for _, it := range res.Featured {
			writeCard(w, it, "featured-card")
		}
		fmt.Fprint(w, `</section>`)
	}

	fmt.Fprint(w, `<section class="grid">`)
	for _, it := range res.Page.Items {
		writeCard(w, it, "result-card")
	}
	fmt.Fprint(w, `</section>`)

	if res.Page.Paginated {
		writePager(w, res.Page, EncodeQuery(res.Query, cfg))
	}
}

func writeCard(w http.ResponseWriter, it catalog.Item, class string) {
	fmt.Fprintf(w, `<div class="%s">
		<h3>%s</h3>`, class, template.HTMLEscapeString(it.Title))

	var meta []string
	for _, v := range []string{it.Provider, it.Category, it.Level} {
		if v != "" {
			meta = append(meta, template.HTMLEscapeString(v))
		}
	}
	if len(meta) > 0 {
		fmt.Fprintf(w, `<p class="result-meta">%s</p>`, strings.Join(meta, " · "))
	}
	if it.Description != "" {
		fmt.Fprintf(w, `<p class="result-preview">%s</p>`, template.HTMLEscapeString(it.Description))
	}
	if len(it.Tags) > 0 {
		fmt.Fprint(w, `<ul class="tags">`)
		for _, tag := range it.Tags {
			fmt.Fprintf(w, `<li>%s</li>`, template.HTMLEscapeString(tag))
		}
		fmt.Fprint(w, `</ul>`)
	}
	fmt.Fprint(w, `</div>`)
}

func writePager(w http.ResponseWriter, p query.Page, values url.Values) {
	link := func(page int) string {
		v := make(url.Values, len(values)+1)
		for k, vs := range values {
			v[k] = vs
		}
		v.Set("page", fmt.Sprint(page))
		return "?" + v.Encode()
	}

	fmt.Fprint(w, `<nav class="pager">`)
	if p.HasPrev {
		fmt.Fprintf(w, `<a href="%s" class="prev">Previous</a>`, template.HTMLEscapeString(link(p.Number-1)))
	} else {
		fmt.Fprint(w, `<span class="prev disabled">Previous</span>`)
	}
	for _, n := range p.Pages {
		if n == p.Number {
			fmt.Fprintf(w, `<span class="page current">%d</span>`, n)
			continue
		}
		fmt.Fprintf(w, `<a href="%s" class="page">%d</a>`, template.HTMLEscapeString(link(n)), n)
	}
	if p.HasNext {
		fmt.Fprintf(w, `<a href="%s" class="next">Next</a>`, template.HTMLEscapeString(link(p.Number+1)))
	} else {
		fmt.Fprint(w, `<span class="next disabled">Next</span>`)
	}
	fmt.Fprint(w, `</nav>`)
}
