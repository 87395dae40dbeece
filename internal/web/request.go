package web

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

// DecodeQuery reads q, category, page and size plus one key per facet
// dimension. A facet key may repeat or carry values joined by "||".
// Keys that fail to convert fall back to their defaults. The result still
// needs query.Sanitize.
func DecodeQuery(values url.Values, cfg query.Config) (query.Query, error) {
	q := query.Default()
	if err := decoder.Decode(&q, values); err != nil {
		var errs schema.MultiError
		if !errors.As(err, &errs) {
			return query.Query{}, fmt.Errorf("invalid query: %w", err)
		}
		resetFailed(&q, errs)
	}

	for _, d := range cfg.Dimensions {
		var selected []string
		for _, raw := range values[d.Name] {
			for _, v := range strings.Split(raw, "||") {
				if v = strings.TrimSpace(v); v != "" {
					selected = append(selected, v)
				}
			}
		}
		if len(selected) > 0 {
			if q.Filters == nil {
				q.Filters = make(map[string][]string)
			}
			q.Filters[d.Name] = selected
		}
	}

	return q, nil
}

// resetFailed restores the default for every key the decoder rejected
func resetFailed(q *query.Query, errs schema.MultiError) {
	def := query.Default()
	for key := range errs {
		switch key {
		case "page":
			q.Page = def.Page
		case "size":
			q.PageSize = def.PageSize
		}
	}
}

// EncodeQuery is the inverse of DecodeQuery, omitting defaults
func EncodeQuery(q query.Query, cfg query.Config) url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Category != "" && q.Category != query.All {
		values.Set("category", q.Category)
	}
	for _, d := range cfg.Dimensions {
		if selected := q.Filters[d.Name]; len(selected) > 0 {
			values.Set(d.Name, strings.Join(selected, "||"))
		}
	}
	if q.Page > 1 {
		values.Set("page", fmt.Sprint(q.Page))
	}
	if q.PageSize > 0 && q.PageSize != cfg.PageSize {
		values.Set("size", fmt.Sprint(q.PageSize))
	}
	return values
}

// Noun names one item of a catalog in result summaries
func Noun(name string) string {
	if name == catalog.Blog {
		return "article"
	}
	return "course"
}

// Summarize renders the result count line. Blog summaries name the
// selected category, e.g. "2 articles found in Data Science".
func Summarize(cfg query.Config, res query.Result) string {
	line := res.Summary(Noun(cfg.Name))
	if cfg.Name == catalog.Blog && res.Query.Category != "" && res.Query.Category != query.All {
		line += " in " + res.Query.Category
	}
	return line
}
