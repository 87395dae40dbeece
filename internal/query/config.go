package query

import "github.com/renderinc/catalog-search/internal/catalog"

// DefaultFeaturedCap is how many featured items the highlight strip shows
const DefaultFeaturedCap = 3

// DefaultSearchPageSize is the page size of the course search page
const DefaultSearchPageSize = 6

// Dimension is a multi-value facet: a query key and the item field it reads
type Dimension struct {
	Name  string        `json:"name" yaml:"name"`
	Field catalog.Field `json:"field" yaml:"field"`
}

// Config describes how a catalog is searched, filtered and laid out
type Config struct {
	Name string `json:"name" yaml:"name"`

	// SearchFields participate in free-text search. Empty means title,
	// description and tags.
	SearchFields []catalog.Field `json:"search_fields" yaml:"search_fields"`

	// Categories is the closed list a category selection must come from.
	// Empty means the distinct categories of the catalog's items.
	Categories []string `json:"categories,omitempty" yaml:"categories"`

	Dimensions []Dimension `json:"dimensions,omitempty" yaml:"dimensions"`

	// PageSize of 0 renders every match on one page
	PageSize int `json:"page_size" yaml:"page_size"`

	// FeaturedCap > 0 enables the featured highlight strip
	FeaturedCap int `json:"featured_cap" yaml:"featured_cap"`
}

var defaultSearchFields = []catalog.Field{catalog.FieldTitle, catalog.FieldDescription, catalog.FieldTags}

func (c Config) searchFields() []catalog.Field {
	if len(c.SearchFields) == 0 {
		return defaultSearchFields
	}
	return c.SearchFields
}

// Dimension looks up a facet dimension by query key
func (c Config) Dimension(name string) (Dimension, bool) {
	for _, d := range c.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension{}, false
}

// Configs returns the storefront's catalog configurations keyed by name
func Configs() map[string]Config {
	return map[string]Config{
		catalog.Courses: {
			Name:         catalog.Courses,
			SearchFields: []catalog.Field{catalog.FieldTitle, catalog.FieldProvider, catalog.FieldTags},
			Categories:   []string{"Artificial Intelligence", "Data Science", "Machine Learning", "Computer Science"},
			Dimensions: []Dimension{
				{Name: "skills", Field: catalog.FieldTags},
			},
		},
		catalog.Search: {
			Name:         catalog.Search,
			SearchFields: []catalog.Field{catalog.FieldTitle, catalog.FieldProvider},
			Dimensions: []Dimension{
				{Name: "subjects", Field: catalog.FieldCategory},
				{Name: "skills", Field: catalog.FieldLevel},
				{Name: "schools", Field: catalog.FieldSchool},
			},
			PageSize: DefaultSearchPageSize,
		},
		catalog.Blog: {
			Name:         catalog.Blog,
			SearchFields: []catalog.Field{catalog.FieldTitle, catalog.FieldDescription, catalog.FieldTags},
			Categories:   []string{"Data Science", "Web Development", "Career Advice", "Backend Development", "EdTech", "Cybersecurity"},
			FeaturedCap:  DefaultFeaturedCap,
		},
	}
}
