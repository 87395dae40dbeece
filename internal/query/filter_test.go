package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderinc/catalog-search/internal/catalog"
)

func ids(items []catalog.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func seedCatalog(t *testing.T, name string) []catalog.Item {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	return seed.Catalogs[name]
}

var courseItems = []catalog.Item{
	{ID: 1, Title: "Advanced Python", Category: "Data Science", Tags: []string{"Python", "Statistics"}},
	{ID: 2, Title: "R for Analysts", Category: "Data Science", Tags: []string{"R"}},
	{ID: 3, Title: "Python Web Apps", Category: "Web Development", Tags: []string{"Python", "Flask"}},
	{ID: 4, Title: "Statistics 101", Description: "Probability and inference", Category: "Mathematics", Tags: []string{"Statistics"}},
}

var courseConfig = Config{
	Name:       "test",
	Dimensions: []Dimension{{Name: "skills", Field: catalog.FieldTags}},
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	for _, name := range []string{catalog.Courses, catalog.Search, catalog.Blog} {
		items := seedCatalog(t, name)
		got := Filter(items, Configs()[name], Default())
		if diff := cmp.Diff(items, got); diff != "" {
			t.Errorf("%s: empty query changed the catalog (-want +got):\n%s", name, diff)
		}
	}
}

func TestFilterSearchIsCaseInsensitiveSubstring(t *testing.T) {
	for _, term := range []string{"python", "PYTHON", "pyth", "  Python  "} {
		got := Filter(courseItems, courseConfig, Query{Search: term})
		assert.Equal(t, []int{1, 3}, ids(got), "term %q", term)
	}

	got := Filter(courseItems, courseConfig, Query{Search: "pythonx"})
	assert.Empty(t, got)
}

func TestFilterSearchCoversDescriptionAndTags(t *testing.T) {
	got := Filter(courseItems, courseConfig, Query{Search: "inference"})
	assert.Equal(t, []int{4}, ids(got))

	got = Filter(courseItems, courseConfig, Query{Search: "flask"})
	assert.Equal(t, []int{3}, ids(got))
}

func TestFilterSearchHonoursConfiguredFields(t *testing.T) {
	cfg := Config{SearchFields: []catalog.Field{catalog.FieldTitle}}
	got := Filter(courseItems, cfg, Query{Search: "flask"})
	assert.Empty(t, got, "tags are not searched when only the title is configured")
}

func TestFilterCategoryIsExact(t *testing.T) {
	got := Filter(courseItems, courseConfig, Query{Category: "Data Science"})
	assert.Equal(t, []int{1, 2}, ids(got))

	got = Filter(courseItems, courseConfig, Query{Category: "data science"})
	assert.Empty(t, got)

	got = Filter(courseItems, courseConfig, Query{Category: All})
	assert.Len(t, got, len(courseItems))
}

func TestFilterIsConjunctive(t *testing.T) {
	q := Query{
		Category: "Data Science",
		Filters:  map[string][]string{"skills": {"Python"}},
	}
	got := Filter(courseItems, courseConfig, q)
	// 2 is Data Science without Python, 3 has Python outside Data Science
	assert.Equal(t, []int{1}, ids(got))
}

func TestFilterFacetIsAnyMatch(t *testing.T) {
	q := Query{Filters: map[string][]string{"skills": {"Statistics", "R"}}}
	got := Filter(courseItems, courseConfig, q)
	assert.Equal(t, []int{1, 2, 4}, ids(got))
}

func TestFilterEmptyFacetSetIsUnconstrained(t *testing.T) {
	q := Query{Filters: map[string][]string{"skills": {}}}
	got := Filter(courseItems, courseConfig, q)
	assert.Len(t, got, len(courseItems))
}

func TestFilterNoResults(t *testing.T) {
	items := seedCatalog(t, catalog.Blog)
	got := Filter(items, Configs()[catalog.Blog], Query{Search: "zzz-nonexistent"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterDoesNotMutateSource(t *testing.T) {
	items := seedCatalog(t, catalog.Search)
	before := make([]catalog.Item, len(items))
	copy(before, items)

	q := Query{Search: "python", Filters: map[string][]string{"schools": {"MIT"}}}
	got := Filter(items, Configs()[catalog.Search], q)
	require.Len(t, got, 1)
	got[0].Title = "mutated"

	assert.Equal(t, before, items)
}

func TestFilterCourseGridMatchesSkills(t *testing.T) {
	items := seedCatalog(t, catalog.Courses)
	cfg := Configs()[catalog.Courses]

	got := Filter(items, cfg, Query{Search: "neural"})
	assert.Equal(t, []int{1, 4}, ids(got))

	got = Filter(items, cfg, Query{Search: "ibm"})
	assert.Equal(t, []int{2, 4}, ids(got), "provider is searched on the course grid")

	got = Filter(items, cfg, Query{
		Category: "Artificial Intelligence",
		Filters:  map[string][]string{"skills": {"Python"}},
	})
	assert.Equal(t, []int{1}, ids(got))
}

func TestFilterSearchPageBySubject(t *testing.T) {
	items := seedCatalog(t, catalog.Search)
	cfg := Configs()[catalog.Search]

	got := Filter(items, cfg, Query{Filters: map[string][]string{"subjects": {"Web Development"}}})
	assert.Equal(t, []int{4, 6}, ids(got))

	page := Paginate(got, 1, cfg.PageSize)
	assert.Equal(t, 1, page.TotalPages)
	assert.Equal(t, []int{4, 6}, ids(page.Items))
}
