package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/renderinc/catalog-search/internal/catalog"
)

func TestPartitionIsDisjointAndOrdered(t *testing.T) {
	items := []catalog.Item{
		{ID: 1, Featured: true},
		{ID: 2},
		{ID: 3, Featured: true},
		{ID: 4},
		{ID: 5},
	}

	featured, regular := Partition(items)
	assert.Equal(t, []int{1, 3}, ids(featured))
	assert.Equal(t, []int{2, 4, 5}, ids(regular))
	assert.Len(t, append(featured, regular...), len(items))
}

func TestPartitionEmpty(t *testing.T) {
	featured, regular := Partition(nil)
	assert.Empty(t, featured)
	assert.Empty(t, regular)
}

func TestLayoutBlog(t *testing.T) {
	items := seedCatalog(t, catalog.Blog)
	cfg := Configs()[catalog.Blog]

	l := Layout(items, cfg, All)
	assert.False(t, l.Flat)
	assert.Equal(t, []int{1, 3}, ids(l.Featured))
	assert.Equal(t, []int{2, 4, 5, 6}, ids(l.Items))
}

func TestLayoutCategorySuppressesSplit(t *testing.T) {
	items := seedCatalog(t, catalog.Blog)
	cfg := Configs()[catalog.Blog]

	matches := Filter(items, cfg, Query{Category: "Data Science"})
	l := Layout(matches, cfg, "Data Science")
	assert.True(t, l.Flat)
	assert.Empty(t, l.Featured)
	assert.Equal(t, []int{1}, ids(l.Items), "featured posts stay in the flat list")
}

func TestLayoutWithoutFeaturedMatchesIsFlat(t *testing.T) {
	items := seedCatalog(t, catalog.Blog)
	cfg := Configs()[catalog.Blog]

	matches := Filter(items, cfg, Query{Search: "react"})
	l := Layout(matches, cfg, All)
	assert.True(t, l.Flat)
	assert.Equal(t, []int{2}, ids(l.Items))
}

func TestLayoutCapsHighlightStrip(t *testing.T) {
	items := make([]catalog.Item, 6)
	for i := range items {
		items[i] = catalog.Item{ID: i + 1, Featured: i != 4}
	}

	l := Layout(items, Config{FeaturedCap: 3}, All)
	assert.Equal(t, []int{1, 2, 3}, ids(l.Featured))
	assert.Equal(t, []int{5}, ids(l.Items))
}

func TestLayoutFlatCatalog(t *testing.T) {
	items := seedCatalog(t, catalog.Courses)
	l := Layout(items, Configs()[catalog.Courses], All)
	assert.True(t, l.Flat)
	assert.Len(t, l.Items, 6)
}
