package web

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/backdrop"
	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/search"
)

func newTestServer(t *testing.T, withIndex bool) *Server {
	t.Helper()
	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)
	src := catalog.NewMemorySource(seed.Catalogs)

	var idx *search.Index
	if withIndex {
		idx, err = search.NewMemOnly()
		require.NoError(t, err)
		t.Cleanup(func() { idx.Close() })
		_, err = idx.Rebuild(context.Background(), src, src.Names())
		require.NoError(t, err)
	}

	s, err := NewServer(src, query.Configs(), idx, zap.NewNop(), Options{BackdropInterval: time.Millisecond})
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func ids(items []catalog.Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestQueryByCategory(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := get(t, h, "/api/catalogs/search?category="+url.QueryEscape("Web Development"))
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[QueryResponse](t, rec)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []int{4, 6}, ids(res.Page.Items))
	assert.Equal(t, 1, res.Page.TotalPages)
	assert.False(t, res.Page.Paginated)
	assert.Equal(t, "2 courses found", res.Summary)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestQueryFacetValues(t *testing.T) {
	h := newTestServer(t, false).Handler()

	joined := decode[QueryResponse](t, get(t, h, "/api/catalogs/search?skills=Beginner||Advanced"))
	assert.Equal(t, []int{1, 2, 5, 6}, ids(joined.Page.Items))

	repeated := decode[QueryResponse](t, get(t, h, "/api/catalogs/search?skills=Beginner&skills=Advanced&schools=MIT"))
	assert.Equal(t, []int{2}, ids(repeated.Page.Items))

	// unknown values fail open
	unknown := decode[QueryResponse](t, get(t, h, "/api/catalogs/search?skills=Expert&subjects=Nope"))
	assert.Equal(t, 6, unknown.Total)
}

func TestQueryBlogFeatured(t *testing.T) {
	h := newTestServer(t, false).Handler()

	res := decode[QueryResponse](t, get(t, h, "/api/catalogs/blog"))
	assert.Equal(t, []int{1, 3}, ids(res.Featured))
	assert.Equal(t, []int{2, 4, 5, 6}, ids(res.Page.Items))
	assert.False(t, res.Flat)
	assert.Equal(t, "6 articles found", res.Summary)

	cat := decode[QueryResponse](t, get(t, h, "/api/catalogs/blog?category=EdTech"))
	assert.Empty(t, cat.Featured)
	assert.True(t, cat.Flat)
}

func TestQueryNoResults(t *testing.T) {
	h := newTestServer(t, false).Handler()

	res := decode[QueryResponse](t, get(t, h, "/api/catalogs/courses?q=zzz-nonexistent"))
	assert.True(t, res.NoResults)
	assert.Empty(t, res.Page.Items)
	assert.Equal(t, "0 courses found", res.Summary)
}

func TestQueryClampsPage(t *testing.T) {
	h := newTestServer(t, false).Handler()

	res := decode[QueryResponse](t, get(t, h, "/api/catalogs/search?page=99&size=4"))
	assert.Equal(t, 2, res.Page.Number)
	assert.Equal(t, []int{5, 6}, ids(res.Page.Items))
	assert.True(t, res.Page.HasPrev)
	assert.False(t, res.Page.HasNext)
	assert.Equal(t, []int{1, 2}, res.Page.Pages)
}

func TestQueryErrors(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := get(t, h, "/api/catalogs/videos")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "unknown catalog")

}

func TestQueryBadNumbersFallBack(t *testing.T) {
	h := newTestServer(t, false).Handler()

	for _, path := range []string{
		"/api/catalogs/search?page=abc",
		"/api/catalogs/search?page=99999999999999999999",
		"/api/catalogs/search?size=lots",
		"/api/catalogs/search?page=abc&size=lots&q=python",
	} {
		rec := get(t, h, path)
		require.Equal(t, http.StatusOK, rec.Code, path)
		res := decode[QueryResponse](t, rec)
		assert.Equal(t, 1, res.Query.Page, path)
		assert.Equal(t, 6, res.Query.PageSize, path)
		assert.NotEmpty(t, res.Page.Items, path)
	}

	rec := get(t, h, "/api/catalogs/blog/facets?page=x")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFacets(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := get(t, h, "/api/catalogs/search?skills=Beginner")
	require.Equal(t, http.StatusOK, rec.Code)

	set := decode[query.FacetSet](t, get(t, h, "/api/catalogs/search/facets?skills=Beginner"))
	require.Len(t, set.Facets, 3)

	skills := set.Facets[1]
	assert.Equal(t, "skills", skills.Name)
	assert.Equal(t, []query.Option{
		{Value: "Beginner", Count: 2, Selected: true},
		{Value: "Advanced", Count: 2},
		{Value: "Intermediate", Count: 2},
	}, skills.Options)
	assert.Equal(t, []query.Chip{{Dimension: "skills", Value: "Beginner"}}, set.Active)
	assert.Equal(t, query.All, set.Categories[0])
}

func TestGetItem(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := get(t, h, "/api/catalogs/blog/items/3")
	require.Equal(t, http.StatusOK, rec.Code)
	it := decode[catalog.Item](t, rec)
	assert.Equal(t, "Machine Learning Career Path: From Beginner to Expert", it.Title)
	assert.True(t, it.Featured)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/catalogs/blog/items/99").Code)
	assert.Equal(t, http.StatusBadRequest, get(t, h, "/api/catalogs/blog/items/three").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/catalogs/videos/items/1").Code)
}

func TestCatalogs(t *testing.T) {
	h := newTestServer(t, false).Handler()

	configs := decode[[]query.Config](t, get(t, h, "/api/catalogs"))
	require.Len(t, configs, 3)
	assert.Equal(t, catalog.Blog, configs[0].Name)
}

func TestSuggest(t *testing.T) {
	h := newTestServer(t, true).Handler()

	res := decode[SuggestResponse](t, get(t, h, "/api/suggest?q=djan"))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Django Web Development", res.Suggestions[0].Title)

	scoped := decode[SuggestResponse](t, get(t, h, "/api/suggest?q=python&catalog=search&limit=2"))
	assert.Equal(t, 2, scoped.Count)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/suggest?q=python&catalog=videos").Code)
}

func TestSuggestWithoutIndex(t *testing.T) {
	h := newTestServer(t, false).Handler()
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/suggest?q=py").Code)
}

func TestBackdropSnapshot(t *testing.T) {
	h := newTestServer(t, false).Handler()

	first := decode[backdrop.Scene](t, get(t, h, "/api/backdrop?seed=7"))
	second := decode[backdrop.Scene](t, get(t, h, "/api/backdrop?seed=7"))
	assert.Len(t, first.Particles, backdrop.ParticleCount)
	assert.Len(t, first.Shapes, backdrop.ShapeCount)
	assert.Equal(t, first, second)
}

func TestBackdropStream(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, false).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/backdrop/stream?frames=2")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var frames []backdrop.Scene
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			var sc backdrop.Scene
			require.NoError(t, json.Unmarshal([]byte(data), &sc))
			frames = append(frames, sc)
		}
	}
	require.Len(t, frames, 2)
	assert.Less(t, frames[0].Frame, frames[1].Frame)
}

func TestBackdropStreamStops(t *testing.T) {
	s := newTestServer(t, false)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/backdrop/stream")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, s.StopStreams(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.Discard, resp.Body)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after StopStreams")
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, true).Handler()

	status := decode[map[string]any](t, get(t, h, "/health"))
	assert.Equal(t, "ok", status["status"])
	assert.EqualValues(t, 18, status["items_in_index"])
}

func TestIndexAndFragment(t *testing.T) {
	h := newTestServer(t, false).Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="blog">`)

	rec = get(t, h, "/fragments/catalogs/search?size=2&q=python")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "4 courses found")
	assert.Contains(t, body, `class="page current">1<`)
	assert.Contains(t, body, "page=2")
	assert.Contains(t, body, `<span class="prev disabled">`)

	rec = get(t, h, "/fragments/catalogs/blog?q=zzz-nonexistent")
	assert.Contains(t, rec.Body.String(), "No articles found")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestMetrics(t *testing.T) {
	h := newTestServer(t, false).Handler()
	get(t, h, "/api/catalogs/courses")

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalog_queries_total{catalog="courses"}`)
}
