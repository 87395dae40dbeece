package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renderinc/catalog-search/internal/catalog"
)

func TestFetchSeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"catalogs":{"blog":[{"id":1,"title":"Remote Post","featured":true}]}}`))
	}))
	defer srv.Close()

	seed, err := NewClient("secret").FetchSeed(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, seed.Catalogs[catalog.Blog], 1)
	assert.Equal(t, "Remote Post", seed.Catalogs[catalog.Blog][0].Title)
	assert.Equal(t, catalog.Blog, seed.Catalogs[catalog.Blog][0].Catalog)

	_, err = NewClient("").FetchSeed(context.Background(), srv.URL)
	assert.ErrorContains(t, err, "401")
}

func TestFetchSeedRejectsBadDocuments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dup":
			w.Write([]byte("catalogs:\n  blog:\n    - {id: 1}\n    - {id: 1}\n"))
		case "/huge":
			w.Write([]byte(strings.Repeat("#", maxSeedBytes+10)))
		}
	}))
	defer srv.Close()

	_, err := NewClient("").FetchSeed(context.Background(), srv.URL+"/dup")
	assert.ErrorContains(t, err, "duplicate item id")

	_, err = NewClient("").FetchSeed(context.Background(), srv.URL+"/huge")
	assert.ErrorContains(t, err, "larger than")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://cdn.example.com/catalogs.yaml"))
	assert.True(t, IsURL("http://localhost:9000/seed.json"))
	assert.False(t, IsURL("./seed.yaml"))
}
