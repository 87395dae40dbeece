package sync

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/messaging"
	"github.com/renderinc/catalog-search/internal/search"
	"github.com/renderinc/catalog-search/internal/storage"
)

type recordingPublisher struct {
	changes []messaging.Change
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, c messaging.Change) error {
	p.changes = append(p.changes, c)
	return p.err
}

func newTestWorker(t *testing.T, pub messaging.Publisher) (*Worker, *storage.DB, *search.Index) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	idx, err := search.NewMemOnly()
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	return NewWorker(db, idx, pub, zap.NewNop()), db, idx
}

func TestImportSeed(t *testing.T) {
	pub := &recordingPublisher{}
	w, db, idx := newTestWorker(t, pub)
	ctx := context.Background()

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)

	stats, err := w.Import(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, seed.Count(), stats.Total)
	assert.Equal(t, seed.Count(), stats.New)
	assert.Zero(t, stats.Errors)
	assert.Equal(t, seed.Count(), stats.Indexed)

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Count(), n)

	// stored order matches seed order
	items, err := db.List(ctx, catalog.Blog)
	require.NoError(t, err)
	assert.Equal(t, seed.Catalogs[catalog.Blog], items)

	docs, err := idx.Count()
	require.NoError(t, err)
	assert.EqualValues(t, seed.Count(), docs)

	require.Len(t, pub.changes, 1)
	assert.Equal(t, []string{catalog.Blog, catalog.Courses, catalog.Search}, pub.changes[0].Catalogs)
	assert.NotEmpty(t, pub.changes[0].ID)
}

func TestImportSkipsUnchanged(t *testing.T) {
	pub := &recordingPublisher{}
	w, _, _ := newTestWorker(t, pub)
	ctx := context.Background()

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)

	_, err = w.Import(ctx, seed)
	require.NoError(t, err)

	stats, err := w.Import(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, seed.Count(), stats.Skipped)
	assert.Zero(t, stats.New)
	assert.Zero(t, stats.Updated)
	assert.Len(t, pub.changes, 1, "nothing changed, nothing published")
}

func TestImportUpdatesAndRemoves(t *testing.T) {
	w, db, idx := newTestWorker(t, nil)
	ctx := context.Background()

	first, err := catalog.ParseSeed([]byte(`
catalogs:
  blog:
    - {id: 1, title: First Post, category: EdTech}
    - {id: 2, title: Second Post, category: EdTech}
    - {id: 3, title: Third Post, category: EdTech}
`))
	require.NoError(t, err)
	_, err = w.Import(ctx, first)
	require.NoError(t, err)

	second, err := catalog.ParseSeed([]byte(`
catalogs:
  blog:
    - {id: 1, title: First Post, category: EdTech}
    - {id: 3, title: Renamed Post, category: EdTech}
`))
	require.NoError(t, err)
	stats, err := w.Import(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, 1, stats.Removed)

	items, err := db.List(ctx, catalog.Blog)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Renamed Post", items[1].Title)

	got, err := idx.Suggest("renam", "", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].ID)

	got, err = idx.Suggest("second", "", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestImportPublishFailureIsNotFatal(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	w, _, _ := newTestWorker(t, pub)

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)

	stats, err := w.Import(context.Background(), seed)
	require.NoError(t, err)
	assert.Equal(t, seed.Count(), stats.New)
	assert.Len(t, pub.changes, 1)
}

func TestImportCancelled(t *testing.T) {
	w, _, _ := newTestWorker(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	seed, err := catalog.DefaultSeed()
	require.NoError(t, err)

	_, err = w.Import(ctx, seed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContentHashIncludesPosition(t *testing.T) {
	it := catalog.Item{ID: 1, Title: "a"}
	h0, err := ContentHash(it, 0)
	require.NoError(t, err)
	h1, err := ContentHash(it, 1)
	require.NoError(t, err)
	assert.NotEqual(t, h0, h1)

	again, err := ContentHash(slices.Clone([]catalog.Item{it})[0], 0)
	require.NoError(t, err)
	assert.Equal(t, h0, again)
}
