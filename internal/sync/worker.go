package sync

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/messaging"
	"github.com/renderinc/catalog-search/internal/search"
	"github.com/renderinc/catalog-search/internal/storage"
)

// DefaultConcurrency is the number of items written in parallel
const DefaultConcurrency = 5

var importedItems = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalog_import_items_total",
	Help: "Items processed by imports, by outcome",
}, []string{"outcome"})

// Worker imports seed catalogs into a store
type Worker struct {
	store       storage.Store
	index       *search.Index       // optional
	publisher   messaging.Publisher // optional
	logger      *zap.Logger
	concurrency int
}

// NewWorker creates a new import worker. index and publisher may be nil.
func NewWorker(store storage.Store, index *search.Index, publisher messaging.Publisher, logger *zap.Logger) *Worker {
	return &Worker{
		store:       store,
		index:       index,
		publisher:   publisher,
		logger:      logger,
		concurrency: DefaultConcurrency,
	}
}

// SetConcurrency changes the worker pool size
func (w *Worker) SetConcurrency(n int) {
	if n > 0 {
		w.concurrency = n
	}
}

// Stats holds import statistics
type Stats struct {
	Total    int
	New      int
	Updated  int
	Skipped  int
	Removed  int
	Errors   int
	Indexed  int
	Duration time.Duration
}

type job struct {
	item     catalog.Item
	position int
}

// ContentHash returns the md5 of an item's JSON encoding and its position
func ContentHash(it catalog.Item, position int) (string, error) {
	data, err := json.Marshal(struct {
		catalog.Item
		Position int `json:"position"`
	}{it, position})
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}
	return fmt.Sprintf("%x", md5.Sum(data)), nil
}

// Import writes every catalog of the seed to the store. Unchanged items
// are skipped, items missing from the seed are removed. Per-item failures
// are counted in Stats, not returned.
func (w *Worker) Import(ctx context.Context, seed *catalog.Seed) (*Stats, error) {
	startTime := time.Now()
	stats := &Stats{}

	names := make([]string, 0, len(seed.Catalogs))
	for name := range seed.Catalogs {
		names = append(names, name)
	}
	slices.Sort(names)

	w.logger.Info("starting import", zap.Strings("catalogs", names), zap.Int("items", seed.Count()))

	var jobs []job
	for _, name := range names {
		for pos, it := range seed.Catalogs[name] {
			it.Catalog = name
			jobs = append(jobs, job{item: it, position: pos})
		}
	}
	stats.Total = len(jobs)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			if err := w.importItem(gctx, j, stats, &mu); err != nil {
				w.logger.Warn("import item failed",
					zap.String("catalog", j.item.Catalog),
					zap.Int("id", j.item.ID),
					zap.Error(err))
				importedItems.WithLabelValues("error").Inc()
				mu.Lock()
				stats.Errors++
				mu.Unlock()
			}
			return nil
		})
	}
	// item errors are counted, the group only fails on cancellation
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import cancelled: %w", err)
	}

	for _, name := range names {
		keep := make([]int, 0, len(seed.Catalogs[name]))
		for _, it := range seed.Catalogs[name] {
			keep = append(keep, it.ID)
		}
		n, err := w.store.Prune(ctx, name, keep)
		if err != nil {
			return nil, fmt.Errorf("prune %s: %w", name, err)
		}
		stats.Removed += n
	}

	if w.index != nil {
		n, err := w.index.Rebuild(ctx, w.store, names)
		if err != nil {
			return nil, fmt.Errorf("rebuild suggestions: %w", err)
		}
		stats.Indexed = n
	}

	if w.publisher != nil && (stats.New > 0 || stats.Updated > 0 || stats.Removed > 0) {
		change := messaging.Change{
			ID:       uuid.NewString(),
			Catalogs: names,
			Total:    stats.Total,
			New:      stats.New,
			Updated:  stats.Updated,
			Removed:  stats.Removed,
			At:       time.Now(),
		}
		if err := w.publisher.Publish(ctx, change); err != nil {
			w.logger.Warn("publish change failed", zap.Error(err))
		}
	}

	stats.Duration = time.Since(startTime)
	w.logger.Info("import complete",
		zap.Int("new", stats.New),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("removed", stats.Removed),
		zap.Int("errors", stats.Errors),
		zap.Duration("duration", stats.Duration))

	return stats, nil
}

// importItem writes a single item unless its hash is unchanged
func (w *Worker) importItem(ctx context.Context, j job, stats *Stats, mu *sync.Mutex) error {
	hash, err := ContentHash(j.item, j.position)
	if err != nil {
		return err
	}

	existing, err := w.store.GetContentHash(ctx, j.item.Catalog, j.item.ID)
	if err != nil {
		return fmt.Errorf("get content hash: %w", err)
	}
	if existing == hash {
		importedItems.WithLabelValues("skipped").Inc()
		mu.Lock()
		stats.Skipped++
		mu.Unlock()
		return nil
	}

	rec := &storage.Record{
		Item:        j.item,
		Position:    j.position,
		ContentHash: hash,
		SyncedAt:    time.Now(),
	}
	if err := w.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert item: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if existing == "" {
		stats.New++
		importedItems.WithLabelValues("new").Inc()
	} else {
		stats.Updated++
		importedItems.WithLabelValues("updated").Inc()
	}

	w.logger.Debug("imported item", zap.String("catalog", j.item.Catalog), zap.Int("id", j.item.ID), zap.String("title", j.item.Title))
	return nil
}
