package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/renderinc/catalog-search/internal/catalog"
	"github.com/renderinc/catalog-search/internal/messaging"
	"github.com/renderinc/catalog-search/internal/query"
	"github.com/renderinc/catalog-search/internal/remote"
	"github.com/renderinc/catalog-search/internal/search"
	"github.com/renderinc/catalog-search/internal/storage"
)

// loadSeed reads a seed file or URL. An empty location means the
// configured seed, or the built-in catalogs.
func loadSeed(ctx context.Context, location string) (*catalog.Seed, error) {
	if location == "" {
		location = cfg.Seed
	}
	switch {
	case location == "":
		return catalog.DefaultSeed()
	case remote.IsURL(location):
		return remote.NewClient(cfg.SeedToken).FetchSeed(ctx, location)
	default:
		return catalog.LoadSeed(location)
	}
}

func storeOptions() storage.Options {
	return storage.Options{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.DatabasePath(),
		RedisAddr:     cfg.Storage.Redis.Addr,
		RedisPassword: cfg.Storage.Redis.Password,
		RedisDB:       cfg.Storage.Redis.DB,
		RedisPrefix:   cfg.Storage.Redis.Prefix,
	}
}

// openStore opens the persistent store. The memory driver has none.
func openStore(ctx context.Context) (storage.Store, error) {
	if cfg.Storage.Driver == "memory" {
		return nil, fmt.Errorf("the memory driver has no store, set storage.driver to sqlite or redis")
	}
	if cfg.Storage.Driver == "sqlite" {
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return storage.OpenStore(ctx, storeOptions())
}

// catalogSource is where queries read items from
type catalogSource struct {
	catalog.Source
	memory *catalog.MemorySource // set for the memory driver
	store  storage.Store         // set otherwise
}

func (c *catalogSource) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

func (c *catalogSource) names(ctx context.Context) ([]string, error) {
	if c.memory != nil {
		return c.memory.Names(), nil
	}
	return c.store.Catalogs(ctx)
}

func openSource(ctx context.Context) (*catalogSource, error) {
	if cfg.Storage.Driver == "memory" {
		seed, err := loadSeed(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("load seed: %w", err)
		}
		mem := catalog.NewMemorySource(seed.Catalogs)
		return &catalogSource{Source: mem, memory: mem}, nil
	}

	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	return &catalogSource{Source: st, store: st}, nil
}

// openIndex opens the on-disk suggestion index for store drivers. The
// memory driver gets an in-memory index built from its source.
func openIndex(ctx context.Context, src *catalogSource) (*search.Index, error) {
	if src.memory == nil {
		return openDiskIndex()
	}

	idx, err := search.NewMemOnly()
	if err != nil {
		return nil, err
	}
	if _, err := idx.Rebuild(ctx, src, src.memory.Names()); err != nil {
		idx.Close()
		return nil, err
	}
	return idx, nil
}

func openDiskIndex() (*search.Index, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath()), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return search.Open(cfg.IndexPath())
}

// dialBroker connects to RabbitMQ when a URL is configured
func dialBroker() (*amqp.Connection, error) {
	if cfg.Messaging.URL == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(cfg.Messaging.URL)
	if err != nil {
		return nil, fmt.Errorf("connect broker: %w", err)
	}
	return conn, nil
}

func newPublisher(conn *amqp.Connection) (messaging.Publisher, error) {
	if conn == nil {
		return nil, nil
	}
	pub, err := messaging.NewAmqpPublisher(conn, cfg.Messaging.Prefix)
	if err != nil {
		return nil, err
	}
	return pub, nil
}

func catalogConfig(name string) (query.Config, error) {
	c, ok := query.Configs()[name]
	if !ok {
		return query.Config{}, fmt.Errorf("unknown catalog %q (valid: courses, search, blog)", name)
	}
	return c, nil
}
