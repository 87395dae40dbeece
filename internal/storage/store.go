package storage

import (
	"context"
	"fmt"

	"github.com/renderinc/catalog-search/internal/catalog"
)

// Store is a persistent catalog source that an import can write to
type Store interface {
	catalog.Source
	Upsert(ctx context.Context, rec *Record) error
	GetContentHash(ctx context.Context, name string, id int) (string, error)
	Prune(ctx context.Context, name string, keep []int) (int, error)
	Catalogs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

var (
	_ Store = (*DB)(nil)
	_ Store = (*RedisStore)(nil)
)

// Options selects and configures a store driver
type Options struct {
	Driver        string // "sqlite" or "redis"
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// OpenStore opens the store named by opts.Driver
func OpenStore(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "sqlite":
		return Open(opts.Path)
	case "redis":
		rs := NewRedisStore(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.RedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			rs.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
