package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/renderinc/catalog-search/internal/catalog"
)

var _ catalog.Source = (*RedisStore)(nil)

// RedisStore keeps catalogs in redis. Per catalog it writes a hash of
// encoded items, a hash of content hashes and a sorted set holding the
// display order; the set of catalog names lives under one key.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr and namespaces keys under prefix
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if prefix == "" {
		prefix = "catalog"
	}
	return &RedisStore{client: rdb, prefix: prefix}
}

// Ping checks the connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the client
func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) namesKey() string           { return r.prefix + ":names" }
func (r *RedisStore) itemsKey(name string) string { return r.prefix + ":items:" + name }
func (r *RedisStore) orderKey(name string) string { return r.prefix + ":order:" + name }
func (r *RedisStore) hashKey(name string) string  { return r.prefix + ":hash:" + name }

// Upsert writes an item, its hash and its position in one transaction
func (r *RedisStore) Upsert(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec.Item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	field := strconv.Itoa(rec.ID)

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, r.namesKey(), rec.Catalog)
		pipe.HSet(ctx, r.itemsKey(rec.Catalog), field, data)
		pipe.HSet(ctx, r.hashKey(rec.Catalog), field, rec.ContentHash)
		pipe.ZAdd(ctx, r.orderKey(rec.Catalog), redis.Z{Score: float64(rec.Position), Member: field})
		return nil
	})
	if err != nil {
		return fmt.Errorf("upsert %s/%d: %w", rec.Catalog, rec.ID, err)
	}
	return nil
}

// Get retrieves an item by catalog and ID
func (r *RedisStore) Get(ctx context.Context, name string, id int) (catalog.Item, error) {
	data, err := r.client.HGet(ctx, r.itemsKey(name), strconv.Itoa(id)).Result()
	if errors.Is(err, redis.Nil) {
		return catalog.Item{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Item{}, fmt.Errorf("get item: %w", err)
	}

	var it catalog.Item
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		return catalog.Item{}, fmt.Errorf("decode item %s/%d: %w", name, id, err)
	}
	return it, nil
}

// List retrieves a catalog's items in display order
func (r *RedisStore) List(ctx context.Context, name string) ([]catalog.Item, error) {
	ids, err := r.client.ZRange(ctx, r.orderKey(name), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list order: %w", err)
	}
	items := make([]catalog.Item, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	values, err := r.client.HMGet(ctx, r.itemsKey(name), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// order entry without an item, skipped until the next import
			continue
		}
		var it catalog.Item
		if err := json.Unmarshal([]byte(s), &it); err != nil {
			return nil, fmt.Errorf("decode item %s/%s: %w", name, ids[i], err)
		}
		items = append(items, it)
	}
	return items, nil
}

// Catalogs returns the names of all stored catalogs, sorted
func (r *RedisStore) Catalogs(ctx context.Context) ([]string, error) {
	names, err := r.client.Sort(ctx, r.namesKey(), &redis.Sort{Alpha: true}).Result()
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	return names, nil
}

// Count returns the total number of items over all catalogs
func (r *RedisStore) Count(ctx context.Context) (int, error) {
	names, err := r.Catalogs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, name := range names {
		n, err := r.client.HLen(ctx, r.itemsKey(name)).Result()
		if err != nil {
			return 0, fmt.Errorf("count %s: %w", name, err)
		}
		total += int(n)
	}
	return total, nil
}

// GetContentHash retrieves the stored hash of an item, or "" when absent
func (r *RedisStore) GetContentHash(ctx context.Context, name string, id int) (string, error) {
	hash, err := r.client.HGet(ctx, r.hashKey(name), strconv.Itoa(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return hash, err
}

// Prune deletes the items of a catalog whose IDs are not in keep
func (r *RedisStore) Prune(ctx context.Context, name string, keep []int) (int, error) {
	stored, err := r.client.HKeys(ctx, r.itemsKey(name)).Result()
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", name, err)
	}

	wanted := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		wanted[strconv.Itoa(id)] = struct{}{}
	}
	var stale []string
	for _, field := range stored {
		if _, ok := wanted[field]; !ok {
			stale = append(stale, field)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	members := make([]any, len(stale))
	for i, s := range stale {
		members[i] = s
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, r.itemsKey(name), stale...)
		pipe.HDel(ctx, r.hashKey(name), stale...)
		pipe.ZRem(ctx, r.orderKey(name), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", name, err)
	}
	return len(stale), nil
}
