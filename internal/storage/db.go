package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/renderinc/catalog-search/internal/catalog"
)

var _ catalog.Source = (*DB)(nil)

// DB wraps SQLite database operations
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	storage := &DB{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return storage, nil
}

// Close closes the database
func (d *DB) Close() error {
	return d.db.Close()
}

// initSchema creates tables if they don't exist
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		catalog TEXT NOT NULL,
		id INTEGER NOT NULL,
		position INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		level TEXT NOT NULL DEFAULT '',
		school TEXT NOT NULL DEFAULT '',
		featured INTEGER NOT NULL DEFAULT 0,
		metadata TEXT NOT NULL DEFAULT '{}',
		content_hash TEXT NOT NULL,
		synced_at TIMESTAMP NOT NULL,
		PRIMARY KEY (catalog, id)
	);

	CREATE INDEX IF NOT EXISTS idx_catalog_position ON items(catalog, position);
	CREATE INDEX IF NOT EXISTS idx_hash ON items(content_hash);
	`

	_, err := d.db.Exec(schema)
	return err
}

// Upsert inserts or updates an item
func (d *DB) Upsert(ctx context.Context, rec *Record) error {
	tags, err := json.Marshal(nonNil(rec.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	meta, err := json.Marshal(metadataOf(rec.Item))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	query := `
	INSERT INTO items (
		catalog, id, position, title, description, provider, category,
		tags, level, school, featured, metadata, content_hash, synced_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(catalog, id) DO UPDATE SET
		position = excluded.position,
		title = excluded.title,
		description = excluded.description,
		provider = excluded.provider,
		category = excluded.category,
		tags = excluded.tags,
		level = excluded.level,
		school = excluded.school,
		featured = excluded.featured,
		metadata = excluded.metadata,
		content_hash = excluded.content_hash,
		synced_at = excluded.synced_at
	`

	_, err = d.db.ExecContext(ctx, query,
		rec.Catalog, rec.ID, rec.Position, rec.Title, rec.Description, rec.Provider, rec.Category,
		string(tags), rec.Level, rec.School, rec.Featured, string(meta), rec.ContentHash, rec.SyncedAt,
	)
	return err
}

const selectItems = `
	SELECT catalog, id, title, description, provider, category,
	       tags, level, school, featured, metadata
	FROM items
	`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (catalog.Item, error) {
	var (
		it         catalog.Item
		tags, meta string
	)
	err := row.Scan(
		&it.Catalog, &it.ID, &it.Title, &it.Description, &it.Provider, &it.Category,
		&tags, &it.Level, &it.School, &it.Featured, &meta,
	)
	if err != nil {
		return catalog.Item{}, err
	}

	if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
		return catalog.Item{}, fmt.Errorf("decode tags of %s/%d: %w", it.Catalog, it.ID, err)
	}
	if len(it.Tags) == 0 {
		it.Tags = nil
	}

	var m metadata
	if err := json.Unmarshal([]byte(meta), &m); err != nil {
		return catalog.Item{}, fmt.Errorf("decode metadata of %s/%d: %w", it.Catalog, it.ID, err)
	}
	m.apply(&it)

	return it, nil
}

// Get retrieves an item by catalog and ID
func (d *DB) Get(ctx context.Context, name string, id int) (catalog.Item, error) {
	row := d.db.QueryRowContext(ctx, selectItems+" WHERE catalog = ? AND id = ?", name, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Item{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Item{}, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// List retrieves a catalog's items in display order
func (d *DB) List(ctx context.Context, name string) ([]catalog.Item, error) {
	rows, err := d.db.QueryContext(ctx, selectItems+" WHERE catalog = ? ORDER BY position, id", name)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []catalog.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

// Catalogs returns the names of all stored catalogs
func (d *DB) Catalogs(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT DISTINCT catalog FROM items ORDER BY catalog")
	if err != nil {
		return nil, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the total number of items
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count)
	return count, err
}

// GetContentHash retrieves just the content hash for an item, or "" when
// the item is not stored yet
func (d *DB) GetContentHash(ctx context.Context, name string, id int) (string, error) {
	var hash string
	err := d.db.QueryRowContext(ctx, "SELECT content_hash FROM items WHERE catalog = ? AND id = ?", name, id).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return hash, err
}

// Prune deletes the items of a catalog whose IDs are not in keep
func (d *DB) Prune(ctx context.Context, name string, keep []int) (int, error) {
	query := "DELETE FROM items WHERE catalog = ?"
	args := []any{name}
	if len(keep) > 0 {
		query += " AND id NOT IN (?" + strings.Repeat(", ?", len(keep)-1) + ")"
		for _, id := range keep {
			args = append(args, id)
		}
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("prune %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
