// Package sqlstore persists dashboard items and category ranks in SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

const schema = `
CREATE TABLE IF NOT EXISTS dashboard_items (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	url           TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	icon          TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	category_icon TEXT NOT NULL DEFAULT '',
	username      TEXT NOT NULL DEFAULT '',
	secret_key    TEXT NOT NULL DEFAULT '',
	order_index   REAL NOT NULL DEFAULT 0,
	is_admin_only INTEGER NOT NULL DEFAULT 0,
	size          TEXT NOT NULL DEFAULT 'medium',
	environment   TEXT NOT NULL DEFAULT 'common',
	created_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_items_category ON dashboard_items(category, order_index);

CREATE TABLE IF NOT EXISTS category_order (
	category_name TEXT PRIMARY KEY,
	order_index   INTEGER NOT NULL
);
`

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const itemColumns = "id, name, url, description, icon, category, category_icon, username, secret_key, order_index, is_admin_only, size, environment, created_at"

// Store is an ItemStore and CategoryOrderRepository backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var (
	_ dashboard.ItemStore               = (*Store)(nil)
	_ dashboard.CategoryOrderRepository = (*Store)(nil)
)

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlstore: database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlstore: create directory: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open database: %w", err)
	}
	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.path = path
	return store, nil
}

// New wraps an open database and applies the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore: database is required")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("sqlstore: initialize schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file path, empty for stores built with New.
func (s *Store) Path() string { return s.path }

// ListItems returns every item ordered by category, order index and creation
// time.
func (s *Store) ListItems(ctx context.Context) ([]dashboard.Item, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+itemColumns+" FROM dashboard_items ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list items: %w", err)
	}
	defer rows.Close()
	items := make([]dashboard.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: list items: %w", err)
	}
	dashboard.SortItems(items)
	return items, nil
}

// GetItem returns one item or dashboard.ErrNotFound.
func (s *Store) GetItem(ctx context.Context, id string) (dashboard.Item, error) {
	return getItem(ctx, s.db, id)
}

// CreateItem inserts item, assigning an id and creation time when missing.
func (s *Store) CreateItem(ctx context.Context, item dashboard.Item) (dashboard.Item, error) {
	item = s.stamp(item, 0)
	if err := insertItem(ctx, s.db, item); err != nil {
		return dashboard.Item{}, err
	}
	return item, nil
}

// UpdateItem applies patch inside a transaction.
func (s *Store) UpdateItem(ctx context.Context, id string, patch dashboard.ItemPatch) (dashboard.Item, error) {
	var updated dashboard.Item
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := getItem(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(current)
		_, err = tx.ExecContext(ctx, `UPDATE dashboard_items SET
			name = ?, url = ?, description = ?, icon = ?, category = ?, category_icon = ?,
			username = ?, secret_key = ?, order_index = ?, is_admin_only = ?, size = ?, environment = ?
			WHERE id = ?`,
			updated.Name, updated.URL, updated.Description, updated.Icon, updated.Category, updated.CategoryIcon,
			updated.Username, updated.SecretKey, updated.OrderIndex, updated.IsAdminOnly, string(updated.Size),
			string(updated.Environment), id)
		if err != nil {
			return fmt.Errorf("sqlstore: update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return dashboard.Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM dashboard_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("sqlstore: delete item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return dashboard.ErrNotFound
	}
	return nil
}

// ReplaceItems inserts items with fresh ids in one transaction, first clearing
// the table when replaceExisting is set.
func (s *Store) ReplaceItems(ctx context.Context, items []dashboard.Item, replaceExisting bool) (int, error) {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if replaceExisting {
			if _, err := tx.ExecContext(ctx, "DELETE FROM dashboard_items"); err != nil {
				return fmt.Errorf("sqlstore: clear items: %w", err)
			}
		}
		for i, item := range items {
			item.ID = ""
			item.CreatedAt = time.Time{}
			if err := insertItem(ctx, tx, s.stamp(item, i)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// CategoryOrder returns every stored rank.
func (s *Store) CategoryOrder(ctx context.Context) (dashboard.CategoryOrder, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT category_name, order_index FROM category_order")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: load category order: %w", err)
	}
	defer rows.Close()
	order := dashboard.CategoryOrder{}
	for rows.Next() {
		var (
			name string
			rank int
		)
		if err := rows.Scan(&name, &rank); err != nil {
			return nil, fmt.Errorf("sqlstore: scan category order: %w", err)
		}
		order[name] = rank
	}
	return order, rows.Err()
}

// SaveCategoryOrder upserts ranks in one transaction.
func (s *Store) SaveCategoryOrder(ctx context.Context, order dashboard.CategoryOrder) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for name, rank := range order {
			if _, err := tx.ExecContext(ctx, `INSERT INTO category_order (category_name, order_index) VALUES (?, ?)
				ON CONFLICT(category_name) DO UPDATE SET order_index = excluded.order_index`, name, rank); err != nil {
				return fmt.Errorf("sqlstore: save category %q: %w", name, err)
			}
		}
		return nil
	})
}

// DeleteCategoryOrder removes a category's rank.
func (s *Store) DeleteCategoryOrder(ctx context.Context, category string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM category_order WHERE category_name = ?", category); err != nil {
		return fmt.Errorf("sqlstore: delete category order: %w", err)
	}
	return nil
}

// EnsureCategory appends category after the highest rank when it has none.
func (s *Store) EnsureCategory(ctx context.Context, category string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO category_order (category_name, order_index)
		SELECT ?, COALESCE(MAX(order_index) + 1, 0) FROM category_order`, category)
	if err != nil {
		return fmt.Errorf("sqlstore: ensure category: %w", err)
	}
	return nil
}

func (s *Store) stamp(item dashboard.Item, offset int) dashboard.Item {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = s.now().Add(time.Duration(offset) * time.Microsecond)
	}
	return item
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...any) error
}

func getItem(ctx context.Context, q queryer, id string) (dashboard.Item, error) {
	row := q.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM dashboard_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return dashboard.Item{}, dashboard.ErrNotFound
	}
	return item, err
}

func insertItem(ctx context.Context, e execer, item dashboard.Item) error {
	_, err := e.ExecContext(ctx, "INSERT INTO dashboard_items ("+itemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.Name, item.URL, item.Description, item.Icon, item.Category, item.CategoryIcon,
		item.Username, item.SecretKey, item.OrderIndex, item.IsAdminOnly, string(item.Size),
		string(item.Environment), item.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("sqlstore: insert item: %w", err)
	}
	return nil
}

func scanItem(row scanner) (dashboard.Item, error) {
	var (
		item      dashboard.Item
		size, env string
		created   string
	)
	err := row.Scan(&item.ID, &item.Name, &item.URL, &item.Description, &item.Icon, &item.Category,
		&item.CategoryIcon, &item.Username, &item.SecretKey, &item.OrderIndex, &item.IsAdminOnly,
		&size, &env, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dashboard.Item{}, err
		}
		return dashboard.Item{}, fmt.Errorf("sqlstore: scan item: %w", err)
	}
	item.Size = dashboard.ItemSize(size)
	item.Environment = dashboard.Environment(strings.ToLower(env))
	if ts, err := time.Parse(timeLayout, created); err == nil {
		item.CreatedAt = ts
	}
	return item, nil
}
