// Package history persists recent conversions per UI tab in SQLite.
//
// The cache is intentionally small: each tab keeps at most a fixed number
// of rows and inserting trims the oldest past the cap, so the file never
// grows without bound. The pure-Go driver keeps the binary cgo-free.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an item id does not exist.
var ErrNotFound = errors.New("history item not found")

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tab TEXT NOT NULL,
	title TEXT NOT NULL,
	data TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_tab ON history(tab, id DESC);
`

// Item is one cached conversion.
type Item struct {
	ID        int64     `json:"id"`
	Tab       string    `json:"tab"`
	Title     string    `json:"title"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store is the SQLite-backed history cache.
type Store struct {
	db       *sql.DB
	maxItems int
}

// Open opens or creates the history database and applies the schema.
// maxItems caps the rows kept per tab.
func Open(path string, maxItems int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	// SQLite allows one writer; serialize access through a single conn.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying history schema: %w", err)
	}
	return &Store{db: db, maxItems: maxItems}, nil
}

// Insert adds an item to a tab and trims that tab to the row cap. Returns
// the new item's id.
func (s *Store) Insert(ctx context.Context, tab, title, data string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO history (tab, title, data, created_at) VALUES (?, ?, ?, ?)`,
		tab, title, data, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("inserting history item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("inserting history item: %w", err)
	}

	if s.maxItems > 0 {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM history WHERE tab = ? AND id NOT IN
			 (SELECT id FROM history WHERE tab = ? ORDER BY id DESC LIMIT ?)`,
			tab, tab, s.maxItems)
		if err != nil {
			return 0, fmt.Errorf("trimming history: %w", err)
		}
	}
	return id, nil
}

// List returns a tab's items, newest first.
func (s *Store) List(ctx context.Context, tab string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tab, title, data, created_at FROM history WHERE tab = ? ORDER BY id DESC`, tab)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return items, nil
}

// Get returns one item by id.
func (s *Store) Get(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, tab, title, data, created_at FROM history WHERE id = ?`, id)
	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes one item by id. Deleting a missing id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting history item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting history item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanItem(scan func(...any) error) (Item, error) {
	var item Item
	var created int64
	if err := scan(&item.ID, &item.Tab, &item.Title, &item.Data, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, err
		}
		return Item{}, fmt.Errorf("scanning history item: %w", err)
	}
	item.CreatedAt = time.Unix(created, 0)
	return item, nil
}
