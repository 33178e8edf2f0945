package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"todosync/internal/model"
)

// Cache persists the last received snapshot so the UI has something to render
// before the first live snapshot arrives. It mirrors the mirror: every save is
// a total overwrite, loads return exactly what was last saved.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) the snapshot cache at path.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	const schema = `
CREATE TABLE IF NOT EXISTS items (
	position       INTEGER PRIMARY KEY,
	id             TEXT NOT NULL,
	content        TEXT NOT NULL,
	done           INTEGER NOT NULL DEFAULT 0,
	attachment_ref TEXT NOT NULL DEFAULT ''
);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init snapshot cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

// Save overwrites the cached snapshot. The delete+insert runs in one
// transaction so a crash never leaves a half-replaced snapshot behind.
func (c *Cache) Save(ctx context.Context, snap model.Snapshot) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (position, id, content, done, attachment_ref) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, it := range snap {
		done := 0
		if it.Done {
			done = 1
		}
		if _, err := stmt.ExecContext(ctx, i, it.ID, it.Content, done, it.AttachmentRef); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load returns the cached snapshot in saved order. An empty cache yields an
// empty snapshot, not an error.
func (c *Cache) Load(ctx context.Context) (model.Snapshot, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, content, done, attachment_ref FROM items ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snap model.Snapshot
	for rows.Next() {
		var it model.Item
		var done int
		if err := rows.Scan(&it.ID, &it.Content, &done, &it.AttachmentRef); err != nil {
			return nil, err
		}
		it.Done = done != 0
		snap = append(snap, it)
	}
	return snap, rows.Err()
}
