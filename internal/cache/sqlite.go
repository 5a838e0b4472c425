// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"database/sql"

	_ "github.com/tailscale/sqlite"
)

// SQLiteBackend is a SQLite implementation of the [Backend] interface.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend creates a new [SQLiteBackend] and connects to the database.
func NewSQLiteBackend(ctx context.Context, dsn string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		);
	`); err != nil {
		return nil, err
	}

	return &SQLiteBackend{db: db}, nil
}

// Get retrieves a value for a given key.
func (b *SQLiteBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	if err := b.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ?;
	`, key).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Set stores a value for a given key.
func (b *SQLiteBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO kv (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value;
	`, key, value)
	return err
}

// Delete removes a value for a given key.
func (b *SQLiteBackend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?;`, key)
	return err
}

// Keys returns all keys that start with the given prefix.
func (b *SQLiteBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, `
		SELECT key FROM kv WHERE key LIKE ? ESCAPE '\';
	`, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
