// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend is a PostgreSQL implementation of the [Backend] interface.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend creates a new PostgresBackend and connects to the
// database.
func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		);
	`); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresBackend{pool: pool}, nil
}

// Get retrieves a value for a given key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.pool.QueryRow(ctx, `
		SELECT value FROM kv WHERE key = $1;
	`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set stores a value for a given key.
func (b *PostgresBackend) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = excluded.value;
	`, key, value)
	return err
}

// Delete removes a value for a given key.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	_, err := b.pool.Exec(ctx, `DELETE FROM kv WHERE key = $1;`, key)
	return err
}

// Keys returns all keys that start with the given prefix.
func (b *PostgresBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.pool.Query(ctx, `
		SELECT key FROM kv WHERE key LIKE $1 ESCAPE '\';
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

// Close closes the connection pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
