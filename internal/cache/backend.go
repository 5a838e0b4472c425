// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"fmt"
	"strings"
)

// Backend is a generic interface for a key-value store that holds serialized
// cache entries. Expiry is not a backend concern: entries are opaque bytes and
// all TTL logic lives in [Cache].
type Backend interface {
	// Get retrieves a value for a given key.
	// It must return (nil, nil) if the key is not found.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value for a given key.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a value for a given key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error
	// Keys returns all keys that start with the given prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Close closes the backend and releases any resources.
	Close() error
}

// Open creates a [Backend] from a DSN string.
//
// Supported forms:
//
//	mem
//	file:<path>
//	sqlite:<dsn>
//	postgres:<url>
func Open(ctx context.Context, dsn string) (Backend, error) {
	if dsn == "mem" {
		return NewMemBackend(), nil
	}
	scheme, rest, ok := strings.Cut(dsn, ":")
	if !ok {
		return nil, fmt.Errorf("invalid backend DSN %q", dsn)
	}
	switch scheme {
	case "file":
		return NewJSONFileBackend(rest)
	case "sqlite":
		return NewSQLiteBackend(ctx, rest)
	case "postgres":
		// The URL form of a Postgres DSN includes the scheme itself.
		return NewPostgresBackend(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown backend %q", scheme)
}

// escapeLike escapes LIKE metacharacters in s so that a LIKE pattern built
// from it matches s literally. The namespace prefix contains underscores,
// which LIKE would otherwise treat as single-character wildcards.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
