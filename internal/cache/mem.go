// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"strings"

	"go.astrophena.name/site/internal/util/syncx"
)

// MemBackend is an in-memory implementation of the [Backend] interface.
type MemBackend struct {
	m syncx.Map[string, []byte]
}

// NewMemBackend creates a new MemBackend.
func NewMemBackend() *MemBackend {
	return &MemBackend{}
}

// Get retrieves a value for a given key.
func (b *MemBackend) Get(_ context.Context, key string) ([]byte, error) {
	val, ok := b.m.Load(key)
	if !ok {
		return nil, nil
	}
	// Return a copy to prevent the caller from mutating the stored value.
	return append([]byte(nil), val...), nil
}

// Set stores a value for a given key.
func (b *MemBackend) Set(_ context.Context, key string, value []byte) error {
	b.m.Store(key, append([]byte(nil), value...))
	return nil
}

// Delete removes a value for a given key.
func (b *MemBackend) Delete(_ context.Context, key string) error {
	b.m.Delete(key)
	return nil
}

// Keys returns all keys that start with the given prefix.
func (b *MemBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	b.m.Range(func(key string, _ []byte) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, nil
}

// Close is a no-op for MemBackend.
func (b *MemBackend) Close() error { return nil }
