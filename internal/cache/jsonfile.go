// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"crawshaw.dev/jsonfile"
)

// JSONFileBackend is a file-backed implementation of the [Backend] interface.
// Entries survive restarts.
type JSONFileBackend struct {
	f *jsonfile.JSONFile[jsonData]
}

type jsonData struct {
	Data map[string][]byte `json:"data"`
}

// NewJSONFileBackend creates a new [JSONFileBackend] backed by the file at
// path, creating it if it doesn't exist.
func NewJSONFileBackend(path string) (*JSONFileBackend, error) {
	f, err := jsonfile.Load[jsonData](path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = jsonfile.New[jsonData](path)
		if err == nil {
			err = f.Write(func(d *jsonData) error {
				d.Data = make(map[string][]byte)
				return nil
			})
		}
	}
	if err != nil {
		return nil, err
	}
	return &JSONFileBackend{f: f}, nil
}

// Get retrieves a value for a given key.
func (b *JSONFileBackend) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	b.f.Read(func(d *jsonData) {
		if v, ok := d.Data[key]; ok {
			val = append([]byte(nil), v...)
		}
	})
	return val, nil
}

// Set stores a value for a given key.
func (b *JSONFileBackend) Set(_ context.Context, key string, value []byte) error {
	return b.f.Write(func(d *jsonData) error {
		if d.Data == nil {
			d.Data = make(map[string][]byte)
		}
		d.Data[key] = append([]byte(nil), value...)
		return nil
	})
}

// Delete removes a value for a given key.
func (b *JSONFileBackend) Delete(_ context.Context, key string) error {
	return b.f.Write(func(d *jsonData) error {
		delete(d.Data, key)
		return nil
	})
}

// Keys returns all keys that start with the given prefix.
func (b *JSONFileBackend) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	b.f.Read(func(d *jsonData) {
		for k := range d.Data {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
	})
	return keys, nil
}

// Close closes the file backend.
func (b *JSONFileBackend) Close() error { return nil }
