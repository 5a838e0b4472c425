// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package cache implements an expiring key-value cache on top of a pluggable
// storage backend.
//
// Each entry is stored as a JSON envelope carrying the payload, the time it
// was stored and its time-to-live. TTL is tracked per entry, so values with
// different freshness windows (say, repository metadata for a day and commit
// lists for an hour) can share one backend. An expired entry behaves exactly
// like a missing one and is purged on the next read.
//
// Caching here is a performance optimization, not a correctness requirement:
// storage failures are logged and swallowed, and a cache that persistently
// fails simply degrades to a cache that never hits.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"go.astrophena.name/site/internal/logger"
)

// DefaultPrefix is the namespace prefix prepended to every key, keeping cache
// entries apart from unrelated data in a shared backend.
const DefaultPrefix = "portfolio_cache_"

// Cache provides get/set/remove/clear operations over a namespaced partition
// of a [Backend], with per-entry expiry.
type Cache struct {
	backend Backend
	prefix  string
	logf    logger.Logf
	now     func() time.Time
}

// New returns a [Cache] backed by b, namespaced under [DefaultPrefix],
// logging through logf. If logf is nil, log.Printf is used.
func New(b Backend, logf logger.Logf) *Cache {
	if logf == nil {
		logf = log.Printf
	}
	return &Cache{
		backend: b,
		prefix:  DefaultPrefix,
		logf:    logf,
		now:     time.Now,
	}
}

// envelope is the serialized form of a cache entry.
type envelope struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt int64           `json:"stored_at"` // milliseconds since Unix epoch
	TTL      int64           `json:"ttl"`       // milliseconds
}

func (e *envelope) expired(now time.Time) bool {
	return now.UnixMilli()-e.StoredAt > e.TTL
}

// Set stores value under key with the given time-to-live.
//
// Backend write failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		c.logf("cache: marshaling value for %q: %v", key, err)
		return
	}
	b, err := json.Marshal(&envelope{
		Payload:  payload,
		StoredAt: c.now().UnixMilli(),
		TTL:      ttl.Milliseconds(),
	})
	if err != nil {
		c.logf("cache: marshaling entry for %q: %v", key, err)
		return
	}
	if err := c.backend.Set(ctx, c.prefix+key, b); err != nil {
		c.logf("cache: writing %q: %v", key, err)
	}
}

// Get reads the entry under key into dest, reporting whether a valid entry
// was found. A missing, corrupt or expired entry reads as absent; expired and
// corrupt entries are purged.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	e, ok := c.read(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(e.Payload, dest); err != nil {
		c.logf("cache: unmarshaling payload of %q: %v", key, err)
		return false
	}
	return true
}

// IsValid reports whether a valid (present and unexpired) entry exists under
// key.
func (c *Cache) IsValid(ctx context.Context, key string) bool {
	_, ok := c.read(ctx, key)
	return ok
}

// Age returns how long ago the entry under key was stored.
func (c *Cache) Age(ctx context.Context, key string) (time.Duration, bool) {
	e, ok := c.read(ctx, key)
	if !ok {
		return 0, false
	}
	return time.Duration(c.now().UnixMilli()-e.StoredAt) * time.Millisecond, true
}

// Remaining returns how long the entry under key stays valid.
func (c *Cache) Remaining(ctx context.Context, key string) (time.Duration, bool) {
	e, ok := c.read(ctx, key)
	if !ok {
		return 0, false
	}
	left := e.TTL - (c.now().UnixMilli() - e.StoredAt)
	return time.Duration(left) * time.Millisecond, true
}

// Touch updates the time-to-live of the entry under key without changing its
// payload or store time. It reports whether the entry existed.
func (c *Cache) Touch(ctx context.Context, key string, ttl time.Duration) bool {
	e, ok := c.read(ctx, key)
	if !ok {
		return false
	}
	e.TTL = ttl.Milliseconds()
	b, err := json.Marshal(e)
	if err != nil {
		c.logf("cache: marshaling entry for %q: %v", key, err)
		return false
	}
	if err := c.backend.Set(ctx, c.prefix+key, b); err != nil {
		c.logf("cache: writing %q: %v", key, err)
		return false
	}
	return true
}

// Remove deletes the entry under key. Removing a missing key is a no-op.
func (c *Cache) Remove(ctx context.Context, key string) {
	if err := c.backend.Delete(ctx, c.prefix+key); err != nil {
		c.logf("cache: deleting %q: %v", key, err)
	}
}

// ClearAll deletes every entry under the cache's namespace prefix, leaving
// unrelated backend keys untouched.
func (c *Cache) ClearAll(ctx context.Context) {
	keys, err := c.backend.Keys(ctx, c.prefix)
	if err != nil {
		c.logf("cache: listing keys: %v", err)
		return
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, c.prefix) {
			continue
		}
		if err := c.backend.Delete(ctx, k); err != nil {
			c.logf("cache: deleting %q: %v", strings.TrimPrefix(k, c.prefix), err)
		}
	}
}

// read fetches and validates the envelope under key, purging expired or
// corrupt entries.
func (c *Cache) read(ctx context.Context, key string) (*envelope, bool) {
	b, err := c.backend.Get(ctx, c.prefix+key)
	if err != nil {
		c.logf("cache: reading %q: %v", key, err)
		return nil, false
	}
	if b == nil {
		return nil, false
	}
	var e envelope
	if err := json.Unmarshal(b, &e); err != nil {
		c.logf("cache: corrupt entry %q, purging: %v", key, err)
		c.Remove(ctx, key)
		return nil, false
	}
	if e.expired(c.now()) {
		c.Remove(ctx, key)
		return nil, false
	}
	return &e, true
}
