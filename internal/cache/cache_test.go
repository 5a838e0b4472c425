// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cache

import (
	"context"
	"testing"
	"time"

	"go.astrophena.name/site/internal/testutil"
)

// testCache returns a memory-backed cache with a controllable clock.
func testCache(t *testing.T) (*Cache, *time.Time) {
	t.Helper()
	now := time.Now()
	c := New(NewMemBackend(), t.Logf)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)
	ctx := context.Background()

	type payload struct {
		Name   string   `json:"name"`
		Stars  int      `json:"stars"`
		Topics []string `json:"topics"`
	}

	want := payload{Name: "site", Stars: 42, Topics: []string{"go", "portfolio"}}
	c.Set(ctx, "repo", want, time.Hour)

	var got payload
	if !c.Get(ctx, "repo", &got) {
		t.Fatal("Get returned false after Set")
	}
	testutil.AssertEqual(t, got, want)
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)

	var v string
	if c.Get(context.Background(), "nope", &v) {
		t.Fatal("Get returned true for a missing key")
	}
}

func TestExpiredTTL(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)
	ctx := context.Background()

	// An already-expired TTL must read as absent.
	c.Set(ctx, "stale", "value", -time.Second)

	var v string
	if c.Get(ctx, "stale", &v) {
		t.Fatal("Get returned true for an entry with negative TTL")
	}

	// The expired entry must be purged from the backend.
	b, err := c.backend.Get(ctx, c.prefix+"stale")
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatal("expired entry was not purged on read")
	}
}

func TestExpiryAfterClockAdvance(t *testing.T) {
	t.Parallel()

	c, now := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", 1, time.Minute)

	var v int
	if !c.Get(ctx, "k", &v) {
		t.Fatal("entry expired prematurely")
	}

	*now = now.Add(time.Minute + time.Millisecond)
	if c.Get(ctx, "k", &v) {
		t.Fatal("entry did not expire after its TTL elapsed")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "other", "untouched", time.Hour)

	// Removing a missing key must not disturb anything else.
	c.Remove(ctx, "absent")
	c.Remove(ctx, "absent")

	var v string
	if !c.Get(ctx, "other", &v) {
		t.Fatal("unrelated entry disappeared after Remove of a missing key")
	}
	testutil.AssertEqual(t, v, "untouched")
}

func TestClearAllNamespaceIsolation(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "a", 1, time.Hour)
	c.Set(ctx, "b", 2, time.Hour)

	// An unrelated key in the same backend, outside the cache's namespace.
	if err := c.backend.Set(ctx, "unrelated_key", []byte("keep me")); err != nil {
		t.Fatal(err)
	}

	c.ClearAll(ctx)

	var v int
	if c.Get(ctx, "a", &v) || c.Get(ctx, "b", &v) {
		t.Fatal("ClearAll left namespaced entries behind")
	}

	b, err := c.backend.Get(ctx, "unrelated_key")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, string(b), "keep me")
}

func TestCorruptEntry(t *testing.T) {
	t.Parallel()

	c, _ := testCache(t)
	ctx := context.Background()

	if err := c.backend.Set(ctx, c.prefix+"corrupt", []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	var v string
	if c.Get(ctx, "corrupt", &v) {
		t.Fatal("Get returned true for a corrupt entry")
	}

	// The corrupt entry must be purged.
	b, err := c.backend.Get(ctx, c.prefix+"corrupt")
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatal("corrupt entry was not purged on read")
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	c, now := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Minute)
	testutil.AssertEqual(t, c.IsValid(ctx, "k"), true)
	testutil.AssertEqual(t, c.IsValid(ctx, "missing"), false)

	*now = now.Add(2 * time.Minute)
	testutil.AssertEqual(t, c.IsValid(ctx, "k"), false)
}

func TestAgeAndRemaining(t *testing.T) {
	t.Parallel()

	c, now := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "v", time.Hour)
	*now = now.Add(15 * time.Minute)

	age, ok := c.Age(ctx, "k")
	if !ok {
		t.Fatal("Age: entry not found")
	}
	testutil.AssertEqual(t, age, 15*time.Minute)

	left, ok := c.Remaining(ctx, "k")
	if !ok {
		t.Fatal("Remaining: entry not found")
	}
	testutil.AssertEqual(t, left, 45*time.Minute)
}

func TestTouch(t *testing.T) {
	t.Parallel()

	c, now := testCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", "payload", time.Minute)

	// Extend the TTL so the entry survives past its original expiry.
	if !c.Touch(ctx, "k", time.Hour) {
		t.Fatal("Touch returned false for an existing entry")
	}

	*now = now.Add(30 * time.Minute)

	var v string
	if !c.Get(ctx, "k", &v) {
		t.Fatal("entry expired despite extended TTL")
	}
	testutil.AssertEqual(t, v, "payload")

	if c.Touch(ctx, "missing", time.Hour) {
		t.Fatal("Touch returned true for a missing entry")
	}
}
