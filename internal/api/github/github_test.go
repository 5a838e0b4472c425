// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.astrophena.name/site/internal/cache"
	"go.astrophena.name/site/internal/testutil"
)

const repoJSON = `{
	"stargazers_count": 128,
	"forks_count": 16,
	"watchers_count": 128,
	"open_issues_count": 3,
	"language": "Go",
	"topics": ["portfolio", "website"],
	"description": "My personal website.",
	"homepage": "https://astrophena.name",
	"size": 2048,
	"default_branch": "master",
	"created_at": "2020-01-02T15:04:05Z",
	"updated_at": "2025-06-01T10:00:00Z",
	"pushed_at": "2025-06-10T08:30:00Z"
}`

// testClient returns a Client talking to a stub API server and the number of
// requests the server has seen.
func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(ts.Close)
	return &Client{
		BaseURL: ts.URL,
		Cache:   cache.New(cache.NewMemBackend(), t.Logf),
		Logf:    t.Logf,
	}, &hits
}

func TestRepoStats(t *testing.T) {
	t.Parallel()

	c, hits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/repos/astrophena/site")
		testutil.AssertEqual(t, r.Header.Get("Accept"), "application/vnd.github.v3+json")
		w.Write([]byte(repoJSON))
	})

	got := c.RepoStats(context.Background(), "astrophena", "site")
	if got == nil {
		t.Fatal("RepoStats returned nil for a valid repository")
	}
	testutil.AssertEqual(t, got, &RepoStats{
		Stars:         128,
		Forks:         16,
		Watchers:      128,
		OpenIssues:    3,
		Language:      "Go",
		Topics:        []string{"portfolio", "website"},
		Description:   "My personal website.",
		Homepage:      "https://astrophena.name",
		SizeKB:        2048,
		DefaultBranch: "master",
		CreatedAt:     "2020-01-02T15:04:05Z",
		UpdatedAt:     "2025-06-01T10:00:00Z",
		PushedAt:      "2025-06-10T08:30:00Z",
	})

	// A second call within the TTL window must be served from cache.
	got2 := c.RepoStats(context.Background(), "astrophena", "site")
	testutil.AssertEqual(t, got2, got)
	testutil.AssertEqual(t, hits.Load(), int64(1))
}

func TestRepoStatsMissingFieldsDefaultToZero(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"default_branch": "main"}`))
	})

	got := c.RepoStats(context.Background(), "astrophena", "empty")
	if got == nil {
		t.Fatal("RepoStats returned nil")
	}
	testutil.AssertEqual(t, got.Stars, 0)
	testutil.AssertEqual(t, got.Forks, 0)
	testutil.AssertEqual(t, got.OpenIssues, 0)
	testutil.AssertEqual(t, got.Language, "")
	testutil.AssertEqual(t, got.DefaultBranch, "main")
}

func TestRepoStatsNotFound(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	ctx := context.Background()
	if got := c.RepoStats(ctx, "astrophena", "ghost"); got != nil {
		t.Fatalf("RepoStats for a missing repository = %+v, want nil", got)
	}

	// Failures must not be cached.
	testutil.AssertEqual(t, c.Cache.IsValid(ctx, "repo_stats_astrophena_ghost"), false)
}

func TestRepoStatsRateLimited(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "API rate limit exceeded"}`, http.StatusForbidden)
	})

	if got := c.RepoStats(context.Background(), "astrophena", "site"); got != nil {
		t.Fatalf("RepoStats while rate limited = %+v, want nil", got)
	}
}

func TestRepoStatsUpstreamError(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "oops", http.StatusInternalServerError)
	})

	if got := c.RepoStats(context.Background(), "astrophena", "site"); got != nil {
		t.Fatalf("RepoStats on upstream error = %+v, want nil", got)
	}
}

func TestRepoStatsTransportError(t *testing.T) {
	t.Parallel()

	c := &Client{
		// Nothing listens there.
		BaseURL: "http://127.0.0.1:1",
		Logf:    t.Logf,
	}

	if got := c.RepoStats(context.Background(), "astrophena", "site"); got != nil {
		t.Fatalf("RepoStats on transport error = %+v, want nil", got)
	}
}

func TestRepoStatsMalformedJSON(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	if got := c.RepoStats(context.Background(), "astrophena", "site"); got != nil {
		t.Fatalf("RepoStats on malformed JSON = %+v, want nil", got)
	}
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	c, hits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/repos/astrophena/site/languages")
		w.Write([]byte(`{"Go": 12000, "HTML": 3000, "CSS": 1000}`))
	})

	ctx := context.Background()
	got := c.Languages(ctx, "astrophena", "site")
	testutil.AssertEqual(t, got, map[string]int{"Go": 12000, "HTML": 3000, "CSS": 1000})

	c.Languages(ctx, "astrophena", "site")
	testutil.AssertEqual(t, hits.Load(), int64(1))
}

func TestLatestCommits(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/repos/astrophena/site/commits")
		testutil.AssertEqual(t, r.URL.Query().Get("per_page"), "2")
		w.Write([]byte(`[
			{
				"sha": "abc123",
				"html_url": "https://github.com/astrophena/site/commit/abc123",
				"commit": {
					"message": "site: update about page",
					"author": {"name": "Ilya Mateyko", "date": "2025-06-10T08:30:00Z"}
				}
			},
			{
				"sha": "def456",
				"html_url": "https://github.com/astrophena/site/commit/def456",
				"commit": {
					"message": "site: fix typo",
					"author": {"name": "Ilya Mateyko", "date": "2025-06-09T19:00:00Z"}
				}
			}
		]`))
	})

	got := c.LatestCommits(context.Background(), "astrophena", "site", 2)
	testutil.AssertEqual(t, got, []Commit{
		{
			SHA:     "abc123",
			Message: "site: update about page",
			Author:  "Ilya Mateyko",
			Date:    "2025-06-10T08:30:00Z",
			URL:     "https://github.com/astrophena/site/commit/abc123",
		},
		{
			SHA:     "def456",
			Message: "site: fix typo",
			Author:  "Ilya Mateyko",
			Date:    "2025-06-09T19:00:00Z",
			URL:     "https://github.com/astrophena/site/commit/def456",
		},
	})
}

func TestLatestCommitsDefaultCount(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Query().Get("per_page"), "5")
		w.Write([]byte(`[]`))
	})

	c.LatestCommits(context.Background(), "astrophena", "site", 0)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	c, hits := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.URL.Path, "/rate_limit")
		w.Write([]byte(`{"rate": {"limit": 60, "remaining": 42, "reset": 1750000000}}`))
	})

	ctx := context.Background()
	got := c.RateLimit(ctx)
	testutil.AssertEqual(t, got, &RateLimit{Limit: 60, Remaining: 42, Reset: 1750000000})

	// Rate limit information is never cached.
	c.RateLimit(ctx)
	testutil.AssertEqual(t, hits.Load(), int64(2))
}

func TestTokenHeader(t *testing.T) {
	t.Parallel()

	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertEqual(t, r.Header.Get("Authorization"), "Bearer secret")
		w.Write([]byte(repoJSON))
	})
	c.Token = "secret"

	if got := c.RepoStats(context.Background(), "astrophena", "site"); got == nil {
		t.Fatal("RepoStats returned nil")
	}
}
