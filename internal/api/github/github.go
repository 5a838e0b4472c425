// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package github provides a client for fetching repository statistics from
// the GitHub REST API.
//
// The client is built for decorating a website with stats, not for
// transactional work: every fetch method returns nil on any failure (not
// found, rate limited, upstream error, network error) so that callers can
// uniformly render an "unavailable" state. The underlying causes stay
// distinguishable in logs.
//
// Unauthenticated requests are limited to 60 per hour, so results are cached:
// repository metadata and language breakdowns for a day, commit lists for an
// hour. Concurrent fetches of the same resource are collapsed into a single
// upstream request.
package github

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"go.astrophena.name/site/internal/cache"
	"go.astrophena.name/site/internal/logger"
	"go.astrophena.name/site/internal/request"

	"golang.org/x/sync/singleflight"
)

const defaultAPI = "https://api.github.com"

// Cache lifetimes. Repository metadata changes rarely, commit history
// doesn't.
const (
	repoTTL    = 24 * time.Hour
	commitsTTL = time.Hour
)

// Client represents a GitHub API client.
type Client struct {
	// Token is the GitHub access token used for authentication. If empty,
	// requests are unauthenticated and the 60 requests/hour rate limit applies.
	Token string
	// HTTPClient is an optional custom HTTP client object to use for requests.
	// If not provided, request.DefaultClient will be used.
	HTTPClient *http.Client
	// Cache is an optional cache for fetched data. If nil, every call hits the
	// network.
	Cache *cache.Cache
	// Logf is used for logging failures. If nil, log.Printf is used.
	Logf logger.Logf
	// BaseURL is an optional API base URL override, used in tests. If empty,
	// the public GitHub API is used.
	BaseURL string

	group singleflight.Group
}

// RepoStats is the normalized shape of repository metadata returned to
// callers. It is only ever constructed from a successful, well-formed
// upstream response.
type RepoStats struct {
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Watchers      int      `json:"watchers"`
	OpenIssues    int      `json:"open_issues"`
	Language      string   `json:"language,omitempty"`
	Topics        []string `json:"topics,omitempty"`
	Description   string   `json:"description,omitempty"`
	Homepage      string   `json:"homepage,omitempty"`
	SizeKB        int      `json:"size_kb"`
	DefaultBranch string   `json:"default_branch"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	PushedAt      string   `json:"pushed_at"`
}

// Commit is a single commit from the repository's recent history.
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	URL     string `json:"url"`
}

// RateLimit describes the state of the API rate limit.
type RateLimit struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}

// RepoStats fetches normalized metadata of the given repository, or returns
// nil if it's unavailable for any reason.
func (c *Client) RepoStats(ctx context.Context, owner, repo string) *RepoStats {
	return fetchCached[*RepoStats](ctx, c, "repo_stats_"+owner+"_"+repo, repoTTL, func() (*RepoStats, error) {
		r, err := getJSON[upstreamRepo](ctx, c, "/repos/"+owner+"/"+repo)
		if err != nil {
			return nil, err
		}
		return &RepoStats{
			Stars:         r.StargazersCount,
			Forks:         r.ForksCount,
			Watchers:      r.WatchersCount,
			OpenIssues:    r.OpenIssuesCount,
			Language:      r.Language,
			Topics:        r.Topics,
			Description:   r.Description,
			Homepage:      r.Homepage,
			SizeKB:        r.Size,
			DefaultBranch: r.DefaultBranch,
			CreatedAt:     r.CreatedAt,
			UpdatedAt:     r.UpdatedAt,
			PushedAt:      r.PushedAt,
		}, nil
	})
}

// Languages fetches the byte counts per language of the given repository, or
// returns nil if they are unavailable for any reason.
func (c *Client) Languages(ctx context.Context, owner, repo string) map[string]int {
	return fetchCached[map[string]int](ctx, c, "repo_languages_"+owner+"_"+repo, repoTTL, func() (map[string]int, error) {
		return getJSON[map[string]int](ctx, c, "/repos/"+owner+"/"+repo+"/languages")
	})
}

// LatestCommits fetches the count most recent commits of the given
// repository, or returns nil if they are unavailable for any reason. If count
// is not positive, it defaults to 5.
func (c *Client) LatestCommits(ctx context.Context, owner, repo string, count int) []Commit {
	if count <= 0 {
		count = 5
	}
	key := "latest_commits_" + owner + "_" + repo + "_" + strconv.Itoa(count)
	return fetchCached[[]Commit](ctx, c, key, commitsTTL, func() ([]Commit, error) {
		ucs, err := getJSON[[]upstreamCommit](ctx, c, "/repos/"+owner+"/"+repo+"/commits?per_page="+strconv.Itoa(count))
		if err != nil {
			return nil, err
		}
		commits := make([]Commit, 0, len(ucs))
		for _, uc := range ucs {
			commits = append(commits, Commit{
				SHA:     uc.SHA,
				Message: uc.Commit.Message,
				Author:  uc.Commit.Author.Name,
				Date:    uc.Commit.Author.Date,
				URL:     uc.HTMLURL,
			})
		}
		return commits, nil
	})
}

// RateLimit fetches the current API rate limit. It is never cached: the whole
// point of asking is getting a live number. Returns nil on any failure.
func (c *Client) RateLimit(ctx context.Context) *RateLimit {
	r, err := getJSON[upstreamRateLimit](ctx, c, "/rate_limit")
	if err != nil {
		c.report("rate limit", err)
		return nil
	}
	return &RateLimit{
		Limit:     r.Rate.Limit,
		Remaining: r.Rate.Remaining,
		Reset:     r.Rate.Reset,
	}
}

// fetchCached implements the cache-then-fetch pattern shared by all fetch
// methods: return the cached value if present, otherwise fetch, classify
// failures and cache the result. Concurrent fetches of the same key are
// collapsed via singleflight.
func fetchCached[T any](ctx context.Context, c *Client, key string, ttl time.Duration, fetch func() (T, error)) T {
	var zero T
	if c.Cache != nil {
		var cached T
		if c.Cache.Get(ctx, key, &cached) {
			return cached
		}
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		got, err := fetch()
		if err != nil {
			return zero, err
		}
		if c.Cache != nil {
			c.Cache.Set(ctx, key, got, ttl)
		}
		return got, nil
	})
	if err != nil {
		c.report(key, err)
		return zero
	}
	return v.(T)
}

// getJSON makes a GET request to the GitHub API and unmarshals the response.
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	api := defaultAPI
	if c.BaseURL != "" {
		api = c.BaseURL
	}
	headers := map[string]string{
		"Accept": "application/vnd.github.v3+json",
		// This package owns caching semantics, bypass any HTTP-level cache.
		"Cache-Control": "no-store",
	}
	if c.Token != "" {
		headers["Authorization"] = "Bearer " + c.Token
	}
	return request.MakeJSON[T](ctx, request.Params{
		Method:     http.MethodGet,
		URL:        api + path,
		Headers:    headers,
		HTTPClient: c.HTTPClient,
	})
}

// report logs a fetch failure, keeping the different causes apart: not found
// and rate limiting are expected outcomes, everything else is not.
func (c *Client) report(what string, err error) {
	logf := c.Logf
	if logf == nil {
		logf = log.Printf
	}
	var se *request.StatusError
	switch {
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		logf("github: %s: not found", what)
	case errors.As(err, &se) && se.StatusCode == http.StatusForbidden:
		logf("github: %s: rate limit exceeded", what)
	case errors.As(err, &se):
		logf("github: %s: upstream error: %v", what, err)
	default:
		logf("github: %s: transport error: %v", what, err)
	}
}

// Upstream response shapes. Missing numeric fields unmarshal to zero, which
// is exactly the default the normalized record wants.

type upstreamRepo struct {
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	WatchersCount   int      `json:"watchers_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	Language        string   `json:"language"`
	Topics          []string `json:"topics"`
	Description     string   `json:"description"`
	Homepage        string   `json:"homepage"`
	Size            int      `json:"size"`
	DefaultBranch   string   `json:"default_branch"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
	PushedAt        string   `json:"pushed_at"`
}

type upstreamCommit struct {
	SHA     string `json:"sha"`
	HTMLURL string `json:"html_url"`
	Commit  struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type upstreamRateLimit struct {
	Rate struct {
		Limit     int   `json:"limit"`
		Remaining int   `json:"remaining"`
		Reset     int64 `json:"reset"`
	} `json:"rate"`
}
