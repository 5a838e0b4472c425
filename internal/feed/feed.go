// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package feed fetches recent blog posts from RSS or Atom feeds for display
// on the website.
//
// It follows the same contract as the GitHub stats client: results are
// cached, failures are logged and surfaced as "no posts" rather than errors.
package feed

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"go.astrophena.name/site/internal/cache"
	"go.astrophena.name/site/internal/logger"
	"go.astrophena.name/site/internal/util/syncx"
	"go.astrophena.name/site/internal/version"

	"github.com/mmcdole/gofeed"
)

const (
	postsTTL              = time.Hour
	fetchConcurrencyLimit = 4 // N feeds fetched at the same time
)

// Post is a single blog post.
type Post struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// Client fetches posts from one or more feeds.
type Client struct {
	// URLs are the feed URLs to fetch.
	URLs []string
	// HTTPClient is an optional custom HTTP client object to use for requests.
	HTTPClient *http.Client
	// Cache is an optional cache for fetched posts.
	Cache *cache.Cache
	// Logf is used for logging failures. If nil, log.Printf is used.
	Logf logger.Logf

	fp syncx.Lazy[*gofeed.Parser]
}

func (c *Client) logf(format string, args ...any) {
	logf := c.Logf
	if logf == nil {
		logf = log.Printf
	}
	logf(format, args...)
}

func (c *Client) parser() *gofeed.Parser {
	return c.fp.Get(func() *gofeed.Parser {
		p := gofeed.NewParser()
		p.UserAgent = version.UserAgent()
		if c.HTTPClient != nil {
			p.Client = c.HTTPClient
		}
		return p
	})
}

// LatestPosts returns up to count posts across all configured feeds, newest
// first. Feeds that fail to fetch are logged and skipped; if every feed
// fails, it returns nil.
func (c *Client) LatestPosts(ctx context.Context, count int) []Post {
	if count <= 0 {
		count = 5
	}

	var all []Post
	if c.Cache != nil && c.Cache.Get(ctx, "blog_posts", &all) {
		return limit(all, count)
	}

	posts := syncx.Protect(&all)
	lwg := syncx.NewLimitedWaitGroup(fetchConcurrencyLimit)
	for _, url := range c.URLs {
		lwg.Add(1)
		go func() {
			defer lwg.Done()
			fetched, err := c.fetch(ctx, url)
			if err != nil {
				c.logf("feed: fetching %q: %v", url, err)
				return
			}
			posts.Access(func(all *[]Post) {
				*all = append(*all, fetched...)
			})
		}()
	}
	lwg.Wait()

	if len(all) == 0 {
		return nil
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})
	if c.Cache != nil {
		c.Cache.Set(ctx, "blog_posts", all, postsTTL)
	}
	return limit(all, count)
}

func (c *Client) fetch(ctx context.Context, url string) ([]Post, error) {
	f, err := c.parser().ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]Post, 0, len(f.Items))
	for _, item := range f.Items {
		p := Post{
			Title: item.Title,
			Link:  item.Link,
		}
		if item.PublishedParsed != nil {
			p.Published = *item.PublishedParsed
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func limit(posts []Post, count int) []Post {
	if len(posts) > count {
		return posts[:count]
	}
	return posts
}
