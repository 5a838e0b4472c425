// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Site is the backend of my personal website.

It serves a small JSON API with GitHub repository statistics, recent blog
posts and a suggested color theme based on the position of the sun.

# Usage

	$ site [flags...]

# API

  - GET /api/repos/{owner}/{repo}: repository statistics (stars, forks,
    open issues and so on).
  - GET /api/repos/{owner}/{repo}/languages: language breakdown with
    percentages.
  - GET /api/repos/{owner}/{repo}/commits?count=N: most recent commits.
  - GET /api/ratelimit: current GitHub API rate limit, never cached.
  - GET /api/theme: "light" or "dark", depending on whether the sun is up
    at the configured coordinates.
  - GET /api/posts: recent blog posts from the configured feeds.
  - GET /health: health status of the server and its cache.

Responses are cached. Repository statistics and language breakdowns are kept
for a day, commits and posts for an hour. The cache backend is selected with
the -cache flag: "mem" (default), "file:<path>", "sqlite:<path>" or
"postgres:<url>".

# Environment Variables

All flags can be set via environment variables: ADDR, CACHE, GITHUB_TOKEN,
FEED_URL, LAT, LON. Flags take precedence.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/site/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
