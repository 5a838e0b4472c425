// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"go.astrophena.name/site/internal/api/github"
	"go.astrophena.name/site/internal/cache"
	"go.astrophena.name/site/internal/cli"
	"go.astrophena.name/site/internal/cli/envflag"
	"go.astrophena.name/site/internal/feed"
	"go.astrophena.name/site/internal/logger"
	"go.astrophena.name/site/internal/util/syncx"
	"go.astrophena.name/site/internal/web"
)

const logStreamSize = 300 // lines

func main() { cli.Main(new(server)) }

type server struct {
	// getenv is used by envflag to look up environment variables. If nil,
	// os.Getenv is used. Overridden in tests.
	getenv func(string) string

	// flags
	addr     *string
	cacheDSN *string
	ghToken  *string
	feedURL  *string
	lat      *float64
	lon      *float64

	init syncx.Lazy[error]

	// initialized by doInit
	mux     *http.ServeMux
	logf    logger.Logf
	stream  logger.Streamer
	backend cache.Backend
	cache   *cache.Cache
	gh      *github.Client
	feed    *feed.Client

	noServerStart bool // used in tests
}

func (s *server) Flags(fs *flag.FlagSet) {
	getenv := s.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	s.addr = envflag.Value("addr", "ADDR", "localhost:3000", "Listen on `host:port`.", fs, getenv)
	s.cacheDSN = envflag.Value("cache", "CACHE", "mem", "Cache backend `DSN`: mem, file:<path>, sqlite:<path> or postgres:<url>.", fs, getenv)
	s.ghToken = envflag.Value("gh-token", "GITHUB_TOKEN", "", "GitHub API `token`. If empty, requests are unauthenticated.", fs, getenv)
	s.feedURL = envflag.Value("feed-url", "FEED_URL", "", "Comma-separated list of feed `URLs` to fetch blog posts from.", fs, getenv)
	s.lat = envflag.Value("lat", "LAT", 55.75, "`Latitude` used for theme selection.", fs, getenv)
	s.lon = envflag.Value("lon", "LON", 37.62, "`Longitude` used for theme selection.", fs, getenv)
}

func (s *server) Run(ctx context.Context, env *cli.Env) error {
	if err := s.init.Get(func() error {
		return s.doInit(ctx, env)
	}); err != nil {
		return err
	}
	defer s.backend.Close()

	if s.noServerStart {
		return nil
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr: *s.addr,
		Mux:  s.mux,
		Logf: s.logf,
	})
}

func (s *server) doInit(ctx context.Context, env *cli.Env) error {
	s.stream = logger.NewStreamer(logStreamSize)
	s.logf = log.New(io.MultiWriter(env.Stderr, s.stream), "", log.LstdFlags).Printf

	backend, err := cache.Open(ctx, *s.cacheDSN)
	if err != nil {
		return err
	}
	s.backend = backend
	s.cache = cache.New(backend, s.logf)

	s.gh = &github.Client{
		Token: *s.ghToken,
		Cache: s.cache,
		Logf:  s.logf,
	}
	if *s.feedURL != "" {
		s.feed = &feed.Client{
			URLs:  strings.Split(*s.feedURL, ","),
			Cache: s.cache,
			Logf:  s.logf,
		}
	}

	s.initRoutes()
	return nil
}
