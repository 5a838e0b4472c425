// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.astrophena.name/site/internal/api/github"
	"go.astrophena.name/site/internal/cache"
	"go.astrophena.name/site/internal/suntimes"
	"go.astrophena.name/site/internal/web"
)

func (s *server) initRoutes() {
	s.mux = http.NewServeMux()

	s.mux.HandleFunc("GET /api/repos/{owner}/{repo}", s.handleRepoStats)
	s.mux.HandleFunc("GET /api/repos/{owner}/{repo}/languages", s.handleLanguages)
	s.mux.HandleFunc("GET /api/repos/{owner}/{repo}/commits", s.handleCommits)
	s.mux.HandleFunc("GET /api/ratelimit", s.handleRateLimit)
	s.mux.HandleFunc("GET /api/theme", s.handleTheme)
	s.mux.HandleFunc("GET /api/posts", s.handlePosts)
	s.mux.Handle("GET /debug/log", s.stream)

	health := web.Health(s.mux)
	health.RegisterFunc("cache", func() (string, bool) {
		if _, err := s.backend.Keys(context.Background(), cache.DefaultPrefix); err != nil {
			return err.Error(), false
		}
		return "ok", true
	})
}

func (s *server) handleRepoStats(w http.ResponseWriter, r *http.Request) {
	stats := s.gh.RepoStats(r.Context(), r.PathValue("owner"), r.PathValue("repo"))
	if stats == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("repository stats %w", web.ErrNotFound))
		return
	}
	web.RespondJSON(w, stats)
}

// languagesResponse is the response of the /api/repos/{owner}/{repo}/languages
// endpoint.
type languagesResponse struct {
	// Languages maps a language name to the number of bytes written in it.
	Languages map[string]int `json:"languages"`
	// Percentages maps a language name to its rounded share of the codebase.
	Percentages map[string]int `json:"percentages"`
}

func (s *server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	langs := s.gh.Languages(r.Context(), r.PathValue("owner"), r.PathValue("repo"))
	if langs == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("repository languages %w", web.ErrNotFound))
		return
	}
	web.RespondJSON(w, &languagesResponse{
		Languages:   langs,
		Percentages: github.LanguagePercentages(langs),
	})
}

func (s *server) handleCommits(w http.ResponseWriter, r *http.Request) {
	var count int
	if q := r.URL.Query().Get("count"); q != "" {
		var err error
		count, err = strconv.Atoi(q)
		if err != nil || count < 1 {
			web.RespondJSONError(s.logf, w, fmt.Errorf("invalid count %q: %w", q, web.ErrBadRequest))
			return
		}
	}
	commits := s.gh.LatestCommits(r.Context(), r.PathValue("owner"), r.PathValue("repo"), count)
	if commits == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("repository commits %w", web.ErrNotFound))
		return
	}
	web.RespondJSON(w, commits)
}

func (s *server) handleRateLimit(w http.ResponseWriter, r *http.Request) {
	rl := s.gh.RateLimit(r.Context())
	if rl == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("rate limit unavailable: %w", web.ErrInternalServerError))
		return
	}
	web.RespondJSON(w, rl)
}

func (s *server) handleTheme(w http.ResponseWriter, r *http.Request) {
	web.RespondJSON(w, map[string]string{
		"theme": suntimes.Theme(time.Now(), *s.lat, *s.lon),
	})
}

func (s *server) handlePosts(w http.ResponseWriter, r *http.Request) {
	if s.feed == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("no feeds configured: %w", web.ErrNotFound))
		return
	}
	posts := s.feed.LatestPosts(r.Context(), 5)
	if posts == nil {
		web.RespondJSONError(s.logf, w, fmt.Errorf("blog posts %w", web.ErrNotFound))
		return
	}
	web.RespondJSON(w, posts)
}
