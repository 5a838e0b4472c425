// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"go.astrophena.name/site/internal/api/github"
	"go.astrophena.name/site/internal/cli"
	"go.astrophena.name/site/internal/httplogger"
)

func main() { cli.Main(new(app)) }

var errFetchFailed = errors.New("failed to fetch repository stats")

type app struct {
	jsonOutput bool
	verbose    bool

	gh *github.Client // set up on first Run if nil, overridden in tests
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.jsonOutput, "json", false, "Output in JSON format.")
	fs.BoolVar(&a.verbose, "verbose", false, "Log HTTP requests.")
}

func (a *app) Run(ctx context.Context, env *cli.Env) error {
	if len(env.Args) != 1 {
		return fmt.Errorf("%w: repository is required in the form of <owner>/<repo>", cli.ErrInvalidArgs)
	}
	owner, repo, ok := strings.Cut(env.Args[0], "/")
	if !ok || owner == "" || repo == "" {
		return fmt.Errorf("%w: invalid repository %q, want <owner>/<repo>", cli.ErrInvalidArgs, env.Args[0])
	}

	if a.gh == nil {
		a.gh = &github.Client{
			Token: env.Getenv("GITHUB_TOKEN"),
			Logf:  env.Logf,
		}
	}
	if a.verbose && a.gh.HTTPClient == nil {
		a.gh.HTTPClient = &http.Client{
			Transport: httplogger.New(http.DefaultTransport, env.Logf),
		}
	}

	stats := a.gh.RepoStats(ctx, owner, repo)
	if stats == nil {
		return fmt.Errorf("%w for %s/%s", errFetchFailed, owner, repo)
	}
	langs := a.gh.Languages(ctx, owner, repo)
	percentages := github.LanguagePercentages(langs)

	if a.jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Stats       *github.RepoStats `json:"stats"`
			Languages   map[string]int    `json:"languages,omitempty"`
			Percentages map[string]int    `json:"percentages,omitempty"`
		}{stats, langs, percentages})
	}

	fmt.Fprintf(env.Stdout, "%s/%s\n\n", owner, repo)
	fmt.Fprintf(env.Stdout, "Stars: %d\n", stats.Stars)
	fmt.Fprintf(env.Stdout, "Forks: %d\n", stats.Forks)
	fmt.Fprintf(env.Stdout, "Open issues: %d\n", stats.OpenIssues)
	if ago := github.TimeAgo(stats.PushedAt); ago != "" {
		fmt.Fprintf(env.Stdout, "Last push: %s\n", ago)
	}

	if len(percentages) > 0 {
		fmt.Fprintf(env.Stdout, "\nLanguages:\n")
		type kv struct {
			lang string
			pct  int
		}
		var ss []kv
		for lang, pct := range percentages {
			ss = append(ss, kv{lang, pct})
		}
		sort.Slice(ss, func(i, j int) bool {
			if ss[i].pct != ss[j].pct {
				return ss[i].pct > ss[j].pct
			}
			return ss[i].lang < ss[j].lang
		})
		for _, s := range ss {
			fmt.Fprintf(env.Stdout, "  %s: %d%%\n", s.lang, s.pct)
		}
	}

	return nil
}
