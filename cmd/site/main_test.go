// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"io"
	"strings"
	"testing"

	"go.astrophena.name/site/internal/cli"
	"go.astrophena.name/site/internal/cli/clitest"
	"go.astrophena.name/site/internal/testutil"
)

func TestRun(t *testing.T) {
	clitest.Run(t, func(t *testing.T) *server {
		return &server{
			getenv:        func(string) string { return "" },
			noServerStart: true,
		}
	}, map[string]clitest.Case[*server]{
		"starts with defaults": {
			Args: []string{},
			CheckFunc: func(t *testing.T, s *server) {
				testutil.AssertEqual(t, *s.addr, "localhost:3000")
				testutil.AssertEqual(t, s.cache != nil, true)
				testutil.AssertEqual(t, s.gh != nil, true)
				// No feeds configured by default.
				testutil.AssertEqual(t, s.feed == nil, true)
			},
		},
		"configures feeds": {
			Args: []string{"-feed-url", "https://astrophena.name/feed.xml,https://example.com/atom.xml"},
			CheckFunc: func(t *testing.T, s *server) {
				testutil.AssertEqual(t, len(s.feed.URLs), 2)
				testutil.AssertContains(t, s.feed.URLs, "https://example.com/atom.xml")
			},
		},
		"version flag": {
			Args:    []string{"-version"},
			WantErr: cli.ErrExitVersion,
		},
	})
}

func TestRunBadCacheDSN(t *testing.T) {
	s := &server{
		getenv:        func(string) string { return "" },
		noServerStart: true,
	}
	err := cli.Run(context.Background(), s, &cli.Env{
		Args:   []string{"-cache", "bolt:nope"},
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: io.Discard,
		Stderr: io.Discard,
	})
	if err == nil {
		t.Fatal("expected an error for unknown cache backend")
	}
}

func TestEnvOverridesFlags(t *testing.T) {
	s := &server{
		getenv: func(name string) string {
			if name == "ADDR" {
				return "localhost:9999"
			}
			return ""
		},
	}
	fs := flag.NewFlagSet("site", flag.ContinueOnError)
	s.Flags(fs)
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, *s.addr, "localhost:9999")
}
