// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Ghstat displays GitHub repository statistics in your terminal.

# Usage

	$ ghstat [flags...] <owner>/<repo>

It prints stars, forks, open issues, the language breakdown and the time of
the last push. Pass -json to get the raw data instead.

Set the GITHUB_TOKEN environment variable to make authenticated requests:
unauthenticated ones are limited to 60 per hour.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/site/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
