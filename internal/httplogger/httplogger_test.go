// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package httplogger

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.astrophena.name/site/internal/testutil"
)

func TestRoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "ok")
	}))
	defer ts.Close()

	var sb strings.Builder
	logf := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	client := &http.Client{Transport: New(http.DefaultTransport, logf)}
	res, err := client.Get(ts.URL + "/repos/astrophena/tools")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	testutil.AssertStringContains(t, sb.String(), "/tools")
	testutil.AssertStringContains(t, sb.String(), "200 OK")
}

func TestRoundTripError(t *testing.T) {
	var sb strings.Builder
	logf := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	client := &http.Client{Transport: New(http.DefaultTransport, logf)}
	// Connection refused, nothing listens there.
	if _, err := client.Get("http://127.0.0.1:1/nope"); err == nil {
		t.Fatal("expected an error")
	}

	testutil.AssertStringContains(t, sb.String(), "error:")
}
