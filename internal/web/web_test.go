// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.astrophena.name/site/internal/testutil"
)

func TestRespondJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	RespondJSON(w, map[string]int{"stars": 42})

	testutil.AssertEqual(t, w.Header().Get("Content-Type"), "application/json")
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, strings.Contains(w.Body.String(), `"stars": 42`), true)
}

func TestRespondJSONError(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		err        error
		wantStatus int
	}{
		"not found": {
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		"wrapped bad request": {
			err:        fmt.Errorf("count: %w", ErrBadRequest),
			wantStatus: http.StatusBadRequest,
		},
		"arbitrary error": {
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondJSONError(t.Logf, w, tc.err)

			testutil.AssertEqual(t, w.Code, tc.wantStatus)

			resp := testutil.UnmarshalJSON[map[string]string](t, w.Body.Bytes())
			testutil.AssertEqual(t, resp["status"], "error")
		})
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	h := Health(mux)

	// Health returns the already registered handler on subsequent calls.
	testutil.AssertEqual(t, Health(mux) == h, true)

	h.RegisterFunc("cache", func() (string, bool) { return "ok", true })

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	resp := testutil.UnmarshalJSON[HealthResponse](t, w.Body.Bytes())
	testutil.AssertEqual(t, resp.OK, true)
	testutil.AssertEqual(t, resp.Checks["cache"].Status, "ok")
}

func TestHealthFailingCheck(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	h := Health(mux)
	h.RegisterFunc("upstream", func() (string, bool) { return "unreachable", false })

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusInternalServerError)
	resp := testutil.UnmarshalJSON[HealthResponse](t, w.Body.Bytes())
	testutil.AssertEqual(t, resp.OK, false)
}

func TestServeStatic(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	initInternalRoutes(&ListenAndServeConfig{Mux: mux, Logf: t.Logf})

	req := httptest.NewRequest("GET", "/"+StaticFS.HashName("static/css/main.css"), nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertStringContains(t, w.Body.String(), "--text-color")
}

func TestListenAndServeValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	err := ListenAndServe(ctx, &ListenAndServeConfig{Mux: http.NewServeMux(), Logf: t.Logf})
	testutil.AssertEqual(t, errors.Is(err, errNoAddr), true)

	err = ListenAndServe(ctx, &ListenAndServeConfig{Addr: "localhost:0", Logf: t.Logf})
	testutil.AssertEqual(t, errors.Is(err, errNilMux), true)
}

func TestListenAndServeGracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan struct{})
	serveReadyHook = func() { close(ready) }
	t.Cleanup(func() { serveReadyHook = nil })

	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, &ListenAndServeConfig{
			Addr: "localhost:0",
			Mux:  http.NewServeMux(),
			Logf: t.Logf,
		})
	}()

	<-ready
	cancel()

	select {
	case err := <-errCh:
		testutil.AssertEqual(t, err, nil)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
