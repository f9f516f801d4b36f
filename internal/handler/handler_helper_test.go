// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/catalog"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/render"
	"github.com/olegiv/ocms-catalog/internal/service"
	"github.com/olegiv/ocms-catalog/internal/testutil"
	"github.com/olegiv/ocms-catalog/web"
)

// Credentials accepted by the test environment.
const (
	testUsername = "admin"
	testPassword = "admin123"
)

// testEnv wires the real stores, services and templates without delays.
type testEnv struct {
	sm       *scs.SessionManager
	renderer *render.Renderer
	storage  *testutil.RecordingStorage
	store    *catalog.Store
	catalog  *service.SimulatedCatalog
	auth     *service.SimulatedAuth
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sm := testSessionManager(t)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, SessionManager: sm})
	require.NoError(t, err)

	logger := testutil.TestLoggerSilent()
	st := testutil.NewRecordingStorage()
	store := catalog.New(context.Background(), st, logger)

	verifier, err := auth.NewVerifier(testUsername, testPassword)
	require.NoError(t, err)

	return &testEnv{
		sm:       sm,
		renderer: renderer,
		storage:  st,
		store:    store,
		catalog:  service.NewCatalog(store, service.WithDelay(0), service.WithLogger(logger)),
		auth:     service.NewAuth(verifier, service.WithDelay(0), service.WithLogger(logger)),
	}
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Store = memstore.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// serve runs h behind the session middleware. When authenticated is set
// the browser session already holds a token.
func (e *testEnv) serve(h http.Handler, r *http.Request, authenticated bool) *httptest.ResponseRecorder {
	inner := middleware.LoadSession(e.sm, testutil.TestLoggerSilent())(h)
	chain := inner
	if authenticated {
		chain = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			e.sm.Put(r.Context(), auth.TokenKey, service.TokenPrefix+"test")
			inner.ServeHTTP(w, r)
		})
	}

	rec := httptest.NewRecorder()
	e.sm.LoadAndSave(chain).ServeHTTP(rec, r)
	return rec
}

// sessionString reads a value from the session the response's cookie points at.
func (e *testEnv) sessionString(t *testing.T, rec *httptest.ResponseRecorder, key string) string {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name != e.sm.Cookie.Name {
			continue
		}
		ctx, err := e.sm.Load(context.Background(), c.Value)
		require.NoError(t, err)
		return e.sm.GetString(ctx, key)
	}
	return ""
}

// flash returns the flash message stored by the response.
func (e *testEnv) flash(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return e.sessionString(t, rec, "flash")
}

// postForm builds a urlencoded POST request.
func postForm(target string, values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 to the given location.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("Location = %q; want %q", got, location)
	}
}
