// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the cookie session manager that scopes the
// authentication token to one browser.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Cookie names. Production uses the __Host- prefix, which browsers only
// accept on Secure cookies with Path=/ and no Domain.
const (
	CookieName     = "catalog_session"
	HostCookieName = "__Host-session"
)

// Lifetime bounds how long an idle browser keeps its session. Tokens have no
// expiry of their own; this only reclaims abandoned rows.
const Lifetime = 30 * 24 * time.Hour

// CleanupInterval is how often expired session rows are deleted.
const CleanupInterval = time.Hour

// New creates a new session manager configured with SQLite store.
// Call StopCleanup on the returned store before closing db.
func New(db *sql.DB, isDev bool) (*scs.SessionManager, *sqlite3store.SQLite3Store) {
	sm := scs.New()

	store := sqlite3store.NewWithCleanupInterval(db, CleanupInterval)
	sm.Store = store

	sm.Lifetime = Lifetime
	sm.Cookie.Name = CookieName
	sm.Cookie.Path = "/"
	sm.Cookie.Persist = true
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	if !isDev {
		sm.Cookie.Name = HostCookieName
	}

	return sm, store
}
