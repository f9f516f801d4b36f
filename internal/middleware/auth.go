// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// route guarding, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/guard"
	"github.com/olegiv/ocms-catalog/internal/storage"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for request data.
const (
	ContextKeySession ContextKey = "auth_session"
)

// LoadSession creates middleware that restores the authentication session
// of the requesting browser and stores it in the request context.
// It must run inside sm.LoadAndSave.
func LoadSession(sm *scs.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	st := storage.NewSessionStorage(sm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := auth.NewSession(r.Context(), st, logger)
			ctx := context.WithValue(r.Context(), ContextKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, ContextKeySession, sess)
}

// GetSession retrieves the authentication session from the request context.
// Returns nil if LoadSession did not run.
func GetSession(r *http.Request) *auth.Session {
	sess, _ := r.Context().Value(ContextKeySession).(*auth.Session)
	return sess
}

// IsAuthenticated reports whether the request carries an authenticated session.
func IsAuthenticated(r *http.Request) bool {
	sess := GetSession(r)
	return sess != nil && sess.IsAuthenticated()
}

// Guard creates middleware that applies the route guard of the given kind,
// redirecting with 303 See Other when the view may not be shown.
func Guard(kind guard.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := guard.Decide(kind, IsAuthenticated(r))
			if !d.Allow {
				http.Redirect(w, r, d.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Private requires an authenticated session.
func Private(next http.Handler) http.Handler { return Guard(guard.Private)(next) }

// Public only admits unauthenticated visitors.
func Public(next http.Handler) http.Handler { return Guard(guard.Public)(next) }

// PrivateAPI requires an authenticated session and answers 401 with a
// JSON error instead of redirecting.
func PrivateAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !guard.Decide(guard.Private, IsAuthenticated(r)).Allow {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
