// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/service"
	"github.com/olegiv/ocms-catalog/internal/storage"
	"github.com/olegiv/ocms-catalog/internal/testutil"
)

func newTestAuthHandler(env *testEnv, lp *middleware.LoginProtection) *AuthHandler {
	return NewAuthHandler(env.auth, env.renderer, storage.NewSessionStorage(env.sm), lp, testutil.TestLoggerSilent())
}

func loginValues(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestLoginForm(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(env, nil)

	rec := env.serve(http.HandlerFunc(h.LoginForm), httptest.NewRequest(http.MethodGet, RouteLogin, nil), false)

	assertStatus(t, rec.Code, http.StatusOK)
	body := rec.Body.String()
	assert.Contains(t, body, "Sign in to your account")
	assert.Contains(t, body, `name="username"`)
	assert.NotContains(t, body, "Logout")
}

func TestLogin_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     []string
	}{
		{"empty", "", "", []string{"Username is required", "Password is required"}},
		{"short", "ab", "12345", []string{"Username must be at least 3 characters", "Password must be at least 6 characters"}},
		{"long", strings.Repeat("u", 21), strings.Repeat("p", 21), []string{"Username must not exceed 20 characters", "Password must not exceed 20 characters"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newTestAuthHandler(env, nil)

			rec := env.serve(http.HandlerFunc(h.Login), postForm(RouteLogin, loginValues(tt.username, tt.password)), false)

			assertStatus(t, rec.Code, http.StatusUnprocessableEntity)
			for _, msg := range tt.want {
				assert.Contains(t, rec.Body.String(), msg)
			}
			assert.Empty(t, env.sessionString(t, rec, auth.TokenKey))
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(env, nil)

	rec := env.serve(http.HandlerFunc(h.Login), postForm(RouteLogin, loginValues(testUsername, "wrong-pass")), false)

	assertRedirect(t, rec, RouteLogin)
	assert.Equal(t, service.ErrInvalidCredentials.Error(), env.flash(t, rec))
	assert.Empty(t, env.sessionString(t, rec, auth.TokenKey))
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(env, nil)

	rec := env.serve(http.HandlerFunc(h.Login), postForm(RouteLogin, loginValues(testUsername, testPassword)), false)

	assertRedirect(t, rec, RouteRoot)
	token := env.sessionString(t, rec, auth.TokenKey)
	assert.True(t, strings.HasPrefix(token, service.TokenPrefix), "token = %q", token)
	assert.Equal(t, "Welcome back, admin!", env.flash(t, rec))
}

func TestLogin_Lockout(t *testing.T) {
	env := newTestEnv(t)
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
	})
	t.Cleanup(lp.Close)
	h := newTestAuthHandler(env, lp)

	login := func(password string) *httptest.ResponseRecorder {
		return env.serve(http.HandlerFunc(h.Login), postForm(RouteLogin, loginValues(testUsername, password)), false)
	}

	first := login("wrong-pass")
	assert.Equal(t, "invalid username or password (1 attempts remaining)", env.flash(t, first))

	second := login("wrong-pass")
	assert.Equal(t, "Too many failed attempts. Account locked for 1 minute.", env.flash(t, second))

	// The right password is refused while the account is locked.
	third := login(testPassword)
	assertRedirect(t, third, RouteLogin)
	assert.Contains(t, env.flash(t, third), "Account temporarily locked")
	assert.Empty(t, env.sessionString(t, third, auth.TokenKey))
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAuthHandler(env, nil)

	rec := env.serve(http.HandlerFunc(h.Logout), postForm(RouteLogout, nil), true)

	assertRedirect(t, rec, RouteLogin)
	assert.Empty(t, env.sessionString(t, rec, auth.TokenKey))
	assert.Equal(t, "You have been logged out.", env.flash(t, rec))
}

func TestFormatDuration(t *testing.T) {
	tests := map[time.Duration]string{
		30 * time.Second: "30 seconds",
		time.Minute:      "1 minute",
		15 * time.Minute: "15 minutes",
		time.Hour:        "1 hour",
		4 * time.Hour:    "4 hours",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatDuration(in))
	}
}
