// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/testutil"
)

func newAuth(t *testing.T, sleep SleepFunc) *SimulatedAuth {
	t.Helper()
	v, err := auth.NewVerifier("admin", "admin123")
	require.NoError(t, err)
	return NewAuth(v, WithSleep(sleep), WithLogger(testutil.TestLoggerSilent()))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewRecordingStorage()
	sess := auth.NewSession(ctx, st, testutil.TestLoggerSilent())
	a := newAuth(t, noSleep)

	err := a.Login(ctx, sess, auth.Credentials{Username: "admin", Password: "nope-nope"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "invalid username or password", err.Error())
	assert.False(t, sess.IsAuthenticated())
	assert.Empty(t, st.Writes(auth.TokenKey), "no token may be written")
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewRecordingStorage()
	sess := auth.NewSession(ctx, st, testutil.TestLoggerSilent())

	var delay time.Duration
	a := newAuth(t, func(d time.Duration) { delay = d })

	require.NoError(t, a.Login(ctx, sess, auth.Credentials{Username: "admin", Password: "admin123"}))
	assert.Equal(t, DefaultLoginDelay, delay)
	assert.True(t, sess.IsAuthenticated())

	tok, _ := sess.Token()
	assert.True(t, strings.HasPrefix(tok, TokenPrefix))
	assert.Len(t, tok, len(TokenPrefix)+36)

	stored, ok := st.Value(auth.TokenKey)
	require.True(t, ok)
	assert.Equal(t, tok, stored)
}

func TestLogin_TokensDiffer(t *testing.T) {
	ctx := context.Background()
	a := newAuth(t, noSleep)
	creds := auth.Credentials{Username: "admin", Password: "admin123"}

	s1 := auth.NewSession(ctx, testutil.NewRecordingStorage(), nil)
	s2 := auth.NewSession(ctx, testutil.NewRecordingStorage(), nil)
	require.NoError(t, a.Login(ctx, s1, creds))
	require.NoError(t, a.Login(ctx, s2, creds))

	t1, _ := s1.Token()
	t2, _ := s2.Token()
	assert.NotEqual(t, t1, t2)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewRecordingStorage()
	sess := auth.NewSession(ctx, st, testutil.TestLoggerSilent())
	a := newAuth(t, noSleep)

	require.NoError(t, a.Login(ctx, sess, auth.Credentials{Username: "admin", Password: "admin123"}))
	a.Logout(ctx, sess)

	assert.False(t, sess.IsAuthenticated())
	_, ok := st.Value(auth.TokenKey)
	assert.False(t, ok)
}
