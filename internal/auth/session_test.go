// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/testutil"
)

func TestNewSession_EmptyStorage(t *testing.T) {
	st := testutil.NewRecordingStorage()
	s := NewSession(context.Background(), st, testutil.TestLoggerSilent())

	assert.False(t, s.IsAuthenticated())
	_, ok := s.Token()
	assert.False(t, ok)
}

func TestNewSession_RestoresToken(t *testing.T) {
	st := testutil.NewRecordingStorage()
	st.Seed(TokenKey, "fake-jwt-tkn-1")

	s := NewSession(context.Background(), st, testutil.TestLoggerSilent())

	assert.True(t, s.IsAuthenticated())
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "fake-jwt-tkn-1", tok)
}

func TestNewSession_EmptyTokenIsAbsent(t *testing.T) {
	st := testutil.NewRecordingStorage()
	st.Seed(TokenKey, "")

	s := NewSession(context.Background(), st, testutil.TestLoggerSilent())
	assert.False(t, s.IsAuthenticated())
}

func TestNewSession_ReadFailureIsUnauthenticated(t *testing.T) {
	st := testutil.NewRecordingStorage()
	st.Seed(TokenKey, "tkn")
	st.SetFailures(true, false)

	s := NewSession(context.Background(), st, testutil.TestLoggerSilent())
	assert.False(t, s.IsAuthenticated())
}

func TestLoginSuccessAndLogout(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewRecordingStorage()
	s := NewSession(ctx, st, testutil.TestLoggerSilent())

	s.LoginSuccess(ctx, "tkn-42")
	assert.True(t, s.IsAuthenticated())
	tok, _ := s.Token()
	assert.Equal(t, "tkn-42", tok)

	v, ok := st.Value(TokenKey)
	require.True(t, ok)
	assert.Equal(t, "tkn-42", v)

	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
	_, ok = s.Token()
	assert.False(t, ok)
	_, ok = st.Value(TokenKey)
	assert.False(t, ok, "token should be removed from storage")

	writes := st.Writes(TokenKey)
	require.Len(t, writes, 2)
	assert.Equal(t, "Set", writes[0].Method)
	assert.Equal(t, "Remove", writes[1].Method)
}

func TestLoginSuccess_WriteFailureStillAuthenticates(t *testing.T) {
	ctx := context.Background()
	st := testutil.NewRecordingStorage()
	st.SetFailures(false, true)
	s := NewSession(ctx, st, testutil.TestLoggerSilent())

	s.LoginSuccess(ctx, "tkn")
	assert.True(t, s.IsAuthenticated())
	_, persisted := st.Value(TokenKey)
	assert.False(t, persisted)

	s.Logout(ctx)
	assert.False(t, s.IsAuthenticated())
}

func TestSession_InvariantAcrossTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewSession(ctx, testutil.NewRecordingStorage(), testutil.TestLoggerSilent())

	check := func() {
		_, has := s.Token()
		assert.Equal(t, has, s.IsAuthenticated())
	}

	check()
	for i := 0; i < 3; i++ {
		s.LoginSuccess(ctx, "t")
		check()
		s.Logout(ctx)
		check()
	}
}
