// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/olegiv/ocms-catalog/internal/storage"
)

// TokenKey is the durable storage key holding the raw session token.
const TokenKey = "authToken"

// Session is the authentication state of one browser context.
// IsAuthenticated is always exactly "a token is present".
type Session struct {
	mu      sync.RWMutex
	token   *string
	storage storage.Storage
	logger  *slog.Logger
}

// NewSession restores the session from durable storage. A missing or empty
// entry means unauthenticated; read failures are logged and treated the same.
func NewSession(ctx context.Context, st storage.Storage, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{storage: st, logger: logger}

	token, err := st.Get(ctx, TokenKey)
	switch {
	case err == nil && token != "":
		s.token = &token
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		logger.Warn("reading auth token failed", "category", "storage", "error", err)
	}

	return s
}

// LoginSuccess marks the session authenticated with token and persists it.
// A failed write is logged; the in-memory session is authenticated regardless.
func (s *Session) LoginSuccess(ctx context.Context, token string) {
	s.mu.Lock()
	s.token = &token
	s.mu.Unlock()

	if err := s.storage.Set(ctx, TokenKey, token); err != nil {
		s.logger.Warn("persisting auth token failed", "category", "storage", "error", err)
	}
}

// Logout clears the token and removes it from durable storage.
// A failed removal is logged and otherwise ignored.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, TokenKey); err != nil {
		s.logger.Warn("removing auth token failed", "category", "storage", "error", err)
	}
}

// Token returns the current token and whether one is present.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return "", false
	}
	return *s.token, true
}

// IsAuthenticated reports whether a token is present.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil
}
