// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package storage

import (
	"context"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// SessionStorage stores values in the caller's browser session, so every
// browser context gets its own durable key space. The session must have been
// loaded into ctx by scs.SessionManager.LoadAndSave.
type SessionStorage struct {
	sm *scs.SessionManager
}

// NewSessionStorage creates a storage view over the given session manager.
func NewSessionStorage(sm *scs.SessionManager) *SessionStorage {
	return &SessionStorage{sm: sm}
}

// Get implements Storage.
func (s *SessionStorage) Get(ctx context.Context, key string) (value string, err error) {
	// SCS panics if session data is not loaded into context.
	defer recoverUnavailable(&err)

	if !s.sm.Exists(ctx, key) {
		return "", ErrNotFound
	}
	return s.sm.GetString(ctx, key), nil
}

// Set implements Storage.
func (s *SessionStorage) Set(ctx context.Context, key, value string) (err error) {
	defer recoverUnavailable(&err)

	s.sm.Put(ctx, key, value)
	return nil
}

// Remove implements Storage.
func (s *SessionStorage) Remove(ctx context.Context, key string) (err error) {
	defer recoverUnavailable(&err)

	s.sm.Remove(ctx, key)
	return nil
}

// RenewToken rotates the session cookie token, keeping the stored data.
func (s *SessionStorage) RenewToken(ctx context.Context) (err error) {
	defer recoverUnavailable(&err)

	return s.sm.RenewToken(ctx)
}

func recoverUnavailable(err *error) {
	if rec := recover(); rec != nil {
		*err = fmt.Errorf("%w: %v", ErrUnavailable, rec)
	}
}

var _ Storage = (*SessionStorage)(nil)
