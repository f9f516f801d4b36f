// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage provides the durable key/value storage used by the
// session and item stores. Backends: memory, SQLite, MySQL, PostgreSQL,
// Redis, S3 and the browser session.
package storage

import (
	"context"
)

// Storage is the durable storage port. Keys and values are plain strings;
// writes replace the whole value (last writer wins).
// All implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Error represents an error type for storage operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates the key has no stored value.
	ErrNotFound Error = "storage: key not found"

	// ErrClosed indicates the backend has been closed.
	ErrClosed Error = "storage: closed"

	// ErrUnavailable indicates the backend cannot be reached from this context.
	ErrUnavailable Error = "storage: unavailable"
)
