// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the catalog service.
package testutil

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/olegiv/ocms-catalog/internal/storage"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a completely silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestDB creates a temporary SQLite database with all migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "catalog-test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := storage.Migrate(db, storage.DialectSQLite); err != nil {
		_ = db.Close()
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// ErrInjected is returned by a RecordingStorage configured to fail.
var ErrInjected = errors.New("injected storage failure")

// Op is one recorded storage call.
type Op struct {
	Method string // Get, Set or Remove
	Key    string
	Value  string
}

// RecordingStorage is an in-memory storage.Storage that records every call
// and can be told to fail reads or writes.
type RecordingStorage struct {
	mu        sync.Mutex
	inner     *storage.MemoryStorage
	ops       []Op
	FailReads bool
	FailWrite bool
}

// NewRecordingStorage returns an empty RecordingStorage.
func NewRecordingStorage() *RecordingStorage {
	return &RecordingStorage{inner: storage.NewMemoryStorage()}
}

func (r *RecordingStorage) record(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Get implements storage.Storage.
func (r *RecordingStorage) Get(ctx context.Context, key string) (string, error) {
	r.record(Op{Method: "Get", Key: key})
	if r.failReads() {
		return "", ErrInjected
	}
	return r.inner.Get(ctx, key)
}

// Set implements storage.Storage.
func (r *RecordingStorage) Set(ctx context.Context, key, value string) error {
	r.record(Op{Method: "Set", Key: key, Value: value})
	if r.failWrites() {
		return ErrInjected
	}
	return r.inner.Set(ctx, key, value)
}

// Remove implements storage.Storage.
func (r *RecordingStorage) Remove(ctx context.Context, key string) error {
	r.record(Op{Method: "Remove", Key: key})
	if r.failWrites() {
		return ErrInjected
	}
	return r.inner.Remove(ctx, key)
}

// Seed writes a value directly, without recording it.
func (r *RecordingStorage) Seed(key, value string) {
	_ = r.inner.Set(context.Background(), key, value)
}

// Value reads a value directly, without recording it.
func (r *RecordingStorage) Value(key string) (string, bool) {
	v, err := r.inner.Get(context.Background(), key)
	return v, err == nil
}

// SetFailures switches read and write failure injection.
func (r *RecordingStorage) SetFailures(reads, writes bool) {
	r.mu.Lock()
	r.FailReads = reads
	r.FailWrite = writes
	r.mu.Unlock()
}

// Ops returns a copy of the recorded calls.
func (r *RecordingStorage) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Writes returns the recorded Set and Remove calls for key.
func (r *RecordingStorage) Writes(key string) []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Key == key && op.Method != "Get" {
			out = append(out, op)
		}
	}
	return out
}

// Reset forgets the recorded calls.
func (r *RecordingStorage) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

func (r *RecordingStorage) failReads() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.FailReads
}

func (r *RecordingStorage) failWrites() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.FailWrite
}

var _ storage.Storage = (*RecordingStorage)(nil)
