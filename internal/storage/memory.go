package storage

import (
	"context"
	"sync"
	"sync/atomic"
)

// MemoryStorage is a thread-safe in-memory backend. Values do not survive
// a restart; it is meant for development and tests.
type MemoryStorage struct {
	mu     sync.RWMutex
	data   map[string]string
	closed atomic.Bool

	// Statistics
	reads  atomic.Int64
	writes atomic.Int64
}

// NewMemoryStorage creates an empty memory backend.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		data: make(map[string]string),
	}
}

// Get implements Storage.
func (m *MemoryStorage) Get(_ context.Context, key string) (string, error) {
	if m.closed.Load() {
		return "", ErrClosed
	}

	m.reads.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set implements Storage.
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	m.writes.Add(1)
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

// Remove implements Storage.
func (m *MemoryStorage) Remove(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}

	m.writes.Add(1)
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// Ping implements Pinger.
func (m *MemoryStorage) Ping(_ context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Stats returns the number of reads and writes served so far.
func (m *MemoryStorage) Stats() (reads, writes int64) {
	return m.reads.Load(), m.writes.Load()
}

// Close marks the storage closed; later calls return ErrClosed.
func (m *MemoryStorage) Close() error {
	m.closed.Store(true)
	return nil
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Pinger  = (*MemoryStorage)(nil)
)
