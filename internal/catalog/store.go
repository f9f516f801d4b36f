// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog implements the item store: the ordered collection of
// catalog entries, its busy flag and its persistence to durable storage.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/storage"
)

// ItemsKey is the durable storage key holding the JSON-encoded collection.
const ItemsKey = "items"

// Store holds the catalog collection. The in-memory state is authoritative;
// every mutation re-serializes the whole collection to storage and storage
// failures are logged, never returned.
//
// Mutations are serialized. Items handed out by the store must be treated
// as read-only; use WithID to obtain a copy before changing one.
type Store struct {
	mu      sync.RWMutex
	items   []model.Item
	loading bool

	storage storage.Storage
	logger  *slog.Logger
	ids     idGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for id generation.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.ids.now = now
	}
}

// New creates a Store seeded from storage. When the stored collection is
// missing or cannot be parsed, the store starts from model.SeedItems and
// nothing is written until the first mutation.
func New(ctx context.Context, st storage.Storage, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		storage: st,
		logger:  logger,
		ids:     idGenerator{now: time.Now},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.items = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) []model.Item {
	raw, err := s.storage.Get(ctx, ItemsKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("reading items failed, using seed data", "category", "storage", "error", err)
		}
		return model.SeedItems()
	}

	items, err := model.DecodeItems([]byte(raw))
	if items == nil {
		s.logger.Warn("stored items are malformed, using seed data", "category", "storage", "error", err)
		return model.SeedItems()
	}
	if err != nil {
		// The skipped entries are dropped from the stored collection on the next write.
		s.logger.Warn("skipped malformed stored items", "category", "storage", "kept", len(items), "error", err)
	}
	return items
}

// persist writes the collection. Callers must hold s.mu.
func (s *Store) persist(ctx context.Context) {
	data, err := model.EncodeItems(s.items)
	if err != nil {
		s.logger.Warn("encoding items failed", "category", "storage", "error", err)
		return
	}
	if err := s.storage.Set(ctx, ItemsKey, string(data)); err != nil {
		s.logger.Warn("persisting items failed", "category", "storage", "error", err)
	}
}

// SetItems replaces the whole collection.
func (s *Store) SetItems(ctx context.Context, items []model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
	s.persist(ctx)
}

// AddItem appends data under a freshly assigned id and returns the stored
// entry. Any id carried by data is ignored.
func (s *Store) AddItem(ctx context.Context, data model.Item) model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.next(s.hasID)
	it := data.WithID(id)
	s.items = append(s.items, it)
	s.persist(ctx)

	s.logger.Debug("item added", "category", "catalog", "id", id, "type", it.ItemType())
	return it
}

// UpdateItem replaces the first entry whose id equals data's id and reports
// whether one was found. The collection is written either way.
func (s *Store) UpdateItem(ctx context.Context, data model.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(data.ItemID())
	if i >= 0 {
		items := slices.Clone(s.items)
		items[i] = data
		s.items = items
	}
	s.persist(ctx)
	return i >= 0
}

// DeleteItem removes every entry with the given id and returns how many
// were removed.
func (s *Store) DeleteItem(ctx context.Context, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.Item, 0, len(s.items))
	for _, it := range s.items {
		if it.ItemID() != id {
			kept = append(kept, it)
		}
	}
	removed := len(s.items) - len(kept)
	s.items = kept
	s.persist(ctx)
	return removed
}

// SetLoading sets the busy flag. It is not persisted.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	s.loading = loading
	s.mu.Unlock()
}

// Items returns the collection in display order.
func (s *Store) Items() []model.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Loading returns the busy flag.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Item returns the first entry with the given id.
func (s *Store) Item(id string) (model.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return nil, false
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(it model.Item) bool {
		return it.ItemID() == id
	})
}

func (s *Store) hasID(id string) bool {
	return s.indexOf(id) >= 0
}
