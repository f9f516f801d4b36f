// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/olegiv/ocms-catalog/internal/catalog"
	"github.com/olegiv/ocms-catalog/internal/metrics"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// SimulatedCatalog implements CatalogService over a catalog.Store, delaying
// every mutation to emulate a network round trip.
type SimulatedCatalog struct {
	store   *catalog.Store
	delay   time.Duration
	sleep   SleepFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	busy    *busyTracker
}

// NewCatalog creates a SimulatedCatalog. The default delay is DefaultMutationDelay.
func NewCatalog(store *catalog.Store, opts ...Option) *SimulatedCatalog {
	o := buildOptions(DefaultMutationDelay, opts)
	o.metrics.SetItems(store.Count())
	return &SimulatedCatalog{
		store:   store,
		delay:   o.delay,
		sleep:   o.sleep,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
		busy:    &busyTracker{set: store.SetLoading, metrics: o.metrics},
	}
}

// run waits out the delay and then applies fn with the busy flag raised,
// all inside a span named catalog.<op>. The flag is lowered on every path.
// ctx cancellation does not abort the operation; fn receives a context
// detached from it.
func (s *SimulatedCatalog) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "catalog."+op,
		trace.WithAttributes(attribute.Int64("catalog.delay_ms", s.delay.Milliseconds())))
	defer span.End()

	s.busy.begin()
	defer s.busy.end()

	s.sleep(s.delay)
	err := fn(context.WithoutCancel(ctx))
	s.metrics.SetItems(s.store.Count())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// AddItem stores data under a new id and returns the stored entry.
func (s *SimulatedCatalog) AddItem(ctx context.Context, data model.Item) (model.Item, error) {
	var added model.Item
	err := s.run(ctx, "add", func(ctx context.Context) error {
		added = s.store.AddItem(ctx, data)
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("catalog.item_id", added.ItemID()))
		return nil
	})
	s.metrics.ObserveMutation("add", "ok")
	s.logger.Info("item added", "category", "catalog", "id", added.ItemID(), "type", added.ItemType())
	return added, err
}

// EditItem replaces the entry with data's id. The collection is persisted
// even when no entry matches, in which case ErrItemNotFound is returned.
func (s *SimulatedCatalog) EditItem(ctx context.Context, data model.Item) error {
	return s.run(ctx, "edit", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("catalog.item_id", data.ItemID()))
		if !s.store.UpdateItem(ctx, data) {
			s.metrics.ObserveMutation("edit", "not_found")
			return fmt.Errorf("editing %q: %w", data.ItemID(), ErrItemNotFound)
		}
		s.metrics.ObserveMutation("edit", "ok")
		s.logger.Info("item updated", "category", "catalog", "id", data.ItemID())
		return nil
	})
}

// RemoveItem deletes the entries with the given id.
func (s *SimulatedCatalog) RemoveItem(ctx context.Context, id string) error {
	return s.run(ctx, "remove", func(ctx context.Context) error {
		trace.SpanFromContext(ctx).SetAttributes(attribute.String("catalog.item_id", id))
		if s.store.DeleteItem(ctx, id) == 0 {
			s.metrics.ObserveMutation("remove", "not_found")
			return fmt.Errorf("removing %q: %w", id, ErrItemNotFound)
		}
		s.metrics.ObserveMutation("remove", "ok")
		s.logger.Info("item removed", "category", "catalog", "id", id)
		return nil
	})
}

// Items returns the collection in display order.
func (s *SimulatedCatalog) Items() []model.Item { return s.store.Items() }

// Item returns the entry with the given id.
func (s *SimulatedCatalog) Item(id string) (model.Item, bool) { return s.store.Item(id) }

// Count returns the number of entries.
func (s *SimulatedCatalog) Count() int { return s.store.Count() }

// Loading reports whether a mutation is pending.
func (s *SimulatedCatalog) Loading() bool { return s.store.Loading() }

var _ CatalogService = (*SimulatedCatalog)(nil)
