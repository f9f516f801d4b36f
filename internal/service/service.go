// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the orchestration layer between the HTTP
// handlers and the stores. Every operation waits out a simulated network
// delay and keeps the item store's busy flag raised while it is pending.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/metrics"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/tracing"
)

// Default simulated latencies.
const (
	DefaultMutationDelay = 500 * time.Millisecond
	DefaultLoginDelay    = time.Second
)

var (
	// ErrInvalidCredentials is returned by Login on a username/password mismatch.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrItemNotFound is returned by EditItem and RemoveItem when no entry has the id.
	ErrItemNotFound = errors.New("item not found")
)

// CatalogService is the asynchronous item API used by the handlers.
type CatalogService interface {
	AddItem(ctx context.Context, data model.Item) (model.Item, error)
	EditItem(ctx context.Context, data model.Item) error
	RemoveItem(ctx context.Context, id string) error

	Items() []model.Item
	Item(id string) (model.Item, bool)
	Count() int
	Loading() bool
}

// AuthService logs a browser session in and out.
type AuthService interface {
	Login(ctx context.Context, sess *auth.Session, c auth.Credentials) error
	Logout(ctx context.Context, sess *auth.Session)
}

// CredentialChecker verifies submitted credentials.
type CredentialChecker interface {
	Verify(c auth.Credentials) bool
}

// SleepFunc waits for d. The wait is never cut short.
type SleepFunc func(d time.Duration)

type options struct {
	delay   time.Duration
	sleep   SleepFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// Option configures a simulated service.
type Option func(*options)

// WithDelay overrides the simulated latency.
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithSleep replaces time.Sleep, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(o *options) { o.sleep = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTracer replaces the global application tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

func buildOptions(delay time.Duration, opts []Option) options {
	o := options{
		delay:  delay,
		sleep:  time.Sleep,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.tracer == nil {
		o.tracer = tracing.Tracer()
	}
	return o
}

// busyTracker raises a flag while at least one operation is pending and
// lowers it when the last one settles.
type busyTracker struct {
	mu      sync.Mutex
	pending int
	set     func(bool)
	metrics *metrics.Metrics
}

func (b *busyTracker) begin() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending++
	if b.pending == 1 {
		b.set(true)
	}
	b.metrics.SetInFlight(b.pending)
}

func (b *busyTracker) end() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending--
	if b.pending == 0 {
		b.set(false)
	}
	b.metrics.SetInFlight(b.pending)
}
