// Package logging provides a slog handler that counts warning and error
// records into Prometheus, labelled by level and category.
package logging

import (
	"context"
	"log/slog"
	"strings"
)

// Log categories, taken from the "category" attribute or inferred from the message.
const (
	CategoryAuth    = "auth"
	CategoryStorage = "storage"
	CategoryCatalog = "catalog"
	CategorySystem  = "system"
)

// Counter receives one call per counted record.
type Counter interface {
	ObserveLog(level, category string)
}

// MetricsHandler is a slog.Handler that wraps another handler and counts
// records at or above its level.
type MetricsHandler struct {
	inner    slog.Handler
	counter  Counter
	level    slog.Level // Minimum level to count (default: WARN)
	category string     // Category set through WithAttrs, if any
}

// NewMetricsHandler creates a MetricsHandler that counts WARN and ERROR records.
func NewMetricsHandler(inner slog.Handler, counter Counter) *MetricsHandler {
	return NewMetricsHandlerWithLevel(inner, counter, slog.LevelWarn)
}

// NewMetricsHandlerWithLevel creates a MetricsHandler with a custom minimum level.
func NewMetricsHandlerWithLevel(inner slog.Handler, counter Counter, level slog.Level) *MetricsHandler {
	return &MetricsHandler{
		inner:   inner,
		counter: counter,
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *MetricsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *MetricsHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level && h.counter != nil {
		h.counter.ObserveLog(levelLabel(r.Level), h.extractCategory(r))
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MetricsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	category := h.category
	for _, a := range attrs {
		if a.Key == "category" {
			category = a.Value.String()
		}
	}
	return &MetricsHandler{
		inner:    h.inner.WithAttrs(attrs),
		counter:  h.counter,
		level:    h.level,
		category: category,
	}
}

// WithGroup implements slog.Handler.
func (h *MetricsHandler) WithGroup(name string) slog.Handler {
	return &MetricsHandler{
		inner:    h.inner.WithGroup(name),
		counter:  h.counter,
		level:    h.level,
		category: h.category,
	}
}

func levelLabel(level slog.Level) string {
	if level >= slog.LevelError {
		return "error"
	}
	return "warn"
}

// extractCategory looks for a "category" attribute on the record, then on
// the logger, and otherwise infers one from the message.
func (h *MetricsHandler) extractCategory(r slog.Record) string {
	var category string

	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "category" {
			category = a.Value.String()
			return false
		}
		return true
	})

	if category != "" {
		return category
	}
	if h.category != "" {
		return h.category
	}

	msg := strings.ToLower(r.Message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return CategoryAuth
	case strings.Contains(msg, "storage") || strings.Contains(msg, "persist") || strings.Contains(msg, "database"):
		return CategoryStorage
	case strings.Contains(msg, "item"):
		return CategoryCatalog
	default:
		return CategorySystem
	}
}
