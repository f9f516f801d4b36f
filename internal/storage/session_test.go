package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alexedwards/scs/v2"
)

func loadedContext(t *testing.T, sm *scs.SessionManager) context.Context {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("loading session: %v", err)
	}
	return ctx
}

func TestSessionStorage_RoundTrip(t *testing.T) {
	sm := scs.New()
	s := NewSessionStorage(sm)
	ctx := loadedContext(t, sm)

	if _, err := s.Get(ctx, "authToken"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	if err := s.Set(ctx, "authToken", "abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, err := s.Get(ctx, "authToken"); err != nil || v != "abc" {
		t.Errorf("Get = %q, %v", v, err)
	}
	if err := s.RenewToken(ctx); err != nil {
		t.Fatalf("RenewToken failed: %v", err)
	}
	if v, _ := s.Get(ctx, "authToken"); v != "abc" {
		t.Errorf("value lost after RenewToken: %q", v)
	}
	if err := s.Remove(ctx, "authToken"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := s.Get(ctx, "authToken"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrNotFound", err)
	}
}

func TestSessionStorage_NoSessionInContext(t *testing.T) {
	s := NewSessionStorage(scs.New())
	ctx := context.Background()

	if _, err := s.Get(ctx, "authToken"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Get error = %v, want ErrUnavailable", err)
	}
	if err := s.Set(ctx, "authToken", "x"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Set error = %v, want ErrUnavailable", err)
	}
	if err := s.Remove(ctx, "authToken"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Remove error = %v, want ErrUnavailable", err)
	}
}
