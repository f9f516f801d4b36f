// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/metrics"
)

// TokenPrefix starts every issued session token.
const TokenPrefix = "fake-jwt-tkn-"

// SimulatedAuth implements AuthService against a single configured account.
type SimulatedAuth struct {
	checker CredentialChecker
	delay   time.Duration
	sleep   SleepFunc
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewAuth creates a SimulatedAuth. The default delay is DefaultLoginDelay.
func NewAuth(checker CredentialChecker, opts ...Option) *SimulatedAuth {
	o := buildOptions(DefaultLoginDelay, opts)
	return &SimulatedAuth{
		checker: checker,
		delay:   o.delay,
		sleep:   o.sleep,
		logger:  o.logger,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
}

// Login waits out the login delay, checks c and, on a match, issues a new
// opaque token into sess. On a mismatch it returns ErrInvalidCredentials
// and leaves sess untouched.
func (a *SimulatedAuth) Login(ctx context.Context, sess *auth.Session, c auth.Credentials) error {
	ctx, span := a.tracer.Start(ctx, "auth.login",
		trace.WithAttributes(attribute.String("auth.username", c.Username)))
	defer span.End()

	a.sleep(a.delay)

	if !a.checker.Verify(c) {
		span.SetStatus(codes.Error, ErrInvalidCredentials.Error())
		a.metrics.ObserveLogin("invalid_credentials")
		a.logger.Warn("login failed", "category", "auth", "username", c.Username)
		return ErrInvalidCredentials
	}

	sess.LoginSuccess(context.WithoutCancel(ctx), TokenPrefix+uuid.NewString())
	a.metrics.ObserveLogin("success")
	a.logger.Info("user logged in", "category", "auth", "username", c.Username)
	return nil
}

// Logout clears sess.
func (a *SimulatedAuth) Logout(ctx context.Context, sess *auth.Session) {
	sess.Logout(context.WithoutCancel(ctx))
	a.logger.Info("user logged out", "category", "auth")
}

var _ AuthService = (*SimulatedAuth)(nil)
