// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/render"
	"github.com/olegiv/ocms-catalog/internal/service"
)

// TokenRenewer rotates the browser session cookie.
type TokenRenewer interface {
	RenewToken(ctx context.Context) error
}

// LoginData is the view model of the login page.
type LoginData struct {
	Username string
	Errors   FieldErrors
}

// AuthHandler handles authentication routes.
type AuthHandler struct {
	auth            service.AuthService
	renderer        *render.Renderer
	renewer         TokenRenewer
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. renewer and lp may be nil.
func NewAuthHandler(as service.AuthService, renderer *render.Renderer, renewer TokenRenewer, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		auth:            as,
		renderer:        renderer,
		renewer:         renewer,
		loginProtection: lp,
		logger:          logger,
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, http.StatusOK, LoginData{})
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data LoginData) {
	renderPage(w, r, h.renderer, h.logger, status, templateLogin, render.TemplateData{
		Title: "Sign in",
		Data:  data,
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectLogin, "Invalid form data")
		return
	}

	var form LoginForm
	form.bind(r.PostForm)

	if errs := validateForm(form); errs != nil {
		h.renderLogin(w, r, http.StatusUnprocessableEntity, LoginData{Username: form.Username, Errors: errs})
		return
	}

	sess := middleware.GetSession(r)
	if sess == nil {
		logAndInternalError(w, h.logger, "login without a loaded session")
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(form.Username); locked {
			h.logger.Warn("login attempt on locked account", "category", "auth", "username", form.Username)
			flashError(w, r, h.renderer, redirectLogin,
				fmt.Sprintf("Account temporarily locked. Please try again in %s.", formatDuration(remaining)))
			return
		}
	}

	err := h.auth.Login(r.Context(), sess, form.Credentials())
	if errors.Is(err, service.ErrInvalidCredentials) {
		flashError(w, r, h.renderer, redirectLogin, h.failedLoginMessage(form.Username, err))
		return
	}
	if err != nil {
		logAndInternalError(w, h.logger, "login error", "error", err)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(form.Username)
	}

	// Regenerate session ID to prevent session fixation
	if h.renewer != nil {
		if err := h.renewer.RenewToken(r.Context()); err != nil {
			h.logger.Warn("session renewal failed", "category", "auth", "error", err)
		}
	}

	flashSuccess(w, r, h.renderer, redirectRoot, "Welcome back, "+form.Username+"!")
}

// failedLoginMessage records the failed attempt and returns the text to show.
func (h *AuthHandler) failedLoginMessage(username string, err error) string {
	if h.loginProtection == nil {
		return err.Error()
	}
	if locked, lockDuration := h.loginProtection.RecordFailedAttempt(username); locked {
		return fmt.Sprintf("Too many failed attempts. Account locked for %s.", formatDuration(lockDuration))
	}
	if remaining := h.loginProtection.GetRemainingAttempts(username); remaining <= 3 && remaining > 0 {
		return fmt.Sprintf("%s (%d attempts remaining)", err.Error(), remaining)
	}
	return err.Error()
}

// Logout handles user logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess := middleware.GetSession(r); sess != nil {
		h.auth.Logout(r.Context(), sess)
	}

	if h.renewer != nil {
		if err := h.renewer.RenewToken(r.Context()); err != nil {
			h.logger.Warn("session renewal failed", "category", "auth", "error", err)
		}
	}

	flashAndRedirect(w, r, h.renderer, redirectLogin, "You have been logged out.", flashTypeInfo)
}

// formatDuration formats a duration into a human-readable string.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	}
	hours := int(d.Hours())
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
