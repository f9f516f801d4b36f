// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/render"
	"github.com/olegiv/ocms-catalog/internal/service"
)

// flashAndRedirect sets a flash message and redirects to the given URL.
// Uses http.StatusSeeOther (303) for POST redirects.
func flashAndRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message, messageType string) {
	renderer.SetFlash(r, message, messageType)
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flashError sets an error flash message and redirects to the given URL.
func flashError(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeError)
}

// flashSuccess sets a success flash message and redirects to the given URL.
func flashSuccess(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, url, message string) {
	flashAndRedirect(w, r, renderer, url, message, flashTypeSuccess)
}

// logAndHTTPError logs an error and writes an HTTP error response.
func logAndHTTPError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int, logMsg string, args ...any) {
	logger.Error(logMsg, args...)
	http.Error(w, message, statusCode)
}

// logAndInternalError logs an error and writes a 500 Internal Server Error response.
func logAndInternalError(w http.ResponseWriter, logger *slog.Logger, logMsg string, args ...any) {
	logAndHTTPError(w, logger, "Internal Server Error", http.StatusInternalServerError, logMsg, args...)
}

// renderPage renders a template and turns a rendering failure into a 500.
func renderPage(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, logger *slog.Logger, status int, name string, data render.TemplateData) {
	if err := renderer.RenderStatus(w, r, status, name, data); err != nil {
		logAndInternalError(w, logger, "failed to render template", "template", name, "error", err)
	}
}

// requireItemWithRedirect looks up an entry by id. When it is missing it
// flashes an error, redirects to the list view and returns false.
func requireItemWithRedirect(w http.ResponseWriter, r *http.Request, renderer *render.Renderer, catalog service.CatalogService, id string) (model.Item, bool) {
	it, ok := catalog.Item(id)
	if !ok {
		flashError(w, r, renderer, redirectRoot, "Item not found")
		return nil, false
	}
	return it, true
}

// requireItemWithJSONError looks up an entry by id. When it is missing it
// writes a JSON 404 and returns false.
func requireItemWithJSONError(w http.ResponseWriter, catalog service.CatalogService, id string) (model.Item, bool) {
	it, ok := catalog.Item(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, codeNotFound, "Item not found", nil)
		return nil, false
	}
	return it, true
}
