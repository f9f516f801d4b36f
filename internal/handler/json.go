// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/ocms-catalog/internal/middleware"
)

// API error codes.
const (
	codeBadRequest       = "bad_request"
	codeNotFound         = "not_found"
	codeValidationFailed = "validation_failed"
	codeInternal         = "internal_error"
)

// writeJSONError writes a JSON error response in the API error format.
func writeJSONError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	middleware.WriteAPIError(w, statusCode, code, message, details)
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
