// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/imaging"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/service"
)

// maxAPIBody bounds JSON request bodies. A product may carry an image
// data URL, which is about a third larger than the upload.
const maxAPIBody = imaging.MaxUploadSize*4/3 + 64<<10

// ListMeta describes the collection returned by GET /api/items.
type ListMeta struct {
	Total   int  `json:"total"`
	Loading bool `json:"loading"`
}

// ListResponse is the body of GET /api/items.
type ListResponse struct {
	Data []model.Item `json:"data"`
	Meta ListMeta     `json:"meta"`
}

// ItemResponse wraps a single entry.
type ItemResponse struct {
	Data model.Item `json:"data"`
}

// itemPayload is a JSON entry as submitted by API clients. Keys absent
// from the body keep the values the payload was prefilled with.
type itemPayload struct {
	Type        model.Type  `json:"type"`
	Name        string      `json:"name"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	YouTubeURL  string      `json:"youtubeUrl"`
	Image       *string     `json:"image"`
}

// payloadFrom prefills a payload with an existing entry.
func payloadFrom(it model.Item) itemPayload {
	return model.Match(it,
		func(p *model.Product) itemPayload {
			pl := itemPayload{
				Type:        model.TypeProduct,
				Name:        p.Name,
				Description: p.Description,
				Price:       json.Number(strconv.FormatFloat(p.Price, 'f', -1, 64)),
				Category:    string(p.Category),
			}
			if p.Image != nil {
				img := *p.Image
				pl.Image = &img
			}
			return pl
		},
		func(v *model.Video) itemPayload {
			return itemPayload{
				Type:        model.TypeVideo,
				Title:       v.Title,
				Description: v.Description,
				YouTubeURL:  v.YouTubeURL,
				Category:    string(v.Category),
			}
		},
	)
}

// toItem validates the payload and builds the entry with the given id.
func (pl itemPayload) toItem(id string) (model.Item, FieldErrors) {
	switch pl.Type {
	case model.TypeProduct:
		form := ProductForm{
			Name:        pl.Name,
			Description: pl.Description,
			Price:       pl.Price.String(),
			Category:    pl.Category,
		}
		if pl.Image != nil {
			form.Image = *pl.Image
		}
		form.sanitize()
		if errs := validateForm(form); errs != nil {
			return nil, errs
		}
		return form.product(id), nil
	case model.TypeVideo:
		form := VideoForm{
			Title:       pl.Title,
			Description: pl.Description,
			YouTubeURL:  pl.YouTubeURL,
			Category:    pl.Category,
		}
		form.sanitize()
		if errs := validateForm(form); errs != nil {
			return nil, errs
		}
		return form.video(id), nil
	default:
		return nil, FieldErrors{"type": `type must be "product" or "video"`}
	}
}

// APIHandler serves the JSON item API.
type APIHandler struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(cs service.CatalogService, logger *slog.Logger) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIHandler{catalog: cs, logger: logger}
}

// List handles GET /api/items. The response carries an ETag derived from
// the body; a matching If-None-Match gets 304 Not Modified.
func (h *APIHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.catalog.Items()
	if items == nil {
		items = []model.Item{}
	}

	body, err := json.Marshal(ListResponse{
		Data: items,
		Meta: ListMeta{Total: len(items), Loading: h.catalog.Loading()},
	})
	if err != nil {
		h.logger.Error("failed to encode items", "error", err)
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Internal Server Error", nil)
		return
	}

	etag := `"` + strconv.FormatUint(xxhash.Sum64(body), 16) + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "private, no-cache")

	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// Get handles GET /api/items/{id}.
func (h *APIHandler) Get(w http.ResponseWriter, r *http.Request) {
	it, ok := requireItemWithJSONError(w, h.catalog, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ItemResponse{Data: it})
}

// Create handles POST /api/items.
func (h *APIHandler) Create(w http.ResponseWriter, r *http.Request) {
	var pl itemPayload
	if !h.decode(w, r, &pl) {
		return
	}

	data, errs := pl.toItem("")
	if errs != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, codeValidationFailed, "Validation failed", errs)
		return
	}

	created, err := h.catalog.AddItem(r.Context(), data)
	if err != nil {
		h.logger.Error("failed to add item", "error", err)
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Internal Server Error", nil)
		return
	}

	w.Header().Set("Location", RouteAPIItems+"/"+created.ItemID())
	writeJSON(w, http.StatusCreated, ItemResponse{Data: created})
}

// Update handles PUT /api/items/{id}. The body is merged over the stored
// entry; its type cannot change.
func (h *APIHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, ok := requireItemWithJSONError(w, h.catalog, id)
	if !ok {
		return
	}

	pl := payloadFrom(existing)
	if !h.decode(w, r, &pl) {
		return
	}
	if pl.Type != existing.ItemType() {
		writeJSONError(w, http.StatusUnprocessableEntity, codeValidationFailed, "Validation failed",
			FieldErrors{"type": "type cannot be changed"})
		return
	}

	updated, errs := pl.toItem(id)
	if errs != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, codeValidationFailed, "Validation failed", errs)
		return
	}

	err := h.catalog.EditItem(r.Context(), updated)
	if errors.Is(err, service.ErrItemNotFound) {
		writeJSONError(w, http.StatusNotFound, codeNotFound, "Item not found", nil)
		return
	}
	if err != nil {
		h.logger.Error("failed to update item", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Internal Server Error", nil)
		return
	}

	writeJSON(w, http.StatusOK, ItemResponse{Data: updated})
}

// Delete handles DELETE /api/items/{id}.
func (h *APIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.catalog.RemoveItem(r.Context(), id)
	if errors.Is(err, service.ErrItemNotFound) {
		writeJSONError(w, http.StatusNotFound, codeNotFound, "Item not found", nil)
		return
	}
	if err != nil {
		h.logger.Error("failed to delete item", "id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, codeInternal, "Internal Server Error", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body into v, writing a 400 on failure.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxAPIBody)); err != nil {
		writeJSONError(w, http.StatusRequestEntityTooLarge, codeBadRequest, "Request body too large", nil)
		return false
	}
	if err := json.Unmarshal(buf.Bytes(), v); err != nil {
		writeJSONError(w, http.StatusBadRequest, codeBadRequest, "Invalid JSON body", nil)
		return false
	}
	return true
}

// etagMatches reports whether an If-None-Match header lists etag,
// accepting weak validators.
func etagMatches(ifNoneMatch, etag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for part := range strings.SplitSeq(ifNoneMatch, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
