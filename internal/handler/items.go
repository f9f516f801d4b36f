// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-catalog/internal/imaging"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/render"
	"github.com/olegiv/ocms-catalog/internal/service"
)

// maxFormMemory is the multipart memory limit; larger parts spill to disk.
const maxFormMemory = 8 << 20

// ProductFormView is the view model of a product form.
type ProductFormView struct {
	Action  string
	Heading string
	Submit  string
	Editing bool
	Values  ProductForm
	Errors  FieldErrors
}

// VideoFormView is the view model of a video form.
type VideoFormView struct {
	Action  string
	Heading string
	Submit  string
	Editing bool
	Values  VideoForm
	Errors  FieldErrors
}

// ListData is the view model of the list page.
type ListData struct {
	Products    []*model.Product
	Videos      []*model.Video
	Count       int
	Loading     bool
	ProductForm ProductFormView
	VideoForm   VideoFormView
}

// EditData is the view model of the edit page. Exactly one form is set.
type EditData struct {
	ID          string
	ProductForm *ProductFormView
	VideoForm   *VideoFormView
}

func newProductFormView(f ProductForm, errs FieldErrors) ProductFormView {
	return ProductFormView{
		Action:  RouteItemsProducts,
		Heading: "Add New Product",
		Submit:  "Add Product",
		Values:  f,
		Errors:  errs,
	}
}

func editProductFormView(id string, f ProductForm, errs FieldErrors) *ProductFormView {
	return &ProductFormView{
		Action:  RouteItems + "/" + id,
		Heading: "Edit Product",
		Submit:  "Update Product",
		Editing: true,
		Values:  f,
		Errors:  errs,
	}
}

func newVideoFormView(f VideoForm, errs FieldErrors) VideoFormView {
	return VideoFormView{
		Action:  RouteItemsVideos,
		Heading: "Add New Video",
		Submit:  "Add Video",
		Values:  f,
		Errors:  errs,
	}
}

func editVideoFormView(id string, f VideoForm, errs FieldErrors) *VideoFormView {
	return &VideoFormView{
		Action:  RouteItems + "/" + id,
		Heading: "Edit Video",
		Submit:  "Update Video",
		Editing: true,
		Values:  f,
		Errors:  errs,
	}
}

// ItemsHandler serves the list view and the item forms.
type ItemsHandler struct {
	catalog  service.CatalogService
	renderer *render.Renderer
	images   *imaging.Processor
	logger   *slog.Logger
}

// NewItemsHandler creates a new ItemsHandler.
func NewItemsHandler(cs service.CatalogService, renderer *render.Renderer, images *imaging.Processor, logger *slog.Logger) *ItemsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if images == nil {
		images = imaging.NewProcessor()
	}
	return &ItemsHandler{
		catalog:  cs,
		renderer: renderer,
		images:   images,
		logger:   logger,
	}
}

// List renders the list view.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, newProductFormView(ProductForm{}, nil), newVideoFormView(VideoForm{}, nil))
}

func (h *ItemsHandler) renderList(w http.ResponseWriter, r *http.Request, status int, pf ProductFormView, vf VideoFormView) {
	items := h.catalog.Items()

	data := ListData{
		Count:       len(items),
		Loading:     h.catalog.Loading(),
		Products:    model.Products(items),
		Videos:      model.Videos(items),
		ProductForm: pf,
		VideoForm:   vf,
	}

	renderPage(w, r, h.renderer, h.logger, status, templateList, render.TemplateData{
		Title:         "Content Management",
		Data:          data,
		Authenticated: true,
	})
}

// CreateProduct handles the add-product form.
func (h *ItemsHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var form ProductForm
	form.bind(r.PostForm)
	errs := h.bindImage(r, &form)
	form.sanitize()
	errs = mergeErrors(validateForm(form), errs)

	if errs != nil {
		h.renderList(w, r, http.StatusUnprocessableEntity, newProductFormView(form, errs), newVideoFormView(VideoForm{}, nil))
		return
	}

	if _, err := h.catalog.AddItem(r.Context(), form.product("")); err != nil {
		logAndInternalError(w, h.logger, "failed to add product", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, redirectRoot, "Product added successfully")
}

// CreateVideo handles the add-video form.
func (h *ItemsHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}

	var form VideoForm
	form.bind(r.PostForm)
	form.sanitize()

	if errs := validateForm(form); errs != nil {
		h.renderList(w, r, http.StatusUnprocessableEntity, newProductFormView(ProductForm{}, nil), newVideoFormView(form, errs))
		return
	}

	if _, err := h.catalog.AddItem(r.Context(), form.video("")); err != nil {
		logAndInternalError(w, h.logger, "failed to add video", "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, redirectRoot, "Video added successfully")
}

// EditForm renders the edit page of one entry.
func (h *ItemsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, ok := requireItemWithRedirect(w, r, h.renderer, h.catalog, id)
	if !ok {
		return
	}

	data := model.Match(it,
		func(p *model.Product) EditData {
			return EditData{ID: id, ProductForm: editProductFormView(id, newProductForm(p), nil)}
		},
		func(v *model.Video) EditData {
			return EditData{ID: id, VideoForm: editVideoFormView(id, newVideoForm(v), nil)}
		},
	)
	h.renderEdit(w, r, http.StatusOK, it, data)
}

func (h *ItemsHandler) renderEdit(w http.ResponseWriter, r *http.Request, status int, it model.Item, data EditData) {
	renderPage(w, r, h.renderer, h.logger, status, templateEditItem, render.TemplateData{
		Title:         "Edit " + model.Title(it),
		Data:          data,
		Authenticated: true,
	})
}

// Update handles the edit form. The submitted fields are merged over the
// existing entry before it is saved.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, ok := requireItemWithRedirect(w, r, h.renderer, h.catalog, id)
	if !ok {
		return
	}
	if !h.parseForm(w, r) {
		return
	}

	var (
		updated model.Item
		errs    FieldErrors
		data    EditData
		label   string
	)

	switch existing := it.(type) {
	case *model.Product:
		form := newProductForm(existing)
		form.bind(r.PostForm)
		imgErrs := h.bindImage(r, &form)
		form.sanitize()
		errs = mergeErrors(validateForm(form), imgErrs)
		data = EditData{ID: id, ProductForm: editProductFormView(id, form, errs)}
		updated, label = form.product(id), "Product"
	case *model.Video:
		form := newVideoForm(existing)
		form.bind(r.PostForm)
		form.sanitize()
		errs = validateForm(form)
		data = EditData{ID: id, VideoForm: editVideoFormView(id, form, errs)}
		updated, label = form.video(id), "Video"
	}

	if errs != nil {
		h.renderEdit(w, r, http.StatusUnprocessableEntity, it, data)
		return
	}

	err := h.catalog.EditItem(r.Context(), updated)
	if errors.Is(err, service.ErrItemNotFound) {
		flashError(w, r, h.renderer, redirectRoot, "Item not found")
		return
	}
	if err != nil {
		logAndInternalError(w, h.logger, "failed to update item", "id", id, "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, redirectRoot, label+" updated successfully")
}

// Delete handles the confirmed delete form.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := h.catalog.RemoveItem(r.Context(), id)
	if errors.Is(err, service.ErrItemNotFound) {
		flashError(w, r, h.renderer, redirectRoot, "Item not found")
		return
	}
	if err != nil {
		logAndInternalError(w, h.logger, "failed to delete item", "id", id, "error", err)
		return
	}

	flashSuccess(w, r, h.renderer, redirectRoot, "Item deleted successfully")
}

// parseForm parses urlencoded and multipart bodies, redirecting with a
// flash on failure.
func (h *ItemsHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+maxFormMemory)

	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		flashError(w, r, h.renderer, redirectRoot, "Invalid form data")
		return false
	}
	return true
}

// bindImage replaces the form image with an uploaded file, if one was sent.
func (h *ItemsHandler) bindImage(r *http.Request, form *ProductForm) FieldErrors {
	if r.MultipartForm == nil {
		return nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return FieldErrors{"image": string(imaging.ErrInvalidType)}
	}
	defer func() { _ = file.Close() }()

	if header.Size == 0 {
		return nil
	}
	if !h.images.IsSupportedType(header.Header.Get("Content-Type")) {
		return FieldErrors{"image": string(imaging.ErrInvalidType)}
	}
	if header.Size > imaging.MaxUploadSize {
		return FieldErrors{"image": string(imaging.ErrTooLarge)}
	}

	dataURL, err := h.images.EncodeDataURL(file)
	if err != nil {
		var verr imaging.ValidationError
		if errors.As(err, &verr) {
			return FieldErrors{"image": verr.Error()}
		}
		h.logger.Error("image processing failed", "error", err)
		return FieldErrors{"image": "Error processing image"}
	}

	form.Image = dataURL
	return nil
}

// mergeErrors combines field errors; the first set wins on conflicts.
func mergeErrors(sets ...FieldErrors) FieldErrors {
	var out FieldErrors
	for _, set := range sets {
		for field, msg := range set {
			if out == nil {
				out = FieldErrors{}
			}
			if _, ok := out[field]; !ok {
				out[field] = msg
			}
		}
	}
	return out
}
