// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/middleware"
	"github.com/olegiv/ocms-catalog/internal/model"
	"github.com/olegiv/ocms-catalog/internal/testutil"
)

func newTestAPIHandler(env *testEnv) *APIHandler {
	return NewAPIHandler(env.catalog, testutil.TestLoggerSilent())
}

func jsonRequest(method, target, body string, params map[string]string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	if params != nil {
		r = requestWithURLParams(r, params)
	}
	return r
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) middleware.APIError {
	t.Helper()
	var apiErr middleware.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func decodeItem(t *testing.T, rec *httptest.ResponseRecorder) model.Item {
	t.Helper()
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	it, err := model.DecodeItem(resp.Data)
	require.NoError(t, err)
	return it
}

func TestAPIList(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, RouteAPIItems, nil))

	assertStatus(t, rec.Code, http.StatusOK)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "private, no-cache", rec.Header().Get("Cache-Control"))

	var resp struct {
		Data []json.RawMessage `json:"data"`
		Meta ListMeta          `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ListMeta{Total: 4, Loading: false}, resp.Meta)
	require.Len(t, resp.Data, 4)

	first, err := model.DecodeItem(resp.Data[0])
	require.NoError(t, err)
	assert.Equal(t, "Wireless Headphones", first.(*model.Product).Name)
	assert.Contains(t, string(resp.Data[2]), `"type":"video"`)
}

func TestAPIList_ETag(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, RouteAPIItems, nil))
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	assert.True(t, strings.HasPrefix(etag, `"`) && strings.HasSuffix(etag, `"`))

	for _, header := range []string{etag, "W/" + etag, `"other", ` + etag, "*"} {
		t.Run(header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, RouteAPIItems, nil)
			req.Header.Set("If-None-Match", header)
			rec := httptest.NewRecorder()
			h.List(rec, req)

			assertStatus(t, rec.Code, http.StatusNotModified)
			assert.Zero(t, rec.Body.Len())
		})
	}

	// Any change produces a new tag.
	_, err := env.catalog.AddItem(t.Context(), &model.Video{
		Title:       "Another",
		Description: "Something else entirely.",
		YouTubeURL:  "https://youtu.be/B0DYvV8qvl8",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, RouteAPIItems, nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.List(rec, req)

	assertStatus(t, rec.Code, http.StatusOK)
	assert.NotEqual(t, etag, rec.Header().Get("ETag"))
}

func TestAPIList_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.store.SetItems(t.Context(), nil)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, RouteAPIItems, nil))

	assertStatus(t, rec.Code, http.StatusOK)
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

func TestAPIGet(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.Get(rec, jsonRequest(http.MethodGet, "/api/items/3", "", map[string]string{"id": "3"}))

	assertStatus(t, rec.Code, http.StatusOK)
	v, ok := decodeItem(t, rec).(*model.Video)
	require.True(t, ok)
	assert.Equal(t, "Learn Go Programming", v.Title)

	rec = httptest.NewRecorder()
	h.Get(rec, jsonRequest(http.MethodGet, "/api/items/99", "", map[string]string{"id": "99"}))
	assertStatus(t, rec.Code, http.StatusNotFound)
	assert.Equal(t, codeNotFound, decodeAPIError(t, rec).Error.Code)
}

func TestAPICreate(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, it model.Item)
	}{
		{
			name: "product",
			body: `{"type":"product","name":"Desk Lamp","description":"Adjustable LED desk lamp.","price":39.9,"category":"Home & Garden"}`,
			check: func(t *testing.T, it model.Item) {
				p := it.(*model.Product)
				assert.Equal(t, "Desk Lamp", p.Name)
				assert.Equal(t, 39.9, p.Price)
				assert.Nil(t, p.Image)
			},
		},
		{
			name: "video",
			body: `{"type":"video","title":"Intro to Chi","description":"Routing basics for Go.","youtubeUrl":"https://youtu.be/B0DYvV8qvl8"}`,
			check: func(t *testing.T, it model.Item) {
				v := it.(*model.Video)
				assert.Equal(t, "Intro to Chi", v.Title)
				assert.Empty(t, v.Category)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newTestAPIHandler(env)

			rec := httptest.NewRecorder()
			h.Create(rec, jsonRequest(http.MethodPost, RouteAPIItems, tt.body, nil))

			assertStatus(t, rec.Code, http.StatusCreated)
			it := decodeItem(t, rec)
			require.NotEmpty(t, it.ItemID())
			assert.Equal(t, RouteAPIItems+"/"+it.ItemID(), rec.Header().Get("Location"))
			tt.check(t, it)

			assert.Equal(t, 5, env.catalog.Count())
			stored, ok := env.catalog.Item(it.ItemID())
			require.True(t, ok)
			assert.Equal(t, it.ItemType(), stored.ItemType())
		})
	}
}

func TestAPICreate_IgnoresClientID(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.Create(rec, jsonRequest(http.MethodPost, RouteAPIItems,
		`{"type":"video","id":"1","title":"Intro","description":"Routing basics for Go.","youtubeUrl":"https://youtu.be/B0DYvV8qvl8"}`, nil))

	assertStatus(t, rec.Code, http.StatusCreated)
	assert.NotEqual(t, "1", decodeItem(t, rec).ItemID())
}

func TestAPICreate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		details map[string]string
	}{
		{
			name:   "malformed json",
			body:   `{"type":`,
			status: http.StatusBadRequest,
			code:   codeBadRequest,
		},
		{
			name:    "unknown type",
			body:    `{"type":"podcast"}`,
			status:  http.StatusUnprocessableEntity,
			code:    codeValidationFailed,
			details: map[string]string{"type": `type must be "product" or "video"`},
		},
		{
			name:   "invalid product",
			body:   `{"type":"product","name":"A","description":"Adjustable LED desk lamp.","price":-1,"category":"Garden Gnomes"}`,
			status: http.StatusUnprocessableEntity,
			code:   codeValidationFailed,
			details: map[string]string{
				"name":     "Product name must be at least 2 characters",
				"price":    "Price must be positive",
				"category": "Please select a valid category",
			},
		},
		{
			name:   "non-numeric price string",
			body:   `{"type":"product","name":"Lamp","description":"Adjustable LED desk lamp.","price":"NaN","category":"Other"}`,
			status: http.StatusBadRequest,
			code:   codeBadRequest,
		},
		{
			name:   "invalid video url",
			body:   `{"type":"video","title":"Intro","description":"Routing basics for Go.","youtubeUrl":"https://vimeo.com/1"}`,
			status: http.StatusUnprocessableEntity,
			code:   codeValidationFailed,
			details: map[string]string{
				"youtubeUrl": "Please enter a valid YouTube URL",
			},
		},
		{
			name:   "image is not a data url",
			body:   `{"type":"product","name":"Lamp","description":"Adjustable LED desk lamp.","price":10,"category":"Other","image":"https://example.com/x.png"}`,
			status: http.StatusUnprocessableEntity,
			code:   codeValidationFailed,
			details: map[string]string{
				"image": "Please select a valid image file (JPEG, PNG, WebP)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newTestAPIHandler(env)

			rec := httptest.NewRecorder()
			h.Create(rec, jsonRequest(http.MethodPost, RouteAPIItems, tt.body, nil))

			assertStatus(t, rec.Code, tt.status)
			apiErr := decodeAPIError(t, rec)
			assert.Equal(t, tt.code, apiErr.Error.Code)
			if tt.details != nil {
				assert.Equal(t, tt.details, apiErr.Error.Details)
			}
			assert.Equal(t, 4, env.catalog.Count())
		})
	}
}

func TestAPIUpdate_Merges(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.Update(rec, jsonRequest(http.MethodPut, "/api/items/2", `{"price":75}`, map[string]string{"id": "2"}))

	assertStatus(t, rec.Code, http.StatusOK)
	p := decodeItem(t, rec).(*model.Product)
	assert.Equal(t, "2", p.ID)
	assert.Equal(t, 75.0, p.Price)
	assert.Equal(t, "Trail Running Shoes", p.Name)

	stored, _ := env.catalog.Item("2")
	assert.Equal(t, 75.0, stored.(*model.Product).Price)
}

func TestAPIUpdate_ClearsImage(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	img := "data:image/png;base64,iVBORw0KGgo="
	items := env.store.Items()
	items[0].(*model.Product).Image = &img
	env.store.SetItems(t.Context(), items)

	rec := httptest.NewRecorder()
	h.Update(rec, jsonRequest(http.MethodPut, "/api/items/1", `{"image":null}`, map[string]string{"id": "1"}))

	assertStatus(t, rec.Code, http.StatusOK)
	stored, _ := env.catalog.Item("1")
	assert.Nil(t, stored.(*model.Product).Image)
}

func TestAPIUpdate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
		code   string
	}{
		{"not found", "99", `{"price":1}`, http.StatusNotFound, codeNotFound},
		{"type change", "1", `{"type":"video"}`, http.StatusUnprocessableEntity, codeValidationFailed},
		{"invalid field", "3", `{"title":""}`, http.StatusUnprocessableEntity, codeValidationFailed},
		{"malformed json", "1", `[`, http.StatusBadRequest, codeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newTestAPIHandler(env)
			before := env.catalog.Items()

			rec := httptest.NewRecorder()
			h.Update(rec, jsonRequest(http.MethodPut, "/api/items/"+tt.id, tt.body, map[string]string{"id": tt.id}))

			assertStatus(t, rec.Code, tt.status)
			assert.Equal(t, tt.code, decodeAPIError(t, rec).Error.Code)
			assert.Equal(t, before, env.catalog.Items())
		})
	}
}

func TestAPIDelete(t *testing.T) {
	env := newTestEnv(t)
	h := newTestAPIHandler(env)

	rec := httptest.NewRecorder()
	h.Delete(rec, jsonRequest(http.MethodDelete, "/api/items/1", "", map[string]string{"id": "1"}))
	assertStatus(t, rec.Code, http.StatusNoContent)
	assert.Equal(t, 3, env.catalog.Count())

	rec = httptest.NewRecorder()
	h.Delete(rec, jsonRequest(http.MethodDelete, "/api/items/1", "", map[string]string{"id": "1"}))
	assertStatus(t, rec.Code, http.StatusNotFound)
	assert.Equal(t, codeNotFound, decodeAPIError(t, rec).Error.Code)
}

func TestETagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"", false},
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"x"`, false},
		{"*", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, etagMatches(tt.header, `"abc"`), tt.header)
	}
}
