// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/ocms-catalog/internal/auth"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// textSanitizer strips all markup from submitted text fields.
var textSanitizer = bluemonday.StrictPolicy()

// cleanText removes markup and surrounding whitespace. bluemonday escapes
// the text it keeps, so entities are decoded again before storing.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textSanitizer.Sanitize(s)))
}

// bindString overwrites dst with the submitted value of key, if present.
func bindString(values url.Values, key string, dst *string) {
	if v, ok := values[key]; ok && len(v) > 0 {
		*dst = v[0]
	}
}

// LoginForm is the submitted login form.
type LoginForm struct {
	Username string `form:"username" validate:"required,min=3,max=20"`
	Password string `form:"password" validate:"required,min=6,max=20"`
}

func (f *LoginForm) bind(values url.Values) {
	bindString(values, "username", &f.Username)
	bindString(values, "password", &f.Password)
	f.Username = strings.TrimSpace(f.Username)
}

// Credentials returns the submitted pair.
func (f LoginForm) Credentials() auth.Credentials {
	return auth.Credentials{Username: f.Username, Password: f.Password}
}

// ProductForm is the add/edit product form. Price is kept as submitted so
// the form can be shown again unchanged.
type ProductForm struct {
	Name        string `form:"name" validate:"required,min=2,max=50"`
	Description string `form:"description" validate:"required,min=10,max=200"`
	Price       string `form:"price" validate:"required,price"`
	Category    string `form:"category" validate:"required,category"`
	// Image is a data URL, or empty for no image.
	Image string `form:"image" validate:"omitempty,datauri,startswith=data:image/"`
}

// newProductForm returns a form prefilled from p; nil gives an empty form.
func newProductForm(p *model.Product) ProductForm {
	if p == nil {
		return ProductForm{}
	}
	f := ProductForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       strconv.FormatFloat(p.Price, 'f', -1, 64),
		Category:    string(p.Category),
	}
	if p.Image != nil {
		f.Image = *p.Image
	}
	return f
}

// bind overlays the submitted text fields. The image is handled by the
// upload path; remove_image clears it.
func (f *ProductForm) bind(values url.Values) {
	bindString(values, "name", &f.Name)
	bindString(values, "description", &f.Description)
	bindString(values, "price", &f.Price)
	bindString(values, "category", &f.Category)
	if values.Get("remove_image") != "" {
		f.Image = ""
	}
}

func (f *ProductForm) sanitize() {
	f.Name = cleanText(f.Name)
	f.Description = cleanText(f.Description)
	f.Price = strings.TrimSpace(f.Price)
	f.Category = strings.TrimSpace(f.Category)
}

// product builds the entry described by a validated form.
func (f ProductForm) product(id string) *model.Product {
	price, _ := strconv.ParseFloat(f.Price, 64)
	p := &model.Product{
		ID:          id,
		Name:        f.Name,
		Description: f.Description,
		Price:       price,
		Category:    model.Category(f.Category),
	}
	if f.Image != "" {
		img := f.Image
		p.Image = &img
	}
	return p
}

// VideoForm is the add/edit video form.
type VideoForm struct {
	Title       string `form:"title" validate:"required,min=2,max=100"`
	Description string `form:"description" validate:"required,min=10,max=500"`
	YouTubeURL  string `form:"youtubeUrl" validate:"required,url,youtube"`
	Category    string `form:"category" validate:"omitempty,category"`
}

// newVideoForm returns a form prefilled from v; nil gives an empty form.
func newVideoForm(v *model.Video) VideoForm {
	if v == nil {
		return VideoForm{}
	}
	return VideoForm{
		Title:       v.Title,
		Description: v.Description,
		YouTubeURL:  v.YouTubeURL,
		Category:    string(v.Category),
	}
}

func (f *VideoForm) bind(values url.Values) {
	bindString(values, "title", &f.Title)
	bindString(values, "description", &f.Description)
	bindString(values, "youtubeUrl", &f.YouTubeURL)
	bindString(values, "category", &f.Category)
}

func (f *VideoForm) sanitize() {
	f.Title = cleanText(f.Title)
	f.Description = cleanText(f.Description)
	f.YouTubeURL = strings.TrimSpace(f.YouTubeURL)
	f.Category = strings.TrimSpace(f.Category)
}

// video builds the entry described by a validated form.
func (f VideoForm) video(id string) *model.Video {
	return &model.Video{
		ID:          id,
		Title:       f.Title,
		Description: f.Description,
		YouTubeURL:  f.YouTubeURL,
		Category:    model.Category(f.Category),
	}
}
