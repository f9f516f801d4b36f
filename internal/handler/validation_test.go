// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ocms-catalog/internal/model"
)

func TestPriceMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"29.99", ""},
		{" 5 ", ""},
		{"10000", ""},
		{"0.01", ""},
		{"abc", "Price must be a valid number"},
		{"", "Price must be a valid number"},
		{"0", "Price must be positive"},
		{"-1", "Price must be positive"},
		{"10000.5", "Price must not exceed $10,000"},
		{"NaN", "Price must be a valid number"},
		{"nan", "Price must be a valid number"},
		{"Inf", "Price must be a valid number"},
		{"-Infinity", "Price must be a valid number"},
		{"1e400", "Price must be a valid number"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, priceMessage(tt.in))
		})
	}
}

func TestValidateForm_Login(t *testing.T) {
	assert.Nil(t, validateForm(LoginForm{Username: "admin", Password: "admin123"}))

	errs := validateForm(LoginForm{Username: "ab", Password: ""})
	assert.Equal(t, FieldErrors{
		"username": "Username must be at least 3 characters",
		"password": "Password is required",
	}, errs)
}

func TestValidateForm_Product(t *testing.T) {
	valid := ProductForm{
		Name:        "Desk Lamp",
		Description: "Adjustable LED desk lamp.",
		Price:       "39.90",
		Category:    string(model.CategoryOther),
	}
	assert.Nil(t, validateForm(valid))

	withImage := valid
	withImage.Image = "data:image/png;base64,iVBORw0KGgo="
	assert.Nil(t, validateForm(withImage))

	notImage := valid
	notImage.Image = "data:text/plain;base64,aGVsbG8="
	assert.Equal(t, FieldErrors{"image": "Please select a valid image file (JPEG, PNG, WebP)"}, validateForm(notImage))
}

func TestValidateForm_VideoCategoryIsOptional(t *testing.T) {
	form := VideoForm{
		Title:       "Intro",
		Description: "Routing basics for Go.",
		YouTubeURL:  "https://www.youtube.com/watch?v=YS4e4q9oBaU",
	}
	assert.Nil(t, validateForm(form))

	for _, c := range model.Categories {
		form.Category = string(c)
		assert.Nil(t, validateForm(form), c)
	}
}

func TestRegisterCustomValidators(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterCustomValidators(v))

	assert.NoError(t, v.Var("Books", "category"))
	assert.Error(t, v.Var("books", "category"))
	assert.NoError(t, v.Var("youtu.be/B0DYvV8qvl8", "youtube"))
	assert.Error(t, v.Var("https://example.com/watch?v=1", "youtube"))
	assert.NoError(t, v.Var("12", "price"))
	assert.Error(t, v.Var("12,50", "price"))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  plain  ", "plain"},
		{"<b>bold</b> text", "bold text"},
		{"<script>alert(1)</script>safe", "safe"},
		{"Tom & Jerry", "Tom & Jerry"},
		{`5 < 6 "quoted"`, `5 < 6 "quoted"`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}

func TestProductForm_BindOverlaysExisting(t *testing.T) {
	img := "data:image/png;base64,iVBORw0KGgo="
	form := newProductForm(&model.Product{
		Name:        "Lamp",
		Description: "A lamp for the desk.",
		Price:       12.5,
		Category:    model.CategoryOther,
		Image:       &img,
	})
	assert.Equal(t, "12.5", form.Price)

	form.bind(url.Values{"name": {"Floor Lamp"}})
	assert.Equal(t, "Floor Lamp", form.Name)
	assert.Equal(t, "A lamp for the desk.", form.Description)
	assert.Equal(t, img, form.Image)

	form.bind(url.Values{"remove_image": {"on"}})
	assert.Empty(t, form.Image)
	assert.Nil(t, form.product("7").Image)
	assert.Equal(t, "7", form.product("7").ID)
}

func TestVideoForm_Video(t *testing.T) {
	var form VideoForm
	form.bind(url.Values{
		"title":       {" <i>Intro</i> "},
		"description": {"Routing basics for Go."},
		"youtubeUrl":  {" https://youtu.be/B0DYvV8qvl8 "},
	})
	form.sanitize()

	v := form.video("9")
	assert.Equal(t, &model.Video{
		ID:          "9",
		Title:       "Intro",
		Description: "Routing basics for Go.",
		YouTubeURL:  "https://youtu.be/B0DYvV8qvl8",
	}, v)
}
