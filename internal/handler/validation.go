// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/ocms-catalog/internal/imaging"
	"github.com/olegiv/ocms-catalog/internal/model"
)

// MaxPrice is the highest accepted product price.
const MaxPrice = 10000

// FieldErrors maps a form field name to the first message reported for it.
type FieldErrors map[string]string

// formValidator is shared by every form; validator.Validate caches struct
// metadata and is safe for concurrent use.
var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their form names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := RegisterCustomValidators(v); err != nil {
		panic(err)
	}
	return v
}

// RegisterCustomValidators registers the catalog-specific validation rules.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"category": validateCategory,
		"youtube":  validateYouTubeURL,
		"price":    validatePrice,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// validateCategory accepts one of the fixed catalog categories.
func validateCategory(fl validator.FieldLevel) bool {
	value := model.Category(fl.Field().String())
	for _, c := range model.Categories {
		if c == value {
			return true
		}
	}
	return false
}

func validateYouTubeURL(fl validator.FieldLevel) bool {
	return model.IsYouTubeURL(fl.Field().String())
}

// validatePrice accepts a finite decimal number in (0, MaxPrice].
func validatePrice(fl validator.FieldLevel) bool {
	return priceMessage(fl.Field().String()) == ""
}

// priceMessage returns the problem with a submitted price, or "".
func priceMessage(raw string) string {
	p, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	switch {
	case err != nil, math.IsNaN(p), math.IsInf(p, 0):
		return "Price must be a valid number"
	case p <= 0:
		return "Price must be positive"
	case p > MaxPrice:
		return "Price must not exceed $10,000"
	default:
		return ""
	}
}

// fieldMessages holds the user-facing text per struct field and tag.
var fieldMessages = map[string]string{
	"LoginForm.Username.required": "Username is required",
	"LoginForm.Username.min":      "Username must be at least 3 characters",
	"LoginForm.Username.max":      "Username must not exceed 20 characters",
	"LoginForm.Password.required": "Password is required",
	"LoginForm.Password.min":      "Password must be at least 6 characters",
	"LoginForm.Password.max":      "Password must not exceed 20 characters",

	"ProductForm.Name.required":        "Product name is required",
	"ProductForm.Name.min":             "Product name must be at least 2 characters",
	"ProductForm.Name.max":             "Product name must not exceed 50 characters",
	"ProductForm.Description.required": "Description is required",
	"ProductForm.Description.min":      "Description must be at least 10 characters",
	"ProductForm.Description.max":      "Description must not exceed 200 characters",
	"ProductForm.Price.required":       "Price is required",
	"ProductForm.Category.required":    "Category is required",
	"ProductForm.Category.category":    "Please select a valid category",
	"ProductForm.Image.datauri":        string(imaging.ErrInvalidType),
	"ProductForm.Image.startswith":     string(imaging.ErrInvalidType),

	"VideoForm.Title.required":       "Video title is required",
	"VideoForm.Title.min":            "Video title must be at least 2 characters",
	"VideoForm.Title.max":            "Video title must not exceed 100 characters",
	"VideoForm.Description.required": "Description is required",
	"VideoForm.Description.min":      "Description must be at least 10 characters",
	"VideoForm.Description.max":      "Description must not exceed 500 characters",
	"VideoForm.YouTubeURL.required":  "YouTube URL is required",
	"VideoForm.YouTubeURL.url":       "Please enter a valid URL",
	"VideoForm.YouTubeURL.youtube":   "Please enter a valid YouTube URL",
	"VideoForm.Category.category":    "Please select a valid category",
}

// validateForm runs struct validation and returns the problems per field,
// or nil when the form is valid.
func validateForm(form any) FieldErrors {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	return formatValidationErrors(err)
}

// formatValidationErrors converts validator.ValidationErrors to user-facing messages.
func formatValidationErrors(err error) FieldErrors {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return FieldErrors{"": err.Error()}
	}

	out := make(FieldErrors, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := out[e.Field()]; seen {
			continue
		}
		out[e.Field()] = formatSingleValidationError(e)
	}
	return out
}

// formatSingleValidationError creates a user-facing message for a single validation error.
func formatSingleValidationError(e validator.FieldError) string {
	if e.Tag() == "price" {
		return priceMessage(fmt.Sprint(e.Value()))
	}
	if msg, ok := fieldMessages[e.StructNamespace()+"."+e.Tag()]; ok {
		return msg
	}

	field := e.Field()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, e.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
