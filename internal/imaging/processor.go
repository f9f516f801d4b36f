// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imaging validates uploaded product images and converts them to
// data-URL strings stored on the item.
package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp" // WebP decoder
)

// Limits applied to uploads.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxDimension  = 800     // longest edge after downscaling
	JPEGQuality   = 85
)

// Supported MIME types.
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeWebP = "image/webp"
)

// ValidationError is an upload problem that can be shown to the user as is.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// Upload validation errors.
const (
	ErrInvalidType ValidationError = "Please select a valid image file (JPEG, PNG, WebP)"
	ErrTooLarge    ValidationError = "Image size must be less than 5MB"
)

// Processor converts uploads into data URLs.
type Processor struct {
	maxSize int64
	maxDim  int
}

// NewProcessor creates a processor with the default limits.
func NewProcessor() *Processor {
	return &Processor{
		maxSize: MaxUploadSize,
		maxDim:  MaxDimension,
	}
}

// IsSupportedType reports whether mimeType is accepted for upload.
func (p *Processor) IsSupportedType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// EncodeDataURL reads an uploaded image, normalizes its EXIF orientation,
// downscales it to fit MaxDimension and returns it as a base64 data URL.
// PNG stays PNG; JPEG and WebP are encoded as JPEG.
func (p *Processor) EncodeDataURL(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("reading image data: %w", err)
	}
	if int64(len(data)) > p.maxSize {
		return "", ErrTooLarge
	}

	format := detectFormat(data)
	if format == "" {
		return "", ErrInvalidType
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", ErrInvalidType
	}

	img = applyOrientation(img, readExifOrientation(bytes.NewReader(data)))

	b := img.Bounds()
	if b.Dx() > p.maxDim || b.Dy() > p.maxDim {
		img = imaging.Fit(img, p.maxDim, p.maxDim, imaging.Lanczos)
	}

	out, mimeType, err := encodeImage(img, format)
	if err != nil {
		return "", fmt.Errorf("encoding image: %w", err)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(out), nil
}

// readExifOrientation reads the EXIF orientation tag from image data.
// Returns 1 (normal) if orientation cannot be determined.
func readExifOrientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return orientation
}

// applyOrientation applies EXIF orientation transformation to an image.
// Orientation values:
// 1: Normal
// 2: Flip horizontal
// 3: Rotate 180°
// 4: Flip vertical
// 5: Rotate 90° CW + flip horizontal
// 6: Rotate 90° CW
// 7: Rotate 90° CCW + flip horizontal
// 8: Rotate 90° CCW
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.FlipH(imaging.Rotate270(img))
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.FlipH(imaging.Rotate90(img))
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// encodeImage encodes img and returns the bytes with their MIME type.
// There is no pure Go WebP encoder, so WebP input is written as JPEG.
func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer

	if format == "png" {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), MimeTypePNG, nil
	}

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), MimeTypeJPEG, nil
}

// detectFormat detects the image format from raw bytes.
func detectFormat(data []byte) string {
	contentType := http.DetectContentType(data)
	switch {
	case strings.Contains(contentType, "jpeg"):
		return "jpeg"
	case strings.Contains(contentType, "png"):
		return "png"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return ""
	}
}
