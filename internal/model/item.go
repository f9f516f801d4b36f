// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the catalog entry types shared by the stores,
// the orchestration layer and the HTTP handlers.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type is the discriminant of a catalog entry.
type Type string

// Catalog entry types.
const (
	TypeProduct Type = "product"
	TypeVideo   Type = "video"
)

// Category is one of the fixed catalog labels.
type Category string

// Catalog categories offered by the product and video forms.
const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHomeGarden  Category = "Home & Garden"
	CategorySports      Category = "Sports"
	CategoryBeauty      Category = "Beauty"
	CategoryToys        Category = "Toys"
	CategoryOther       Category = "Other"
)

// Categories lists the categories in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHomeGarden,
	CategorySports,
	CategoryBeauty,
	CategoryToys,
	CategoryOther,
}

// Item is a catalog entry: either a *Product or a *Video.
// The set of implementations is closed; switch on the concrete type
// (see Match) instead of comparing Type() strings.
type Item interface {
	ItemID() string
	ItemType() Type
	ItemDescription() string

	// WithID returns a copy of the entry carrying the given id.
	WithID(id string) Item

	sealed()
}

// Product is a priced catalog entry with an optional image.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	// Image is an encoded image (data URL) or nil.
	Image *string `json:"image"`
}

// Video is a catalog entry pointing at a YouTube video.
type Video struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	YouTubeURL  string   `json:"youtubeUrl"`
	Category    Category `json:"category,omitempty"`
}

func (p *Product) ItemID() string          { return p.ID }
func (p *Product) ItemType() Type          { return TypeProduct }
func (p *Product) ItemDescription() string { return p.Description }
func (p *Product) sealed()                 {}

// WithID implements Item.
func (p *Product) WithID(id string) Item {
	cp := *p
	if p.Image != nil {
		img := *p.Image
		cp.Image = &img
	}
	cp.ID = id
	return &cp
}

func (v *Video) ItemID() string          { return v.ID }
func (v *Video) ItemType() Type          { return TypeVideo }
func (v *Video) ItemDescription() string { return v.Description }
func (v *Video) sealed()                 {}

// WithID implements Item.
func (v *Video) WithID(id string) Item {
	cp := *v
	cp.ID = id
	return &cp
}

// Match calls exactly one of the callbacks depending on the variant of it.
func Match[T any](it Item, product func(*Product) T, video func(*Video) T) T {
	switch v := it.(type) {
	case *Product:
		return product(v)
	case *Video:
		return video(v)
	default:
		panic(fmt.Sprintf("model: unknown item variant %T", it))
	}
}

// Title returns the display heading of an entry (product name or video title).
func Title(it Item) string {
	return Match(it,
		func(p *Product) string { return p.Name },
		func(v *Video) string { return v.Title },
	)
}

// ErrUnknownType is returned when decoding an entry with an unsupported discriminant.
var ErrUnknownType = errors.New("unknown item type")

// ErrInvalidEntry marks a stored entry that DecodeItems had to skip.
var ErrInvalidEntry = errors.New("invalid item at index")

// MarshalJSON writes the product with its "type" discriminant.
func (p *Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		Type Type `json:"type"`
		*plain
	}{TypeProduct, (*plain)(p)})
}

// MarshalJSON writes the video with its "type" discriminant.
func (v *Video) MarshalJSON() ([]byte, error) {
	type plain Video
	return json.Marshal(struct {
		Type Type `json:"type"`
		*plain
	}{TypeVideo, (*plain)(v)})
}

// DecodeItem decodes a single tagged entry.
func DecodeItem(data []byte) (Item, error) {
	var probe struct {
		Type Type `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decoding item: %w", err)
	}

	switch probe.Type {
	case TypeProduct:
		var p Product
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("decoding product: %w", err)
		}
		return &p, nil
	case TypeVideo:
		var v Video
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("decoding video: %w", err)
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, probe.Type)
	}
}

// EncodeItems serializes an ordered collection as a JSON array.
func EncodeItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(items)
}

// DecodeItems parses a JSON array of tagged entries, preserving order.
// If data is not an array it returns a nil slice and an error. Entries
// that cannot be decoded are skipped; the remaining entries are returned
// together with an error that wraps ErrInvalidEntry once per skipped entry.
func DecodeItems(data []byte) ([]Item, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decoding items: not an array")
	}

	items := make([]Item, 0, len(raw))
	var skipped []error
	for i, r := range raw {
		it, err := DecodeItem(r)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("%w %d: %w", ErrInvalidEntry, i, err))
			continue
		}
		items = append(items, it)
	}
	return items, errors.Join(skipped...)
}

// Products returns the product entries, preserving order.
func Products(items []Item) []*Product { return collect[*Product](items) }

// Videos returns the video entries, preserving order.
func Videos(items []Item) []*Video { return collect[*Video](items) }

func collect[T Item](items []Item) []T {
	var out []T
	for _, it := range items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
