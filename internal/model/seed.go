// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// SeedItems returns the fallback collection used when nothing has been
// persisted yet. A fresh slice is returned on every call.
func SeedItems() []Item {
	return []Item{
		&Product{
			ID:          "1",
			Name:        "Wireless Headphones",
			Description: "Over-ear noise cancelling headphones with 30 hours of battery life.",
			Price:       129.99,
			Category:    CategoryElectronics,
		},
		&Product{
			ID:          "2",
			Name:        "Trail Running Shoes",
			Description: "Lightweight shoes with a grippy outsole for muddy trails.",
			Price:       89.5,
			Category:    CategorySports,
		},
		&Video{
			ID:          "3",
			Title:       "Learn Go Programming",
			Description: "A full beginner course covering the Go language from scratch.",
			YouTubeURL:  "https://www.youtube.com/watch?v=YS4e4q9oBaU",
			Category:    CategoryBooks,
		},
		&Video{
			ID:          "4",
			Title:       "Home Garden Basics",
			Description: "Planning raised beds and choosing plants for a small backyard.",
			YouTubeURL:  "https://youtu.be/B0DYvV8qvl8",
			Category:    CategoryHomeGarden,
		},
	}
}
