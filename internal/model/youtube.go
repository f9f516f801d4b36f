// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "regexp"

var (
	youtubeURLRegex = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.?be)/.+$`)
	youtubeIDRegex  = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)
)

// IsYouTubeURL reports whether s has the shape of a YouTube watch or share URL.
func IsYouTubeURL(s string) bool {
	return youtubeURLRegex.MatchString(s)
}

// ExtractYouTubeID returns the 11 character video id from a YouTube URL,
// or an empty string when none can be found.
func ExtractYouTubeID(url string) string {
	m := youtubeIDRegex.FindStringSubmatch(url)
	if m == nil || len(m[7]) != 11 {
		return ""
	}
	return m[7]
}

// EmbedURL returns the iframe URL for a YouTube link, or "" if the id is unknown.
func EmbedURL(url string) string {
	id := ExtractYouTubeID(url)
	if id == "" {
		return ""
	}
	return "https://www.youtube.com/embed/" + id
}
