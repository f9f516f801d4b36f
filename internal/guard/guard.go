// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guard decides whether a view may be shown for the current
// authentication state.
package guard

// Kind is the guard attached to a view.
type Kind int

const (
	// Public views are for unauthenticated visitors only (the login form).
	Public Kind = iota
	// Private views require an authenticated session.
	Private
)

// Entry points used for redirects.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard check. When Allow is false,
// Redirect holds the path to send the visitor to.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide evaluates the guard for a view of the given kind.
func Decide(kind Kind, authenticated bool) Decision {
	switch {
	case kind == Private && !authenticated:
		return Decision{Redirect: LoginPath}
	case kind == Public && authenticated:
		return Decision{Redirect: HomePath}
	default:
		return Decision{Allow: true}
	}
}
