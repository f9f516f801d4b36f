// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package guard

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		kind          Kind
		authenticated bool
		want          Decision
	}{
		{Private, false, Decision{Redirect: LoginPath}},
		{Private, true, Decision{Allow: true}},
		{Public, false, Decision{Allow: true}},
		{Public, true, Decision{Redirect: HomePath}},
	}

	for _, tt := range tests {
		name := tt.kind.String()
		if tt.authenticated {
			name += "/authenticated"
		}
		t.Run(name, func(t *testing.T) {
			if got := Decide(tt.kind, tt.authenticated); got != tt.want {
				t.Errorf("Decide(%v, %v) = %+v, want %+v", tt.kind, tt.authenticated, got, tt.want)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if Kind(9).String() != "unknown" {
		t.Error("expected unknown for out-of-range kind")
	}
}
