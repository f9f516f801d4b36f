// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"strconv"
	"time"
)

// idGenerator hands out time-based ids: the current Unix time in
// milliseconds, bumped so that ids are strictly increasing and never
// collide with an id already in the collection.
type idGenerator struct {
	now  func() time.Time
	last int64
}

func (g *idGenerator) next(taken func(id string) bool) string {
	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	for taken(strconv.FormatInt(n, 10)) {
		n++
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
