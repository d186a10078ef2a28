// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides shared types and helpers for cursor-based list endpoints.
//
// # Overview
//
// List queries fetch one row more than the requested limit. When the extra row
// comes back, a next page exists and that row's id becomes the next cursor.
// Follow-up queries include the cursor row itself, so nothing is skipped.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 10
	// MaxLimit is the upper bound for items per page.
	MaxLimit = 50
)

// CursorParams holds the parsed cursor and limit from a request's query string.
type CursorParams struct {
	Cursor string
	Limit  int
}

// Fetch is the number of rows a repository must request: limit plus one look-ahead row.
func (p CursorParams) Fetch() int {
	return p.Limit + 1
}

// CursorMeta is the pagination metadata included in API list responses.
type CursorMeta struct {
	Limit       int    `json:"limit"`
	NextCursor  string `json:"next_cursor,omitempty"`
	HasNextPage bool   `json:"has_next_page"`
}

// CursorFromRequest parses "cursor" and "limit" query parameters from an HTTP request.
//
// # Clamping
//
// Missing or non-numeric limits fall back to [DefaultLimit]; values above
// [MaxLimit] are capped and values below 1 reset to the default.
func CursorFromRequest(request *http.Request) CursorParams {
	query := request.URL.Query()

	limit := DefaultLimit
	if raw := query.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	return CursorParams{Cursor: query.Get("cursor"), Limit: Clamp(limit)}
}

// Clamp normalises a requested limit into [1, MaxLimit].
func Clamp(limit int) int {
	switch {
	case limit < 1:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Trim pops the look-ahead row from a result set of up to limit+1 items.
//
// It returns the page to deliver and the metadata describing it. idOf extracts
// the cursor value from the popped item.
func Trim[T any](rows []T, limit int, idOf func(T) string) ([]T, CursorMeta) {
	meta := CursorMeta{Limit: limit}
	if len(rows) <= limit {
		return rows, meta
	}

	meta.HasNextPage = true
	meta.NextCursor = idOf(rows[limit])
	return rows[:limit], meta
}
