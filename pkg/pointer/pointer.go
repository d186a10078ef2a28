// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer holds generic helpers for optional (pointer) fields in
// partial-update inputs.
package pointer

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}

// Or dereferences p, returning fallback when p is nil.
//
// Partial updates use it to keep the stored value for omitted fields:
//
//	book.Title = pointer.Or(input.Title, book.Title)
func Or[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
