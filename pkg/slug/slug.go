// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug normalises arbitrary Unicode text into ASCII slugs.
//
// # Usage
//
// Book titles are stored next to their slug ("normalised title") so that
// "Le Petit Prince" and "le petit prince!" collide on the unique index.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// separators matches every run of characters that is not a lowercase ASCII letter or digit.
var separators = regexp.MustCompile(`[^a-z0-9]+`)

// From converts s into a lowercase, hyphen-separated ASCII slug.
//
// # Pipeline
//
//  1. NFD decomposition (é becomes e plus a combining acute).
//  2. Combining marks are dropped.
//  3. Lowercase.
//  4. Runs of anything else collapse into a single hyphen, trimmed at both ends.
func From(s string) string {
	stripAccents := transform.Chain(norm.NFD, transform.RemoveFunc(isMark))
	result, _, err := transform.String(stripAccents, s)
	if err != nil {
		result = s
	}

	result = separators.ReplaceAllString(strings.ToLower(result), "-")
	return strings.Trim(result, "-")
}

func isMark(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
