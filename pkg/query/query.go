// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query reads list-valued URL query parameters.
package query

import (
	"net/url"
	"strings"
)

// Strings collects every value of key, accepting both repeated keys
// (?genre=a&genre=b) and comma-separated lists (?genre=a,b).
func Strings(values url.Values, key string) []string {
	var result []string
	for _, raw := range values[key] {
		for _, part := range strings.Split(raw, ",") {
			if clean := strings.TrimSpace(part); clean != "" {
				result = append(result, clean)
			}
		}
	}
	return result
}
