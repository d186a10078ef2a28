// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert provides strict conversions for optional query parameters.

Each helper returns nil for an empty string and an error for malformed input,
so handlers can tell "filter absent" apart from "filter invalid".
*/
package convert

import (
	"strconv"
	"strings"
)

// OptionalInt parses s as an int, returning nil when s is empty.
func OptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// OptionalFloat parses s as a float64, returning nil when s is empty.
func OptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
