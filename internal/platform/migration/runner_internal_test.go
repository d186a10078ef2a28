// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

/*
TestToPgx5DSN verifies scheme rewriting for golang-migrate.
*/
func TestToPgx5DSN(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/bookgod":   "pgx5://u:p@db:5432/bookgod",
		"postgresql://u:p@db:5432/bookgod": "pgx5://u:p@db:5432/bookgod",
		"pgx5://u:p@db:5432/bookgod":       "pgx5://u:p@db:5432/bookgod",
		"host=db user=u":                   "host=db user=u",
	}

	for input, want := range tests {
		assert.Equal(t, want, toPgx5DSN(input), input)
	}
}
