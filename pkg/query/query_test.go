// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package query_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookgod/pkg/query"
)

/*
TestStrings accepts repeated keys and comma lists alike.
*/
func TestStrings(t *testing.T) {
	values, err := url.ParseQuery("genre=fantasy,%20horror&genre=drama&genre=")
	assert.NoError(t, err)

	assert.Equal(t, []string{"fantasy", "horror", "drama"}, query.Strings(values, "genre"))
	assert.Nil(t, query.Strings(values, "missing"))
}
