// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/pkg/convert"
)

/*
TestOptionalInt distinguishes absent, valid and malformed input.
*/
func TestOptionalInt(t *testing.T) {
	value, err := convert.OptionalInt("")
	require.NoError(t, err)
	assert.Nil(t, value)

	value, err = convert.OptionalInt(" 2021 ")
	require.NoError(t, err)
	assert.Equal(t, 2021, *value)

	_, err = convert.OptionalInt("twenty")
	assert.Error(t, err)
}

/*
TestOptionalFloat mirrors TestOptionalInt for decimals.
*/
func TestOptionalFloat(t *testing.T) {
	value, err := convert.OptionalFloat("9.99")
	require.NoError(t, err)
	assert.InDelta(t, 9.99, *value, 1e-9)

	_, err = convert.OptionalFloat("cheap")
	assert.Error(t, err)
}
