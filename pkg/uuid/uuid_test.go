// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/bookgod/pkg/uuid"
)

/*
TestNew_TimeOrdered verifies that later ids sort after earlier ones.
*/
func TestNew_TimeOrdered(t *testing.T) {
	first := uuid.New()
	time.Sleep(2 * time.Millisecond)
	second := uuid.New()

	assert.True(t, uuid.Valid(first))
	assert.Less(t, first, second)
	assert.False(t, uuid.Valid("not-a-uuid"))
}
