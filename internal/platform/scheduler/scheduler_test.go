// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package scheduler_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookgod/internal/platform/scheduler"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestScheduler_RunsAndStops registers a one-second job and waits for it to fire.
*/
func TestScheduler_RunsAndStops(t *testing.T) {
	runner := scheduler.New(discardLogger(), time.Second)

	var runs atomic.Int32
	require.NoError(t, runner.Register("tick", "@every 1s", func(context.Context) error {
		runs.Add(1)
		return errors.New("failures are logged, not fatal")
	}))

	runner.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.NoError(t, runner.Stop(ctx))
}

/*
TestScheduler_RejectsBadSpec surfaces parse errors at registration.
*/
func TestScheduler_RejectsBadSpec(t *testing.T) {
	runner := scheduler.New(discardLogger(), time.Second)
	assert.Error(t, runner.Register("broken", "every tuesday-ish", func(context.Context) error { return nil }))
}
