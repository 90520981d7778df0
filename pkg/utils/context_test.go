package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/askora/askora/pkg/utils"
	"github.com/stretchr/testify/assert"
)

func TestContextSleepCompletes(t *testing.T) {
	t.Parallel()

	result := utils.ContextSleep(t.Context(), time.Millisecond)
	assert.Equal(t, utils.SleepCompleted, result)
}

func TestContextSleepCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	result := utils.ContextSleep(ctx, time.Minute)
	assert.Equal(t, utils.SleepCancelled, result)
}

func TestContextGuard(t *testing.T) {
	t.Parallel()

	assert.False(t, utils.ContextGuard(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	assert.True(t, utils.ContextGuard(ctx))
}
