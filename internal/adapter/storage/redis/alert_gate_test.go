package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertGate_Allow(t *testing.T) {
	mr, client := newTestClient(t)
	gate := NewAlertGate(client)
	ctx := context.Background()

	ok, err := gate.Allow(ctx, "weekly_tasks", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Allow(ctx, "weekly_tasks", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "second alert within cool-down is suppressed")

	ok, err = gate.Allow(ctx, "daily_tasks", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "other metrics have their own cool-down")

	mr.FastForward(time.Hour + time.Second)
	ok, err = gate.Allow(ctx, "weekly_tasks", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAlertGate_ZeroCooldownAlwaysAllows(t *testing.T) {
	mr, client := newTestClient(t)
	gate := NewAlertGate(client)

	for i := 0; i < 3; i++ {
		ok, err := gate.Allow(context.Background(), "monthly_revenue", 0)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Empty(t, mr.Keys())
}
