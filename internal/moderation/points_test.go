package moderation_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/moderation"
	"github.com/askora/askora/internal/setup/config"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupPointsTest(t *testing.T) (*moderation.PointsTracker, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	cfg := &config.Moderation{
		AdminPointsLimit: 20,
		AdminCooldown:    120,
	}

	tracker := moderation.NewPointsTracker(client, cfg, zaptest.NewLogger(t))

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return tracker, mr, cleanup
}

func TestChargeAccumulates(t *testing.T) {
	t.Parallel()

	tracker, _, cleanup := setupPointsTest(t)
	defer cleanup()

	ctx := t.Context()

	total, err := tracker.Charge(ctx, "mod-1", enum.ReportDecisionWarnUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	total, err = tracker.Charge(ctx, "mod-1", enum.ReportDecisionBanUserTemp)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	total, err = tracker.Charge(ctx, "mod-1", enum.ReportDecisionBanUserPerm)
	require.NoError(t, err)
	assert.Equal(t, int64(17), total)
}

func TestChargeEnforcesLimit(t *testing.T) {
	t.Parallel()

	tracker, _, cleanup := setupPointsTest(t)
	defer cleanup()

	ctx := t.Context()

	for range 2 {
		_, err := tracker.Charge(ctx, "mod-1", enum.ReportDecisionBanUserPerm)
		require.NoError(t, err)
	}

	total, err := tracker.Charge(ctx, "mod-1", enum.ReportDecisionIgnore)
	require.ErrorIs(t, err, moderation.ErrCooldownActive)
	assert.Equal(t, int64(21), total)
}

func TestChargeIsPerModerator(t *testing.T) {
	t.Parallel()

	tracker, _, cleanup := setupPointsTest(t)
	defer cleanup()

	ctx := t.Context()

	_, err := tracker.Charge(ctx, "mod-1", enum.ReportDecisionBanUserPerm)
	require.NoError(t, err)

	total, err := tracker.Charge(ctx, "mod-2", enum.ReportDecisionIgnore)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestChargePreservesWindowTTL(t *testing.T) {
	t.Parallel()

	tracker, mr, cleanup := setupPointsTest(t)
	defer cleanup()

	ctx := t.Context()
	key := "admin:mod-1:mod_points"

	_, err := tracker.Charge(ctx, "mod-1", enum.ReportDecisionWarnUser)
	require.NoError(t, err)

	firstTTL := mr.TTL(key)
	assert.Positive(t, firstTTL)

	// The window must not restart on subsequent charges.
	mr.FastForward(firstTTL / 2)

	_, err = tracker.Charge(ctx, "mod-1", enum.ReportDecisionWarnUser)
	require.NoError(t, err)

	assert.LessOrEqual(t, mr.TTL(key), firstTTL/2)
}

func TestChargeUnknownAction(t *testing.T) {
	t.Parallel()

	tracker, _, cleanup := setupPointsTest(t)
	defer cleanup()

	_, err := tracker.Charge(t.Context(), "mod-1", enum.ReportDecisionUncertain)
	require.ErrorIs(t, err, moderation.ErrInvalidState)
}
