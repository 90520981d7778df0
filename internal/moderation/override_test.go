package moderation_test

import (
	"testing"
	"time"

	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/moderation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestApplyRequiresDurationForTempBan(t *testing.T) {
	t.Parallel()

	// No dependencies are wired: the duration guard must fire before any
	// store read, point charge, or enforcement.
	override := moderation.NewOverride(nil, nil, nil, nil, nil, zaptest.NewLogger(t))

	action := &moderation.OverrideAction{
		ModeratorID: "mod-1",
		ActionTaken: enum.ReportDecisionBanUserTemp,
		Title:       "Temporary Account Suspension",
	}

	err := override.Apply(t.Context(), "66f0a1b2c3d4e5f6a7b8c9d0", action)
	require.ErrorIs(t, err, moderation.ErrDurationRequired)

	action.BanDuration = -time.Hour
	err = override.Apply(t.Context(), "66f0a1b2c3d4e5f6a7b8c9d0", action)
	require.ErrorIs(t, err, moderation.ErrDurationRequired)
}
