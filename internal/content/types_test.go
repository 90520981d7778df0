package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModerationStatusAdvances(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		current ModerationStatus
		next    ModerationStatus
		want    bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to flagged", StatusPending, StatusFlagged, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"approved to flagged", StatusApproved, StatusFlagged, true},
		{"flagged to rejected", StatusFlagged, StatusRejected, true},
		{"same status never advances", StatusApproved, StatusApproved, false},
		{"rejected never regresses", StatusRejected, StatusApproved, false},
		{"flagged back to approved", StatusFlagged, StatusApproved, false},
		{"approved back to pending", StatusApproved, StatusPending, false},
		{"unknown current", ModerationStatus("ARCHIVED"), StatusRejected, false},
		{"unknown next", StatusPending, ModerationStatus("ARCHIVED"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.next.Advances(tt.current))
		})
	}
}

func TestStatusesBelow(t *testing.T) {
	t.Parallel()

	assert.Empty(t, statusesBelow(StatusPending))
	assert.ElementsMatch(t,
		[]ModerationStatus{StatusPending},
		statusesBelow(StatusApproved))
	assert.ElementsMatch(t,
		[]ModerationStatus{StatusPending, StatusApproved},
		statusesBelow(StatusFlagged))
	assert.ElementsMatch(t,
		[]ModerationStatus{StatusPending, StatusApproved, StatusFlagged},
		statusesBelow(StatusRejected))
}
