package types

import "time"

// Trust score deltas applied per moderation decision. These are the only
// mutations of the trust score anywhere in the system.
const (
	TrustDeltaBanPerm = -0.25
	TrustDeltaBanTemp = -0.10
	TrustDeltaWarn    = -0.03
	TrustDeltaIgnore  = +0.01
)

// ModerationStats tracks a user's cumulative moderation history. The trust
// score starts at 1.0 and decays on adverse decisions, feeding back into
// future risk scoring.
type ModerationStats struct {
	UserID        string     `bun:",pk"`
	TotalStrikes  int        `bun:",notnull,default:0"`
	RejectedCount int        `bun:",notnull,default:0"`
	FlaggedCount  int        `bun:",notnull,default:0"`
	LastStrikeAt  *time.Time `bun:",nullzero"`
	TrustScore    float64    `bun:",notnull,default:1.0"`
	UpdatedAt     time.Time  `bun:",notnull,default:current_timestamp"`
}

// ClampTrust bounds a trust score to the valid [0,1] range.
func ClampTrust(score float64) float64 {
	if score < 0 {
		return 0
	}

	if score > 1 {
		return 1
	}

	return score
}
