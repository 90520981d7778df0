package types

import (
	"time"

	"github.com/askora/askora/internal/database/types/enum"
)

// ModerationStrike is an append-only audit record of an adverse moderation
// decision. Strikes are never updated or deleted; the per-user aggregate
// lives in ModerationStats.
type ModerationStrike struct {
	ID                   int64            `bun:",pk,autoincrement"`
	UserID               string           `bun:",notnull"`
	AIDecision           string           `bun:"ai_decision,notnull"`
	AIConfidence         float64          `bun:"ai_confidence,notnull"`
	AIReasons            []string         `bun:"ai_reasons,array"`
	Severity             int              `bun:",notnull"`
	RiskScore            float64          `bun:",notnull"`
	TargetContentID      string           `bun:",notnull"`
	TargetType           enum.ContentType `bun:",notnull"`
	TargetContentVersion *int             `bun:",nullzero"` // Questions only
	StrikedBy            enum.Actor       `bun:",notnull"`
	CreatedAt            time.Time        `bun:",notnull,default:current_timestamp"`
}
