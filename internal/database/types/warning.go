package types

import (
	"time"

	"github.com/askora/askora/internal/database/types/enum"
)

// WarningExpiry is how long a warning stays visible to the user.
const WarningExpiry = 7 * 24 * time.Hour

// Warning represents a moderation warning. Warnings do not change account
// status; they exist to be shown to the user until they expire.
type Warning struct {
	ID        int64      `bun:",pk,autoincrement"`
	UserID    string     `bun:",notnull"`
	Title     string     `bun:",notnull"`
	Reasons   []string   `bun:",array"`
	Severity  int        `bun:",notnull"`
	WarnedBy  enum.Actor `bun:",notnull"`
	ExpiresAt time.Time  `bun:",notnull"`
	Seen      bool       `bun:",notnull,default:false"`
	Delivered bool       `bun:",notnull,default:false"`
	CreatedAt time.Time  `bun:",notnull,default:current_timestamp"`
}
