package types

import (
	"time"

	"github.com/askora/askora/internal/database/types/enum"
)

// Ban represents a temporary or permanent account ban.
type Ban struct {
	ID         int64        `bun:",pk,autoincrement"`
	UserID     string       `bun:",notnull"`
	Title      string       `bun:",notnull"`
	Reasons    []string     `bun:",array"`
	BanType    enum.BanType `bun:",notnull"`
	Severity   int          `bun:",notnull"`
	BannedBy   enum.Actor   `bun:",notnull"`
	ExpiresAt  *time.Time   `bun:",nullzero"` // Null for permanent bans
	DurationMs *int64       `bun:",nullzero"`
	CreatedAt  time.Time    `bun:",notnull,default:current_timestamp"`
}

// IsExpired checks if the ban has expired.
func (b *Ban) IsExpired() bool {
	return b.ExpiresAt != nil && time.Now().After(*b.ExpiresAt)
}

// IsPermanent checks if the ban is permanent.
func (b *Ban) IsPermanent() bool {
	return b.BanType == enum.BanTypePerm
}
