package types

import (
	"time"

	"github.com/askora/askora/internal/database/types/enum"
)

// User is the relational-store record for a forum account. Content itself
// lives in the document store; this row carries identity and account status.
type User struct {
	ID        string          `bun:",pk"`
	Username  string          `bun:",notnull"`
	Status    enum.UserStatus `bun:",notnull,default:'ACTIVE'"`
	CreatedAt time.Time       `bun:",notnull,default:current_timestamp"`
	UpdatedAt time.Time       `bun:",notnull,default:current_timestamp"`
}

// IsSuspended checks if the account is currently suspended.
func (u *User) IsSuspended() bool {
	return u.Status == enum.UserStatusSuspended
}

// IsTerminated checks if the account is permanently terminated.
func (u *User) IsTerminated() bool {
	return u.Status == enum.UserStatusTerminated
}
