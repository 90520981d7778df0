package moderation

import "errors"

var (
	// ErrInvalidState indicates a precondition for the operation does not
	// hold, such as content that is no longer PENDING or a report that is
	// not open for review. Jobs hitting this are dropped, not retried.
	ErrInvalidState = errors.New("operation precondition not met")
	// ErrCooldownActive indicates the moderator exceeded the action budget
	// for the current window. The caller should retry after the window.
	ErrCooldownActive = errors.New("moderation cooldown active")
	// ErrDurationRequired indicates a temporary ban was requested without
	// an explicit duration.
	ErrDurationRequired = errors.New("temporary ban requires a duration")
)
