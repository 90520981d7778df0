// Package enum defines the shared enumerations persisted in both stores.
package enum

// UserStatus is the lifecycle state of a user account.
type UserStatus string

const (
	UserStatusActive     UserStatus = "ACTIVE"
	UserStatusSuspended  UserStatus = "SUSPENDED"
	UserStatusTerminated UserStatus = "TERMINATED"
)

// BanType distinguishes temporary from permanent bans.
type BanType string

const (
	BanTypeTemp BanType = "TEMP"
	BanTypePerm BanType = "PERM"
)

// Actor identifies who issued a moderation action.
type Actor string

const (
	ActorAIModeration    Actor = "AI_MODERATION"
	ActorAdminModeration Actor = "ADMIN_MODERATION"
)

// Decision is the outcome of the content moderation pipeline.
type Decision string

const (
	DecisionBanPerm Decision = "BAN_PERM"
	DecisionBanTemp Decision = "BAN_TEMP"
	DecisionWarn    Decision = "WARN"
	DecisionIgnore  Decision = "IGNORE"
)

// ReportDecision is the outcome of the report moderation pipeline.
// Unlike Decision it includes UNCERTAIN, which defers the report to a
// human moderator.
type ReportDecision string

const (
	ReportDecisionBanUserPerm ReportDecision = "BAN_USER_PERM"
	ReportDecisionBanUserTemp ReportDecision = "BAN_USER_TEMP"
	ReportDecisionWarnUser    ReportDecision = "WARN_USER"
	ReportDecisionUncertain   ReportDecision = "UNCERTAIN"
	ReportDecisionIgnore      ReportDecision = "IGNORE"
)

// ContentType identifies the kind of content a strike or report targets.
type ContentType string

const (
	ContentTypeQuestion ContentType = "QUESTION"
	ContentTypeAnswer   ContentType = "ANSWER"
	ContentTypeReply    ContentType = "REPLY"
)
