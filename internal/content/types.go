// Package content implements the document store holding questions, answers,
// replies, question versions, and reports.
package content

import (
	"time"

	"github.com/askora/askora/internal/database/types/enum"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationStatus is the per-content moderation state. Statuses only ever
// advance in the order PENDING < APPROVED < FLAGGED < REJECTED.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "PENDING"
	StatusApproved ModerationStatus = "APPROVED"
	StatusFlagged  ModerationStatus = "FLAGGED"
	StatusRejected ModerationStatus = "REJECTED"
)

// statusRank orders moderation statuses for the advancement guard.
var statusRank = map[ModerationStatus]int{
	StatusPending:  0,
	StatusApproved: 1,
	StatusFlagged:  2,
	StatusRejected: 3,
}

// Advances reports whether moving from current to next is a forward
// transition. Unknown statuses never advance.
func (next ModerationStatus) Advances(current ModerationStatus) bool {
	currentRank, ok := statusRank[current]
	if !ok {
		return false
	}

	nextRank, ok := statusRank[next]
	if !ok {
		return false
	}

	return nextRank > currentRank
}

// statusesBelow returns every status ranked strictly below s. Used as an
// update filter so that regressions are silent no-ops.
func statusesBelow(s ModerationStatus) []ModerationStatus {
	below := make([]ModerationStatus, 0, len(statusRank))

	for status, rank := range statusRank {
		if rank < statusRank[s] {
			below = append(below, status)
		}
	}

	return below
}

// EditedBy identifies what kind of editor produced a question version.
type EditedBy string

const (
	EditedByUser EditedBy = "USER"
	EditedByAI   EditedBy = "AI"
)

// ReportStatus is the lifecycle state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportReviewing ReportStatus = "REVIEWING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// ReportReason is the reporter-selected category.
type ReportReason string

const (
	ReasonSpam          ReportReason = "SPAM"
	ReasonHarassment    ReportReason = "HARASSMENT"
	ReasonHateSpeech    ReportReason = "HATE_SPEECH"
	ReasonInappropriate ReportReason = "INAPPROPRIATE_CONTENT"
	ReasonMisinfo       ReportReason = "MISINFORMATION"
	ReasonOther         ReportReason = "OTHER"
)

// Question is the live question document. Title, body, and tags are
// denormalized from the active QuestionVersion.
type Question struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"userId"`
	Title            string             `bson:"title"`
	Body             string             `bson:"body"`
	Tags             []string           `bson:"tags"`
	CurrentVersion   int                `bson:"currentVersion"`
	ModerationStatus ModerationStatus   `bson:"moderationStatus"`
	IsActive         bool               `bson:"isActive"`
	IsDeleted        bool               `bson:"isDeleted"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

// Answer is an answer document.
type Answer struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	QuestionID       primitive.ObjectID `bson:"questionId"`
	UserID           string             `bson:"userId"`
	Body             string             `bson:"body"`
	ModerationStatus ModerationStatus   `bson:"moderationStatus"`
	IsActive         bool               `bson:"isActive"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

// Reply is a reply document.
type Reply struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	AnswerID         primitive.ObjectID `bson:"answerId"`
	UserID           string             `bson:"userId"`
	Body             string             `bson:"body"`
	ModerationStatus ModerationStatus   `bson:"moderationStatus"`
	IsActive         bool               `bson:"isActive"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

// QuestionVersion is an immutable snapshot of a question's content.
// Exactly one version per question is active at any time, enforced by a
// partial unique index on {questionId, isActive}.
type QuestionVersion struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty"`
	QuestionID           primitive.ObjectID `bson:"questionId"`
	Version              int                `bson:"version"`
	Title                string             `bson:"title"`
	Body                 string             `bson:"body"`
	Tags                 []string           `bson:"tags"`
	EditedBy             EditedBy           `bson:"editedBy"`
	EditorID             string             `bson:"editorId"`
	BasedOnVersion       int                `bson:"basedOnVersion"`
	IsActive             bool               `bson:"isActive"`
	SupersededByRollback bool               `bson:"supersededByRollback"`
	ModerationStatus     ModerationStatus   `bson:"moderationStatus"`
	CreatedAt            time.Time          `bson:"createdAt"`
}

// Report is a user-filed report against a piece of content. Once created
// it is owned exclusively by the moderation state machine.
type Report struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty"`
	ReportedBy        string              `bson:"reportedBy"`
	TargetID          primitive.ObjectID  `bson:"targetId"`
	TargetUserID      string              `bson:"targetUserId"`
	TargetType        enum.ContentType    `bson:"targetType"`
	ReportReason      ReportReason        `bson:"reportReason"`
	ReportComment     string              `bson:"reportComment,omitempty"`
	AIDecision        enum.ReportDecision `bson:"aiDecision,omitempty"`
	AIConfidence      float64             `bson:"aiConfidence"`
	AIReasons         []string            `bson:"aiReasons"`
	Severity          int                 `bson:"severity"`
	Status            ReportStatus        `bson:"status"`
	ActionTaken       string              `bson:"actionTaken,omitempty"`
	IsRemovingContent bool                `bson:"isRemovingContent"`
	CreatedAt         time.Time           `bson:"createdAt"`
	UpdatedAt         time.Time           `bson:"updatedAt"`
}
