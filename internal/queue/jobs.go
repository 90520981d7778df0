package queue

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
)

// Queue names. Each name is a sorted set in the queue database, scored by
// the time the job becomes ready.
const (
	ContentModerationQueue = "queue:content_moderation"
	ReportModerationQueue  = "queue:report_moderation"
	VersioningQueue        = "queue:question_versioning"
	TrustMetricsQueue      = "queue:trust_metrics"
)

var validate = validator.New()

// ContentJob asks the content pipeline to score a piece of content.
type ContentJob struct {
	ContentID   string `json:"contentId"   validate:"required"`
	ContentType string `json:"contentType" validate:"required,oneof=QUESTION ANSWER REPLY"`
	Version     *int   `json:"version,omitempty"` // Questions only
}

// ReportJob asks the report pipeline to score a filed report.
type ReportJob struct {
	ReportID string `json:"reportId" validate:"required"`
}

// VersioningJob asks the versioning controller to apply an edit. The next
// version number is read from the store at processing time, not taken from
// the payload, so racing edits cannot collide on a number.
type VersioningJob struct {
	QuestionID string   `json:"questionId" validate:"required"`
	Title      string   `json:"title"      validate:"required"`
	Body       string   `json:"body"       validate:"required"`
	Tags       []string `json:"tags"`
	EditedBy   string   `json:"editedBy"   validate:"required,oneof=USER AI"`
	EditorID   string   `json:"editorId"   validate:"required"`
}

// TrustJob asks the trust ledger to apply a decision's deltas. The job
// carries the strike context so the ledger write is self-contained.
type TrustJob struct {
	UserID   string `json:"userId"   validate:"required"`
	Decision string `json:"decision" validate:"required,oneof=BAN_PERM BAN_TEMP WARN IGNORE"`
}

// DecodePayload unmarshals and validates an envelope's payload into the
// given job type. Malformed payloads are permanent failures, never retried.
func DecodePayload[T any](envelope *Envelope) (*T, error) {
	job := new(T)
	if err := sonic.Unmarshal(envelope.Payload, job); err != nil {
		return nil, fmt.Errorf("failed to decode job payload: %w", err)
	}

	if err := validate.Struct(job); err != nil {
		return nil, fmt.Errorf("invalid job payload: %w", err)
	}

	return job, nil
}
