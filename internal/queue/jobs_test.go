package queue_test

import (
	"encoding/json"
	"testing"

	"github.com/askora/askora/internal/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelopeWith(payload string) *queue.Envelope {
	return &queue.Envelope{Payload: json.RawMessage(payload)}
}

func TestDecodePayloadContentJob(t *testing.T) {
	t.Parallel()

	job, err := queue.DecodePayload[queue.ContentJob](envelopeWith(
		`{"contentId":"66f0a1b2c3d4e5f6a7b8c9d0","contentType":"QUESTION","version":2}`,
	))
	require.NoError(t, err)

	assert.Equal(t, "66f0a1b2c3d4e5f6a7b8c9d0", job.ContentID)
	assert.Equal(t, "QUESTION", job.ContentType)
	require.NotNil(t, job.Version)
	assert.Equal(t, 2, *job.Version)
}

func TestDecodePayloadRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	_, err := queue.DecodePayload[queue.ContentJob](envelopeWith(`{"contentId":`))
	require.Error(t, err)
}

func TestDecodePayloadRejectsMissingFields(t *testing.T) {
	t.Parallel()

	_, err := queue.DecodePayload[queue.ReportJob](envelopeWith(`{}`))
	require.Error(t, err)
}

func TestDecodePayloadRejectsUnknownContentType(t *testing.T) {
	t.Parallel()

	_, err := queue.DecodePayload[queue.ContentJob](envelopeWith(
		`{"contentId":"66f0a1b2c3d4e5f6a7b8c9d0","contentType":"COMMENT"}`,
	))
	require.Error(t, err)
}

func TestDecodePayloadRejectsUnknownDecision(t *testing.T) {
	t.Parallel()

	_, err := queue.DecodePayload[queue.TrustJob](envelopeWith(
		`{"userId":"user-1","decision":"ESCALATE"}`,
	))
	require.Error(t, err)
}

func TestDecodePayloadVersioningJob(t *testing.T) {
	t.Parallel()

	job, err := queue.DecodePayload[queue.VersioningJob](envelopeWith(
		`{"questionId":"66f0a1b2c3d4e5f6a7b8c9d0","title":"How do sorted sets work?",` +
			`"body":"Full question body.","tags":["redis","go"],"editedBy":"USER","editorId":"user-1"}`,
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"redis", "go"}, job.Tags)
	assert.Equal(t, "USER", job.EditedBy)
}
