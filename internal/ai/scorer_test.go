package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/askora/askora/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubOracle returns a fixed verdict or error for every call.
type stubOracle struct {
	verdict *ai.Verdict
	err     error
}

func (s *stubOracle) Moderate(_ context.Context, _ string) (*ai.Verdict, error) {
	return s.verdict, s.err
}

func newScorer(t *testing.T, oracle ai.Oracle) *ai.Scorer {
	t.Helper()
	return ai.NewScorer(oracle, zaptest.NewLogger(t))
}

func TestScoreCleanContent(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{Flagged: false}})

	score, err := scorer.Score(t.Context(), "a perfectly reasonable question")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, score.Confidence, 1e-9)
	assert.Equal(t, []string{ai.ReasonClean}, score.Reasons)
	assert.Equal(t, 0, score.Severity)
}

func TestScoreHateContent(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{
		Flagged: true,
		CategoryScores: map[string]float64{
			"harassment": 0.4,
			"hate":       0.85,
		},
	}})

	score, err := scorer.Score(t.Context(), "hateful text")
	require.NoError(t, err)

	assert.InDelta(t, 0.85, score.Confidence, 1e-9)
	assert.Equal(t, []string{ai.ReasonHate}, score.Reasons)
	assert.Equal(t, 85, score.Severity)
}

func TestScoreViolentContentScalesHigher(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{
		Flagged: true,
		CategoryScores: map[string]float64{
			"violence": 0.5,
		},
	}})

	score, err := scorer.Score(t.Context(), "violent text")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, score.Confidence, 1e-9)
	assert.Equal(t, []string{ai.ReasonViolence}, score.Reasons)
	assert.Equal(t, 60, score.Severity)
}

func TestScoreViolentContentSeverityIsCapped(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{
		Flagged: true,
		CategoryScores: map[string]float64{
			"sexual/minors": 0.95,
		},
	}})

	score, err := scorer.Score(t.Context(), "severe text")
	require.NoError(t, err)

	assert.Equal(t, 100, score.Severity)
}

func TestScoreMixedCategoriesTakesWorst(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{
		Flagged: true,
		CategoryScores: map[string]float64{
			"harassment": 0.9,
			"violence":   0.6,
		},
	}})

	score, err := scorer.Score(t.Context(), "mixed text")
	require.NoError(t, err)

	assert.InDelta(t, 0.9, score.Confidence, 1e-9)
	assert.Equal(t, []string{ai.ReasonHate, ai.ReasonViolence}, score.Reasons)
	assert.Equal(t, 90, score.Severity) // hate 90 beats violence 72
}

func TestScoreFlaggedWithoutCategoryScores(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{verdict: &ai.Verdict{Flagged: true}})

	score, err := scorer.Score(t.Context(), "odd text")
	require.NoError(t, err)

	assert.Zero(t, score.Confidence)
	assert.Equal(t, []string{ai.ReasonUnclear}, score.Reasons)
	assert.Equal(t, 50, score.Severity)
}

func TestScorePropagatesOracleErrors(t *testing.T) {
	t.Parallel()

	scorer := newScorer(t, &stubOracle{err: ai.ErrOracleUnavailable})

	score, err := scorer.Score(t.Context(), "any text")
	require.ErrorIs(t, err, ai.ErrOracleUnavailable)
	assert.Nil(t, score)
}

func TestScoreWrapsUnexpectedOracleErrors(t *testing.T) {
	t.Parallel()

	oracleErr := errors.New("connection reset")
	scorer := newScorer(t, &stubOracle{err: oracleErr})

	_, err := scorer.Score(t.Context(), "any text")
	require.ErrorIs(t, err, oracleErr)
}

func TestFailSafeScore(t *testing.T) {
	t.Parallel()

	score := ai.FailSafeScore()

	assert.Zero(t, score.Confidence)
	assert.Empty(t, score.Reasons)
	assert.Equal(t, 50, score.Severity)
}
