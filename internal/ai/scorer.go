package ai

import (
	"context"
	"math"

	"go.uber.org/zap"
)

// Reason strings attached to scores, surfaced to moderators and in
// user-facing warning records.
const (
	ReasonClean    = "No violations detected"
	ReasonHate     = "Hate/Harassment detected"
	ReasonViolence = "Inappropriate/Violent content detected"
	ReasonUnclear  = "Flagged but unclear"
)

var (
	hateCategories = []string{
		"harassment",
		"harassment/threatening",
		"hate",
		"hate/threatening",
	}
	violenceCategories = []string{
		"sexual",
		"sexual/minors",
		"violence",
		"violence/graphic",
	}
)

// Score is the scorer's harm estimate for a piece of text. Severity is in
// [0,100], Confidence in [0,1].
type Score struct {
	Confidence float64
	Reasons    []string
	Severity   int
}

// FailSafeScore is the score recorded when the oracle cannot be reached
// and retries are exhausted. Zero confidence with mid-range severity caps
// the outcome at the warning tier: no ban, no content removal, and never
// a clean dismissal.
func FailSafeScore() *Score {
	return &Score{Confidence: 0, Reasons: []string{}, Severity: 50}
}

// Scorer turns oracle verdicts into severity scores.
type Scorer struct {
	oracle Oracle
	logger *zap.Logger
}

// NewScorer creates a new scorer on top of the given oracle.
func NewScorer(oracle Oracle, logger *zap.Logger) *Scorer {
	return &Scorer{
		oracle: oracle,
		logger: logger.Named("scorer"),
	}
}

// Score classifies the given text. Oracle failures are returned to the
// caller so transient outages can be retried at the queue layer.
func (s *Scorer) Score(ctx context.Context, text string) (*Score, error) {
	verdict, err := s.oracle.Moderate(ctx, text)
	if err != nil {
		return nil, err
	}

	if !verdict.Flagged {
		return &Score{
			Confidence: 1,
			Reasons:    []string{ReasonClean},
			Severity:   0,
		}, nil
	}

	score := &Score{Reasons: []string{}}

	if hate := maxCategoryScore(verdict.CategoryScores, hateCategories); hate > 0 {
		score.Confidence = math.Max(score.Confidence, hate)
		score.Reasons = append(score.Reasons, ReasonHate)
		score.Severity = maxInt(score.Severity, clampSeverity(math.Round(hate*100)))
	}

	if violence := maxCategoryScore(verdict.CategoryScores, violenceCategories); violence > 0 {
		score.Confidence = math.Max(score.Confidence, violence)
		score.Reasons = append(score.Reasons, ReasonViolence)
		score.Severity = maxInt(score.Severity, clampSeverity(math.Round(violence*120)))
	}

	// Flagged by the oracle but no category carried a score.
	if score.Severity == 0 {
		score.Reasons = append(score.Reasons, ReasonUnclear)
		score.Severity = 50
	}

	return score, nil
}

func maxCategoryScore(scores map[string]float64, categories []string) float64 {
	var result float64
	for _, category := range categories {
		if score := scores[category]; score > result {
			result = score
		}
	}

	return result
}

func clampSeverity(v float64) int {
	if v > 100 {
		return 100
	}

	return int(v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}
