package moderation_test

import (
	"testing"
	"time"

	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/moderation"
	"github.com/stretchr/testify/assert"
)

func TestComputeRiskScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		confidence   float64
		severity     int
		totalStrikes int
		trustScore   float64
		want         float64
	}{
		{
			name:       "clean content scores zero",
			confidence: 1.0,
			severity:   0,
			trustScore: 1.0,
			want:       0,
		},
		{
			name:       "severe confident verdict on clean history",
			confidence: 0.9,
			severity:   95,
			trustScore: 1.0,
			want:       8.55,
		},
		{
			name:       "maximum severity and confidence",
			confidence: 1.0,
			severity:   100,
			trustScore: 1.0,
			want:       10,
		},
		{
			name:         "strikes amplify the score",
			confidence:   0.5,
			severity:     60,
			totalStrikes: 2,
			trustScore:   1.0,
			want:         4.5, // 0.6 * 0.5 * 1.5 * 10
		},
		{
			name:       "low trust amplifies the score",
			confidence: 0.5,
			severity:   60,
			trustScore: 0.5,
			want:       6, // 0.6 * 0.5 * 2 * 10
		},
		{
			name:       "score is capped at ten",
			confidence: 1.0,
			severity:   100,
			trustScore: 0.01,
			want:       10,
		},
		{
			name:       "zero trust is clamped before dividing",
			confidence: 0.1,
			severity:   10,
			trustScore: 0,
			want:       10, // 0.1 * 0.1 * 100 * 10, capped
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := moderation.ComputeRiskScore(tt.confidence, tt.severity, tt.totalStrikes, tt.trustScore)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComputeRiskScoreMonotonicity(t *testing.T) {
	t.Parallel()

	base := moderation.ComputeRiskScore(0.5, 50, 1, 0.8)

	assert.GreaterOrEqual(t, moderation.ComputeRiskScore(0.5, 60, 1, 0.8), base,
		"higher severity must not lower the score")
	assert.GreaterOrEqual(t, moderation.ComputeRiskScore(0.6, 50, 1, 0.8), base,
		"higher confidence must not lower the score")
	assert.GreaterOrEqual(t, moderation.ComputeRiskScore(0.5, 50, 2, 0.8), base,
		"more strikes must not lower the score")
	assert.LessOrEqual(t, moderation.ComputeRiskScore(0.5, 50, 1, 0.9), base,
		"higher trust must not raise the score")
}

func TestMapDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		riskScore float64
		want      enum.Decision
	}{
		{"zero risk is ignored", 0, enum.DecisionIgnore},
		{"negative risk is ignored", -1, enum.DecisionIgnore},
		{"any positive risk warns", 0.001, enum.DecisionWarn},
		{"just below temp ban threshold", 2.999, enum.DecisionWarn},
		{"temp ban threshold", 3.0, enum.DecisionBanTemp},
		{"just below perm ban threshold", 5.999, enum.DecisionBanTemp},
		{"perm ban threshold", 6.0, enum.DecisionBanPerm},
		{"severe confident verdict maps to perm ban", 8.55, enum.DecisionBanPerm},
		{"maximum risk", 10, enum.DecisionBanPerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, moderation.MapDecision(tt.riskScore))
		})
	}
}

func TestMapReportDecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		severity int
		want     enum.ReportDecision
	}{
		{"zero severity is ignored", 0, enum.ReportDecisionIgnore},
		{"low severity defers to a human", 1, enum.ReportDecisionUncertain},
		{"just below warn threshold", 49, enum.ReportDecisionUncertain},
		{"warn threshold", 50, enum.ReportDecisionWarnUser},
		{"just below temp ban threshold", 69, enum.ReportDecisionWarnUser},
		{"temp ban threshold", 70, enum.ReportDecisionBanUserTemp},
		{"just below perm ban threshold", 89, enum.ReportDecisionBanUserTemp},
		{"perm ban threshold", 90, enum.ReportDecisionBanUserPerm},
		{"maximum severity", 100, enum.ReportDecisionBanUserPerm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, moderation.MapReportDecision(tt.severity))
		})
	}
}

func TestShouldRemoveContent(t *testing.T) {
	t.Parallel()

	assert.False(t, moderation.ShouldRemoveContent(0))
	assert.False(t, moderation.ShouldRemoveContent(69))
	assert.True(t, moderation.ShouldRemoveContent(70))
	assert.True(t, moderation.ShouldRemoveContent(100))
}

func TestTempBanDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		severity     int
		confidence   float64
		totalStrikes int
		trustScore   float64
		want         time.Duration
	}{
		{
			name:       "below threshold yields no ban",
			severity:   69,
			confidence: 1.0,
			trustScore: 1.0,
			want:       0,
		},
		{
			name:       "threshold with no multipliers is three days",
			severity:   70,
			confidence: 0,
			trustScore: 1.0,
			want:       3 * 24 * time.Hour,
		},
		{
			name:       "full confidence adds half",
			severity:   70,
			confidence: 1.0,
			trustScore: 1.0,
			want:       time.Duration(4.5 * 24 * float64(time.Hour)),
		},
		{
			name:       "maximum severity with full confidence",
			severity:   100,
			confidence: 1.0,
			trustScore: 1.0,
			want:       time.Duration(10.5 * 24 * float64(time.Hour)),
		},
		{
			name:         "strikes extend the ban",
			severity:     70,
			confidence:   0,
			totalStrikes: 2,
			trustScore:   1.0,
			want:         time.Duration(4.5 * 24 * float64(time.Hour)),
		},
		{
			name:       "low trust extends the ban",
			severity:   70,
			confidence: 0,
			trustScore: 0.5,
			want:       6 * 24 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := moderation.TempBanDuration(tt.severity, tt.confidence, tt.totalStrikes, tt.trustScore)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTempBanDurationRoundsToMilliseconds(t *testing.T) {
	t.Parallel()

	got := moderation.TempBanDuration(85, 0.73, 1, 0.9)
	assert.Zero(t, got%time.Millisecond)
	assert.Positive(t, got)
}
