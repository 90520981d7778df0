// Package moderation implements the decision engine, the content and
// report pipelines, the ban/warning enforcer, and the trust ledger.
package moderation

import (
	"math"
	"time"

	"github.com/askora/askora/internal/database/types/enum"
)

// Risk score breakpoints for the content pipeline. These are policy
// constants; tests assert on the exact values.
const (
	riskBanPerm = 6.0
	riskBanTemp = 3.0
)

// Severity breakpoints for the report pipeline, applied directly without
// the strike and trust multipliers.
const (
	severityBanUserPerm   = 90
	severityBanUserTemp   = 70
	severityWarnUser      = 50
	severityRemoveContent = 70
)

// ComputeRiskScore combines the oracle's verdict with the author's
// moderation history into a 0-10 risk score. Low trust and accumulated
// strikes amplify the base severity.
func ComputeRiskScore(confidence float64, severity, totalStrikes int, trustScore float64) float64 {
	normalizedSeverity := math.Min(1, float64(severity)/100)
	strikeMultiplier := 1 + float64(totalStrikes)*0.25
	trustMultiplier := 1 / math.Max(trustScore, 0.01)

	riskScore := normalizedSeverity * confidence * strikeMultiplier * trustMultiplier * 10

	return math.Min(riskScore, 10)
}

// MapDecision converts a risk score into a content moderation decision.
func MapDecision(riskScore float64) enum.Decision {
	switch {
	case riskScore >= riskBanPerm:
		return enum.DecisionBanPerm
	case riskScore >= riskBanTemp:
		return enum.DecisionBanTemp
	case riskScore > 0:
		return enum.DecisionWarn
	default:
		return enum.DecisionIgnore
	}
}

// MapReportDecision converts a raw severity into a report decision. Reports
// judge the reported content on its own, so the author's history does not
// factor in; anything non-zero below the warn threshold defers to a human.
func MapReportDecision(severity int) enum.ReportDecision {
	switch {
	case severity >= severityBanUserPerm:
		return enum.ReportDecisionBanUserPerm
	case severity >= severityBanUserTemp:
		return enum.ReportDecisionBanUserTemp
	case severity >= severityWarnUser:
		return enum.ReportDecisionWarnUser
	case severity != 0:
		return enum.ReportDecisionUncertain
	default:
		return enum.ReportDecisionIgnore
	}
}

// ShouldRemoveContent reports whether a report decision at this severity
// also takes the reported content down.
func ShouldRemoveContent(severity int) bool {
	return severity >= severityRemoveContent
}

// TempBanDuration computes how long a temporary ban lasts. Below severity
// 70 no temp ban applies. The base of 3 days grows to 7 across the 70-100
// severity range and is scaled up for confident verdicts, repeat strikes,
// and low trust. The result is rounded to whole milliseconds.
func TempBanDuration(severity int, confidence float64, totalStrikes int, trustScore float64) time.Duration {
	if severity < severityBanUserTemp {
		return 0
	}

	baseDays := 3 + float64(severity-70)/30*4
	confidenceMultiplier := 1 + confidence*0.5
	strikeMultiplier := 1 + float64(totalStrikes)*0.25
	trustMultiplier := 1 / math.Max(trustScore, 0.01)

	adjustedDays := baseDays * confidenceMultiplier * strikeMultiplier * trustMultiplier

	ms := math.Round(adjustedDays * 24 * 60 * 60 * 1000)

	return time.Duration(ms) * time.Millisecond
}
