package report

import (
	"fmt"
	"math"
)

// Band thresholds, inclusive on the lower bound.
const (
	HighThreshold     = 70
	ModerateThreshold = 40
)

// ComputeScore converts raw questionnaire counts into a percentage and band.
// totalQuestions below one is treated as one. The percentage is not clamped so
// inconsistent input (riskCount > totalQuestions) stays visible.
func ComputeScore(riskCount, totalQuestions int) Score {
	denominator := totalQuestions
	if denominator < 1 {
		denominator = 1
	}
	percentage := int(math.Round(100 * float64(riskCount) / float64(denominator)))
	return Score{Percentage: percentage, Band: BandFor(percentage)}
}

// BandFor maps a percentage to its risk band.
func BandFor(percentage int) RiskBand {
	switch {
	case percentage >= HighThreshold:
		return BandHigh
	case percentage >= ModerateThreshold:
		return BandModerate
	default:
		return BandLow
	}
}

// Scorer scores assessment results.
type Scorer interface {
	Score(result AssessmentResult) (Score, error)
}

// ScorerFunc adapts a function to a Scorer.
type ScorerFunc func(result AssessmentResult) (Score, error)

func (f ScorerFunc) Score(result AssessmentResult) (Score, error) {
	if f == nil {
		return Score{}, NewError(KindInternal, "scorer func is nil", nil)
	}
	return f(result)
}

// DefaultScorer validates the assessment and applies ComputeScore.
type DefaultScorer struct{}

// Score rejects negative counts and scores everything else.
func (DefaultScorer) Score(result AssessmentResult) (Score, error) {
	if result.RiskCount < 0 {
		return Score{}, NewError(KindInvalidInput, fmt.Sprintf("risk count must not be negative, got %d", result.RiskCount), nil)
	}
	if result.TotalQuestions < 0 {
		return Score{}, NewError(KindInvalidInput, fmt.Sprintf("total questions must not be negative, got %d", result.TotalQuestions), nil)
	}
	return ComputeScore(result.RiskCount, result.TotalQuestions), nil
}
