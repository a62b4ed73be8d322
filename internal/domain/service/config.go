package service

import "github.com/shopspring/decimal"

// ScoringConfig carries the tunable thresholds of the three scorers.
type ScoringConfig struct {
	Appetite    AppetiteConfig
	Winnability WinnabilityConfig
	DataQuality DataQualityConfig
}

// AppetiteConfig tunes appetite scoring.
type AppetiteConfig struct {
	// BaseScore is the running score before any rule fires.
	BaseScore int
	// NoGuidelineScore is returned when no active guideline applies.
	NoGuidelineScore int
	// AcceptanceThreshold is the minimum score that is in appetite when no
	// decline rule fired.
	AcceptanceThreshold int
	// Scores in [BorderlineLow, BorderlineHigh) are always referred.
	BorderlineLow  int
	BorderlineHigh int
	// AcceptFactorImpact is the ScoreImpact reported on factors of matched
	// Accept rules. It is informational and leaves the score unchanged.
	AcceptFactorImpact int
}

// WinnabilityConfig tunes winnability scoring.
type WinnabilityConfig struct {
	BaseSubScore int

	CompetitiveWeight  decimal.Decimal
	RelationshipWeight decimal.Decimal
	PricingWeight      decimal.Decimal
	TimingWeight       decimal.Decimal

	HighThreshold      int
	AttentionThreshold int

	RushDays     int
	LeadTimeDays int

	EstablishedYears int
	NewVentureYears  int

	LargeAccountRevenue decimal.Decimal
	MidAccountRevenue   decimal.Decimal
}

// DataQualityConfig tunes data-quality scoring.
type DataQualityConfig struct {
	CompletenessWeight decimal.Decimal
	ConfidenceWeight   decimal.Decimal
	ValidationWeight   decimal.Decimal
	CoverageWeight     decimal.Decimal

	HighQualityThreshold   int
	ReviewThreshold        int
	LowConfidenceThreshold float64
	FailedDocumentPenalty  int
	// UnknownTypeFieldTarget is the field count at which a document of
	// unknown type counts as complete.
	UnknownTypeFieldTarget int
	// EmptySubmissionCap bounds the score of a submission with no coverages.
	EmptySubmissionCap int
}

// DefaultScoringConfig returns the production defaults.
func DefaultScoringConfig() ScoringConfig {
	quarter := decimal.RequireFromString("0.25")
	return ScoringConfig{
		Appetite: AppetiteConfig{
			BaseScore:           70,
			NoGuidelineScore:    50,
			AcceptanceThreshold: 0,
			BorderlineLow:       40,
			BorderlineHigh:      60,
			AcceptFactorImpact:  10,
		},
		Winnability: WinnabilityConfig{
			BaseSubScore:        50,
			CompetitiveWeight:   quarter,
			RelationshipWeight:  quarter,
			PricingWeight:       quarter,
			TimingWeight:        quarter,
			HighThreshold:       70,
			AttentionThreshold:  50,
			RushDays:            7,
			LeadTimeDays:        30,
			EstablishedYears:    10,
			NewVentureYears:     3,
			LargeAccountRevenue: decimal.NewFromInt(10_000_000),
			MidAccountRevenue:   decimal.NewFromInt(1_000_000),
		},
		DataQuality: DataQualityConfig{
			CompletenessWeight:     decimal.RequireFromString("0.30"),
			ConfidenceWeight:       quarter,
			ValidationWeight:       quarter,
			CoverageWeight:         decimal.RequireFromString("0.20"),
			HighQualityThreshold:   80,
			ReviewThreshold:        60,
			LowConfidenceThreshold: 0.5,
			FailedDocumentPenalty:  25,
			UnknownTypeFieldTarget: 10,
			EmptySubmissionCap:     50,
		},
	}
}

// Factor is one named contribution to a score.
type Factor struct {
	Name        string `json:"name"`
	ScoreImpact int    `json:"score_impact"`
	Description string `json:"description"`
}

func clamp(v int) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// weighted combines 0..100 scores by weight and rounds to the nearest int.
// The result is normalised by the weight total so weights need not sum to 1.
func weighted(scores []int, weights []decimal.Decimal) int {
	total, sum := decimal.Zero, decimal.Zero
	for i, s := range scores {
		total = total.Add(weights[i])
		sum = sum.Add(weights[i].Mul(decimal.NewFromInt(int64(s))))
	}
	if !total.IsPositive() {
		return 0
	}
	return clamp(int(sum.Div(total).Round(0).IntPart()))
}
