package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
)

// WinnabilityScoreResult estimates how likely the account is to be won.
type WinnabilityScoreResult struct {
	OverallScore             int      `json:"overall_score"`
	CompetitivePositionScore int      `json:"competitive_position_score"`
	RelationshipScore        int      `json:"relationship_score"`
	PricingIndicatorScore    int      `json:"pricing_indicator_score"`
	TimingScore              int      `json:"timing_score"`
	IsHighWinnability        bool     `json:"is_high_winnability"`
	NeedsAttention           bool     `json:"needs_attention"`
	Factors                  []Factor `json:"factors"`
	Recommendations          []string `json:"recommendations"`
}

// WinnabilityScorer derives winnability from the submission alone.
type WinnabilityScorer struct {
	cfg WinnabilityConfig
}

// NewWinnabilityScorer returns a scorer using cfg.
func NewWinnabilityScorer(cfg WinnabilityConfig) *WinnabilityScorer {
	return &WinnabilityScorer{cfg: cfg}
}

// winnabilityTally accumulates factors and recommendations across the
// four sub-scores.
type winnabilityTally struct {
	factors         []Factor
	recommendations []string
}

func (t *winnabilityTally) add(score *int, name string, impact int, description string) {
	*score += impact
	t.factors = append(t.factors, Factor{Name: name, ScoreImpact: impact, Description: description})
}

// Score evaluates the submission as of asOf. Each sub-score starts at the
// configured base and is clamped to [0,100] before they are combined by
// weighted average.
func (s *WinnabilityScorer) Score(sub *model.Submission, asOf time.Time) WinnabilityScoreResult {
	if sub == nil {
		panic("winnability: nil submission")
	}

	var t winnabilityTally
	res := WinnabilityScoreResult{
		CompetitivePositionScore: clamp(s.competitivePosition(sub, &t)),
		RelationshipScore:        clamp(s.relationship(sub, &t)),
		PricingIndicatorScore:    clamp(s.pricingIndicator(sub, &t)),
		TimingScore:              clamp(s.timing(sub, asOf, &t)),
	}
	res.OverallScore = weighted(
		[]int{res.CompetitivePositionScore, res.RelationshipScore, res.PricingIndicatorScore, res.TimingScore},
		[]decimal.Decimal{s.cfg.CompetitiveWeight, s.cfg.RelationshipWeight, s.cfg.PricingWeight, s.cfg.TimingWeight},
	)
	res.IsHighWinnability = res.OverallScore >= s.cfg.HighThreshold
	res.NeedsAttention = res.OverallScore < s.cfg.AttentionThreshold
	res.Factors = t.factors
	res.Recommendations = t.recommendations
	return res
}

func (s *WinnabilityScorer) competitivePosition(sub *model.Submission, t *winnabilityTally) int {
	score := s.cfg.BaseSubScore

	if lines := len(sub.Coverages()); lines > 1 {
		bonus := min((lines-1)*10, 30)
		t.add(&score, "Multiple Coverage Lines", bonus, fmt.Sprintf("%d lines of coverage requested", lines))
	}

	if sub.Insured().IsProfileComplete() {
		t.add(&score, "Complete Information", 20, "Revenue, industry, address and years in business provided")
	} else {
		t.add(&score, "Incomplete Information", -10, "Insured profile is missing key details")
		t.recommendations = append(t.recommendations,
			"Gather missing insured details (annual revenue, industry classification, address, years in business)")
	}
	return score
}

func (s *WinnabilityScorer) relationship(sub *model.Submission, t *winnabilityTally) int {
	score := s.cfg.BaseSubScore

	if years, ok := sub.Insured().YearsInBusiness(); ok {
		switch {
		case years >= s.cfg.EstablishedYears:
			t.add(&score, "Established Business", 25, fmt.Sprintf("%d years in business", years))
		case years < s.cfg.NewVentureYears:
			t.add(&score, "New Venture", -10, fmt.Sprintf("Only %d years in business", years))
		}
	}

	if len(sub.LossHistory()) == 0 {
		t.add(&score, "Clean Loss History", 20, "No losses reported")
	} else if sub.HasOpenClaims() {
		t.add(&score, "Open Claims", -15, "Loss history includes open claims")
		t.recommendations = append(t.recommendations, "Review open claims with the producer before quoting")
	}

	if sub.ProducerID() != "" || sub.ProducerName() != "" {
		t.add(&score, "Known Producer", 5, "Submitted through an identified producer")
	}
	return score
}

func (s *WinnabilityScorer) pricingIndicator(sub *model.Submission, t *winnabilityTally) int {
	score := s.cfg.BaseSubScore

	revenue, ok := sub.Insured().AnnualRevenue()
	if !ok {
		return score
	}
	switch amount := revenue.Amount(); {
	case amount.GreaterThanOrEqual(s.cfg.LargeAccountRevenue):
		t.add(&score, "Large Account", 25, fmt.Sprintf("Annual revenue %s", revenue))
	case amount.GreaterThanOrEqual(s.cfg.MidAccountRevenue):
		t.add(&score, "Mid-Market Account", 10, fmt.Sprintf("Annual revenue %s", revenue))
	}
	return score
}

func (s *WinnabilityScorer) timing(sub *model.Submission, asOf time.Time, t *winnabilityTally) int {
	score := s.cfg.BaseSubScore

	effective, ok := sub.EarliestEffectiveDate()
	if !ok {
		t.recommendations = append(t.recommendations, "Confirm the requested effective date")
		return score
	}

	days := daysBetween(asOf, effective)
	switch {
	case days < 0:
		t.add(&score, "Effective Date Passed", -30, fmt.Sprintf("Requested effective date was %d days ago", -days))
		t.recommendations = append(t.recommendations, "Effective date has passed: confirm backdating or a new effective date")
	case days < s.cfg.RushDays:
		t.add(&score, "Rush Submission", -25, fmt.Sprintf("Effective date is in %d days", days))
		t.recommendations = append(t.recommendations,
			fmt.Sprintf("Tight timing: effective date is in %d days, prioritise this submission", days))
	case days >= s.cfg.LeadTimeDays:
		t.add(&score, "Good Lead Time", 20, fmt.Sprintf("Effective date is in %d days", days))
	}
	return score
}

// daysBetween counts calendar days from from to to, in UTC.
func daysBetween(from, to time.Time) int {
	y1, m1, d1 := from.UTC().Date()
	y2, m2, d2 := to.UTC().Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
