package service

import (
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

const noGuidelinesReason = "No applicable guidelines found"

// AppetiteScoreResult is the outcome of evaluating a submission against the
// tenant's guidelines.
type AppetiteScoreResult struct {
	OverallScore     int      `json:"overall_score"`
	IsInAppetite     bool     `json:"is_in_appetite"`
	RequiresReferral bool     `json:"requires_referral"`
	DeclineReasons   []string `json:"decline_reasons"`
	ReferralReasons  []string `json:"referral_reasons"`
	Factors          []Factor `json:"factors"`
}

// AppetiteScorer evaluates guideline rules against a submission.
type AppetiteScorer struct {
	cfg AppetiteConfig
}

// NewAppetiteScorer returns a scorer using cfg.
func NewAppetiteScorer(cfg AppetiteConfig) *AppetiteScorer {
	return &AppetiteScorer{cfg: cfg}
}

// Score runs every active rule of every active guideline in priority order.
// Decline rules take the submission out of appetite, Refer rules force a
// referral and AdjustScore rules move the running score, which starts at the
// configured base and is clamped to [0,100] once all rules ran.
func (s *AppetiteScorer) Score(sub *model.Submission, guidelines []*model.Guideline) AppetiteScoreResult {
	if sub == nil {
		panic("appetite: nil submission")
	}

	var active []*model.Guideline
	for _, g := range guidelines {
		if g != nil && g.IsActive() {
			active = append(active, g)
		}
	}
	if len(active) == 0 {
		return AppetiteScoreResult{
			OverallScore:     s.cfg.NoGuidelineScore,
			IsInAppetite:     false,
			RequiresReferral: true,
			ReferralReasons:  []string{noGuidelinesReason},
		}
	}

	res := AppetiteScoreResult{}
	score := s.cfg.BaseScore
	declined := false

	for _, g := range active {
		for _, rule := range g.ActiveRules() {
			if !rule.Matches(sub) {
				continue
			}
			factor := Factor{Name: rule.Name(), Description: rule.Reason()}

			switch rule.Action() {
			case valueobject.RuleActionAccept:
				factor.ScoreImpact = s.cfg.AcceptFactorImpact
			case valueobject.RuleActionDecline:
				declined = true
				res.DeclineReasons = append(res.DeclineReasons, rule.Reason())
			case valueobject.RuleActionRefer:
				res.RequiresReferral = true
				res.ReferralReasons = append(res.ReferralReasons, rule.Reason())
			case valueobject.RuleActionAdjustScore:
				if adj, ok := rule.ScoreAdjustment(); ok {
					score += adj
					factor.ScoreImpact = adj
				}
			}
			res.Factors = append(res.Factors, factor)
		}
	}

	res.OverallScore = clamp(score)
	res.IsInAppetite = !declined && res.OverallScore >= s.cfg.AcceptanceThreshold

	if res.OverallScore >= s.cfg.BorderlineLow && res.OverallScore < s.cfg.BorderlineHigh {
		res.RequiresReferral = true
		res.ReferralReasons = append(res.ReferralReasons, "Borderline appetite score")
	}
	return res
}
