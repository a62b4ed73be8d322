package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// AppliedModifier is a pricing factor contributed by one rule.
type AppliedModifier struct {
	RuleName string          `json:"rule_name"`
	Modifier decimal.Decimal `json:"modifier"`
}

// PricingResult is the premium after guideline modifiers.
type PricingResult struct {
	BasePremium     money.Money       `json:"base_premium"`
	AdjustedPremium money.Money       `json:"adjusted_premium"`
	Modifiers       []AppliedModifier `json:"modifiers"`
}

// PricingService applies ApplyModifier rules to a base premium.
type PricingService struct{}

// NewPricingService returns a pricing service.
func NewPricingService() *PricingService {
	return &PricingService{}
}

// Price multiplies base by the modifier of every matching ApplyModifier rule
// of the active guidelines. Modifiers compound; rounding to cents happens
// once, on the final premium.
func (p *PricingService) Price(sub *model.Submission, guidelines []*model.Guideline, base money.Money) PricingResult {
	if sub == nil {
		panic("pricing: nil submission")
	}

	factor := decimal.NewFromInt(1)
	var applied []AppliedModifier
	for _, g := range guidelines {
		if g == nil || !g.IsActive() {
			continue
		}
		for _, rule := range g.ActiveRules() {
			if rule.Action() != valueobject.RuleActionApplyModifier {
				continue
			}
			modifier, ok := rule.PricingModifier()
			if !ok || !rule.Matches(sub) {
				continue
			}
			factor = factor.Mul(modifier)
			applied = append(applied, AppliedModifier{RuleName: rule.Name(), Modifier: modifier})
		}
	}

	return PricingResult{
		BasePremium:     base,
		AdjustedPremium: base.Multiply(factor),
		Modifiers:       applied,
	}
}
