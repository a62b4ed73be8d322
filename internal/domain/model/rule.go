package model

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// UnderwritingRule is a prioritised set of conditions and the action taken
// when all of them hold. Rules are created through Guideline.AddRule and
// every mutation is refused once the guideline is archived.
type UnderwritingRule struct {
	id              string
	name            string
	ruleType        valueobject.RuleType
	action          valueobject.RuleAction
	priority        int
	isActive        bool
	conditions      []RuleCondition
	scoreAdjustment *int
	pricingModifier *decimal.Decimal
	message         string

	owner *Guideline
}

func (r *UnderwritingRule) ID() string { return r.id }
func (r *UnderwritingRule) Name() string { return r.name }
func (r *UnderwritingRule) Type() valueobject.RuleType { return r.ruleType }
func (r *UnderwritingRule) Action() valueobject.RuleAction { return r.action }
func (r *UnderwritingRule) Priority() int { return r.priority }
func (r *UnderwritingRule) IsActive() bool { return r.isActive }
func (r *UnderwritingRule) Message() string { return r.message }

// Conditions returns a copy of the rule's conditions.
func (r *UnderwritingRule) Conditions() []RuleCondition {
	out := make([]RuleCondition, len(r.conditions))
	copy(out, r.conditions)
	return out
}

// ScoreAdjustment is set only for AdjustScore rules.
func (r *UnderwritingRule) ScoreAdjustment() (int, bool) { return optInt(r.scoreAdjustment) }

// PricingModifier is set only for ApplyModifier rules.
func (r *UnderwritingRule) PricingModifier() (decimal.Decimal, bool) {
	if r.pricingModifier == nil {
		return decimal.Zero, false
	}
	return *r.pricingModifier, true
}

// Reason is the text surfaced when the rule fires: its message, or its name.
func (r *UnderwritingRule) Reason() string {
	if r.message != "" {
		return r.message
	}
	return r.name
}

// Matches reports whether every condition holds for src. A rule without
// conditions always matches.
func (r *UnderwritingRule) Matches(src FieldSource) bool {
	for _, c := range r.conditions {
		if !c.Matches(src) {
			return false
		}
	}
	return true
}

// Rename changes the rule name.
func (r *UnderwritingRule) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrRuleNameRequired
	}
	return r.mutate(func() { r.name = name })
}

// SetActive enables or disables the rule.
func (r *UnderwritingRule) SetActive(active bool) error {
	return r.mutate(func() { r.isActive = active })
}

// SetPriority changes the evaluation order; lower runs first.
func (r *UnderwritingRule) SetPriority(priority int) error {
	return r.mutate(func() { r.priority = priority })
}

// SetMessage sets the human-readable explanation.
func (r *UnderwritingRule) SetMessage(message string) error {
	return r.mutate(func() { r.message = strings.TrimSpace(message) })
}

// AddCondition appends a condition; all conditions must hold for a match.
func (r *UnderwritingRule) AddCondition(c RuleCondition) error {
	if c.field.IsZero() {
		return ErrConditionInvalid.WithDescription("condition was not built with NewRuleCondition")
	}
	return r.mutate(func() { r.conditions = append(r.conditions, c) })
}

// ClearConditions removes every condition.
func (r *UnderwritingRule) ClearConditions() error {
	return r.mutate(func() { r.conditions = nil })
}

// SetScoreAdjustment sets the score delta of an AdjustScore rule.
func (r *UnderwritingRule) SetScoreAdjustment(adjustment int) error {
	if r.action != valueobject.RuleActionAdjustScore {
		return ErrRuleActionMismatch.WithDescription("score adjustment needs ADJUST_SCORE, rule action is %s", r.action)
	}
	if adjustment < -100 || adjustment > 100 {
		return ErrRuleInvalidScoreAdjustment
	}
	return r.mutate(func() { r.scoreAdjustment = &adjustment })
}

// SetPricingModifier sets the premium factor of an ApplyModifier rule.
func (r *UnderwritingRule) SetPricingModifier(modifier decimal.Decimal) error {
	if r.action != valueobject.RuleActionApplyModifier {
		return ErrRuleActionMismatch.WithDescription("pricing modifier needs APPLY_MODIFIER, rule action is %s", r.action)
	}
	if !modifier.IsPositive() {
		return ErrRuleInvalidPricingModifier
	}
	return r.mutate(func() { r.pricingModifier = &modifier })
}

func (r *UnderwritingRule) mutate(apply func()) error {
	if err := r.owner.ensureMutable(); err != nil {
		return err
	}
	apply()
	r.owner.rulesChanged()
	return nil
}
