package model_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

func newGuideline(t *testing.T) *model.Guideline {
	t.Helper()
	g, err := model.NewGuideline("tenant-1", "Small Commercial Property", "core property appetite", now)
	require.NoError(t, err)
	return g
}

func condition(t *testing.T, field valueobject.RuleField, op valueobject.ConditionOperator, value, secondary string) model.RuleCondition {
	t.Helper()
	c, err := model.NewRuleCondition(field, op, value, secondary)
	require.NoError(t, err)
	return c
}

func TestNewGuideline(t *testing.T) {
	g := newGuideline(t)

	assert.NotEmpty(t, g.ID())
	assert.Equal(t, valueobject.GuidelineStatusDraft, g.Status())
	assert.Equal(t, 1, g.Version())
	assert.False(t, g.IsActive())
	require.Len(t, g.DomainEvents(), 1)
	assert.Equal(t, event.TypeGuidelineCreated, g.DomainEvents()[0].EventType())

	_, err := model.NewGuideline("tenant-1", "  ", "", now)
	assert.ErrorIs(t, err, model.ErrGuidelineNameRequired)
	_, err = model.NewGuideline("", "x", "", now)
	assert.ErrorIs(t, err, model.ErrTenantRequired)
}

func TestGuideline_ActivationNeedsRules(t *testing.T) {
	g := newGuideline(t)

	assert.ErrorIs(t, g.Activate(now), model.ErrGuidelineNoRules)

	_, err := g.AddRule("Decline frame", valueobject.RuleTypeEligibility, valueobject.RuleActionDecline, 1, now)
	require.NoError(t, err)
	require.NoError(t, g.Activate(now))
	assert.True(t, g.IsActive())

	// activating twice is a no-op
	events := len(g.DomainEvents())
	require.NoError(t, g.Activate(now))
	assert.Len(t, g.DomainEvents(), events)

	require.NoError(t, g.Deactivate(now))
	assert.Equal(t, valueobject.GuidelineStatusInactive, g.Status())
	assert.ErrorIs(t, g.Deactivate(now), model.ErrGuidelineInvalidTransition)
}

func TestGuideline_ArchivedIsFrozen(t *testing.T) {
	g := newGuideline(t)
	rule, err := g.AddRule("Refer large TIV", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 1, now)
	require.NoError(t, err)

	require.NoError(t, g.Archive(now))
	require.NoError(t, g.Archive(now))

	assert.ErrorIs(t, g.Activate(now), model.ErrGuidelineArchived)
	_, err = g.AddRule("another", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 2, now)
	assert.ErrorIs(t, err, model.ErrGuidelineArchived)
	assert.ErrorIs(t, g.SetApplicability("PROPERTY", "", "", now), model.ErrGuidelineArchived)
	assert.ErrorIs(t, rule.SetPriority(5), model.ErrGuidelineArchived)
	assert.ErrorIs(t, rule.AddCondition(condition(t, valueobject.FieldInsuredState, valueobject.OperatorEquals, "CA", "")), model.ErrGuidelineArchived)
	assert.Equal(t, 1, rule.Priority())
}

func TestGuideline_VersionBumpsOnRuleChanges(t *testing.T) {
	g := newGuideline(t)
	rule, err := g.AddRule("Adjust for sprinklers", valueobject.RuleTypeAppetite, valueobject.RuleActionAdjustScore, 10, now)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Version())

	require.NoError(t, rule.SetScoreAdjustment(15))
	assert.Equal(t, 3, g.Version())

	require.NoError(t, g.SetApplicability("property, general liability", "ca,tx", "23", now))
	assert.Equal(t, 4, g.Version())
	assert.Equal(t, "PROPERTY,GENERAL_LIABILITY", g.CoverageTypeFilter())
	assert.Equal(t, "CA,TX", g.StateFilter())

	require.NoError(t, g.RemoveRule("unknown", now))
	assert.Equal(t, 4, g.Version())
	require.NoError(t, g.RemoveRule(rule.ID(), now))
	assert.Equal(t, 5, g.Version())
}

func TestGuideline_SetApplicabilityValidates(t *testing.T) {
	g := newGuideline(t)

	assert.ErrorIs(t, g.SetApplicability("SPACE_TRAVEL", "", "", now), model.ErrGuidelineInvalidFilter)
	assert.ErrorIs(t, g.SetApplicability("", "California", "", now), model.ErrGuidelineInvalidFilter)
	assert.ErrorIs(t, g.SetApplicability("", "", "1", now), model.ErrGuidelineInvalidFilter)
	assert.Equal(t, 1, g.Version())
}

func TestGuideline_IsApplicable(t *testing.T) {
	g := newGuideline(t)
	_, err := g.AddRule("r", valueobject.RuleTypeEligibility, valueobject.RuleActionAccept, 1, now)
	require.NoError(t, err)
	require.NoError(t, g.SetApplicability("PROPERTY", "CA,TX", "3323", now))

	assert.False(t, g.IsApplicable("PROPERTY", "CA", "332312"), "draft guidelines never apply")
	require.NoError(t, g.Activate(now))

	assert.True(t, g.IsApplicable("Property", "ca", "332312"))
	assert.False(t, g.IsApplicable("CYBER", "CA", "332312"))
	assert.False(t, g.IsApplicable("PROPERTY", "NY", "332312"))
	assert.False(t, g.IsApplicable("PROPERTY", "CA", "541511"))
	assert.False(t, g.IsApplicable("PROPERTY", "CA", ""))

	open, err := model.NewGuideline("tenant-1", "Open", "", now)
	require.NoError(t, err)
	_, err = open.AddRule("r", valueobject.RuleTypeEligibility, valueobject.RuleActionAccept, 1, now)
	require.NoError(t, err)
	require.NoError(t, open.Activate(now))
	assert.True(t, open.IsApplicable("", "", ""))
}

func TestGuideline_ActiveRulesOrderedByPriority(t *testing.T) {
	g := newGuideline(t)
	late, err := g.AddRule("late", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 30, now)
	require.NoError(t, err)
	first, err := g.AddRule("first", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 10, now)
	require.NoError(t, err)
	tie, err := g.AddRule("tie", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 10, now)
	require.NoError(t, err)
	off, err := g.AddRule("off", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 1, now)
	require.NoError(t, err)
	require.NoError(t, off.SetActive(false))

	assert.Equal(t, []*model.UnderwritingRule{first, tie, late}, g.ActiveRules())
}

func TestRule_ActionSpecificSettings(t *testing.T) {
	g := newGuideline(t)
	refer, err := g.AddRule("refer", valueobject.RuleTypeAppetite, valueobject.RuleActionRefer, 1, now)
	require.NoError(t, err)
	adjust, err := g.AddRule("adjust", valueobject.RuleTypeAppetite, valueobject.RuleActionAdjustScore, 2, now)
	require.NoError(t, err)
	modifier, err := g.AddRule("modifier", valueobject.RuleTypePricing, valueobject.RuleActionApplyModifier, 3, now)
	require.NoError(t, err)

	assert.ErrorIs(t, refer.SetScoreAdjustment(10), model.ErrRuleActionMismatch)
	assert.ErrorIs(t, adjust.SetScoreAdjustment(101), model.ErrRuleInvalidScoreAdjustment)
	require.NoError(t, adjust.SetScoreAdjustment(-100))

	assert.ErrorIs(t, adjust.SetPricingModifier(decimal.NewFromFloat(1.1)), model.ErrRuleActionMismatch)
	assert.ErrorIs(t, modifier.SetPricingModifier(decimal.Zero), model.ErrRuleInvalidPricingModifier)
	require.NoError(t, modifier.SetPricingModifier(decimal.RequireFromString("1.15")))
	m, ok := modifier.PricingModifier()
	require.True(t, ok)
	assert.Equal(t, "1.15", m.String())

	assert.Equal(t, "refer", refer.Reason())
	require.NoError(t, refer.SetMessage("Large schedule needs referral"))
	assert.Equal(t, "Large schedule needs referral", refer.Reason())
}

func TestRule_MatchesAllConditions(t *testing.T) {
	g := newGuideline(t)
	rule, err := g.AddRule("Decline frame in CA", valueobject.RuleTypeEligibility, valueobject.RuleActionDecline, 1, now)
	require.NoError(t, err)

	sub := newSubmission(t)
	assert.True(t, rule.Matches(sub), "a rule without conditions always matches")

	require.NoError(t, rule.AddCondition(condition(t, valueobject.FieldLocationState, valueobject.OperatorEquals, "CA", "")))
	require.NoError(t, rule.AddCondition(condition(t, valueobject.FieldConstructionType, valueobject.OperatorEquals, "frame", "")))
	assert.False(t, rule.Matches(sub))

	loc, err := sub.AddLocation(address(t, "CA"))
	require.NoError(t, err)
	assert.False(t, rule.Matches(sub))

	require.NoError(t, loc.SetConstruction(valueobject.ConstructionFrame, 1975, 2, 12000))
	assert.True(t, rule.Matches(sub))

	assert.ErrorIs(t, rule.AddCondition(model.RuleCondition{}), model.ErrConditionInvalid)
}
