package model_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

func TestSubmissionSnapshot_RoundTrip(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)
	ins := sub.Insured().WithAddress(address(t, "IL"))
	ins, err := ins.WithAnnualRevenue(usd(t, 12_000_000))
	require.NoError(t, err)
	require.NoError(t, sub.UpdateInsured(ins, now))

	cov, err := sub.AddCoverage(valueobject.CoverageTypeProperty)
	require.NoError(t, err)
	require.NoError(t, cov.SetRequestedLimit(usd(t, 5_000_000)))
	first, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)
	_, err = sub.AddLocation(address(t, "WI"))
	require.NoError(t, err)
	require.NoError(t, sub.RemoveLocation(first.ID()))
	loss, err := sub.AddLoss(now.AddDate(-1, 0, 0), "hail")
	require.NoError(t, err)
	require.NoError(t, loss.SetStatus(valueobject.LossStatusOpen))
	require.NoError(t, sub.RecordScores(80, 60, 75, now))

	snap := sub.Snapshot()
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded model.SubmissionSnapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored, err := model.ReconstructSubmission(decoded)
	require.NoError(t, err)

	assert.Equal(t, sub.ID(), restored.ID())
	assert.Equal(t, valueobject.SubmissionStatusInReview, restored.Status())
	assert.Equal(t, "uw-1", restored.AssignedUnderwriterID())
	assert.Empty(t, restored.DomainEvents())
	require.Len(t, restored.Coverages(), 1)
	limit, ok := restored.Coverages()[0].RequestedLimit()
	require.True(t, ok)
	assert.True(t, limit.Equal(usd(t, 5_000_000)))
	assert.True(t, restored.HasOpenClaims())
	score, _ := restored.WinnabilityScore()
	assert.Equal(t, 60, score)
	assert.Equal(t, snap, restored.Snapshot())

	// numbering continues after the highest persisted location
	next, err := restored.AddLocation(address(t, "MN"))
	require.NoError(t, err)
	assert.Equal(t, 3, next.LocationNumber())

	// children keep guarding through the rebuilt owner pointer
	require.NoError(t, restored.Withdraw("", now))
	assert.ErrorIs(t, restored.Coverages()[0].SetRequestedLimit(usd(t, 1)), model.ErrSubmissionClosed)
}

func TestReconstructSubmission_RejectsUnknownStatus(t *testing.T) {
	snap := newSubmission(t).Snapshot()
	snap.Status = "LIMBO"

	_, err := model.ReconstructSubmission(snap)

	assert.Error(t, err)
}

func TestGuidelineSnapshot_RoundTrip(t *testing.T) {
	g := newGuideline(t)
	rule, err := g.AddRule("Sprinkler credit", valueobject.RuleTypePricing, valueobject.RuleActionApplyModifier, 5, now)
	require.NoError(t, err)
	require.NoError(t, rule.SetPricingModifier(decimal.RequireFromString("0.9")))
	require.NoError(t, rule.AddCondition(condition(t, valueobject.FieldYearBuilt, valueobject.OperatorBetween, "1990", "2020")))
	require.NoError(t, g.SetApplicability("PROPERTY", "CA", "", now))
	require.NoError(t, g.Activate(now))
	g.AdvanceRevision()

	restored, err := model.ReconstructGuideline(g.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, g.Snapshot(), restored.Snapshot())
	assert.Equal(t, 1, restored.Revision())
	assert.True(t, restored.IsApplicable("PROPERTY", "CA", ""))
	assert.Empty(t, restored.DomainEvents())

	r, ok := restored.Rule(rule.ID())
	require.True(t, ok)
	versionBefore := restored.Version()
	require.NoError(t, r.SetPriority(1))
	assert.Equal(t, versionBefore+1, restored.Version())
}
