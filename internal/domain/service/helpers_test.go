package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

var asOf = time.Date(2026, 5, 1, 15, 30, 0, 0, time.UTC)

func usd(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.NewFromInt(amount, "USD")
	require.NoError(t, err)
	return m
}

func submissionInState(t *testing.T, state string) *model.Submission {
	t.Helper()
	ins, err := model.NewInsured("Acme Co")
	require.NoError(t, err)
	addr, err := valueobject.NewAddress("100 Market St", "", "Springfield", state, "90210", "US")
	require.NoError(t, err)
	sub, err := model.NewSubmission("tenant-1", "SUB-2024-000001", ins.WithAddress(addr), asOf)
	require.NoError(t, err)
	return sub
}

type ruleDef struct {
	name       string
	action     valueobject.RuleAction
	adjustment int
	message    string
	conditions []model.RuleCondition
}

func activeGuideline(t *testing.T, rules ...ruleDef) *model.Guideline {
	t.Helper()
	g, err := model.NewGuideline("tenant-1", "Commercial Package", "", asOf)
	require.NoError(t, err)
	for i, def := range rules {
		r, err := g.AddRule(def.name, valueobject.RuleTypeAppetite, def.action, i+1, asOf)
		require.NoError(t, err)
		if def.action == valueobject.RuleActionAdjustScore {
			require.NoError(t, r.SetScoreAdjustment(def.adjustment))
		}
		if def.message != "" {
			require.NoError(t, r.SetMessage(def.message))
		}
		for _, c := range def.conditions {
			require.NoError(t, r.AddCondition(c))
		}
	}
	require.NoError(t, g.Activate(asOf))
	return g
}

func cond(t *testing.T, field valueobject.RuleField, op valueobject.ConditionOperator, value string) model.RuleCondition {
	t.Helper()
	c, err := model.NewRuleCondition(field, op, value, "")
	require.NoError(t, err)
	return c
}
