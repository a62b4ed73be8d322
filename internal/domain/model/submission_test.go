package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newInsured(t *testing.T, name string) model.Insured {
	t.Helper()
	ins, err := model.NewInsured(name)
	require.NoError(t, err)
	return ins
}

func newSubmission(t *testing.T) *model.Submission {
	t.Helper()
	sub, err := model.NewSubmission("tenant-1", "SUB-2026-000001", newInsured(t, "Acme Manufacturing"), now)
	require.NoError(t, err)
	return sub
}

func usd(t *testing.T, amount int64) money.Money {
	t.Helper()
	m, err := money.NewFromInt(amount, "USD")
	require.NoError(t, err)
	return m
}

func address(t *testing.T, state string) valueobject.Address {
	t.Helper()
	a, err := valueobject.NewAddress("1 Main St", "", "Springfield", state, "62701", "US")
	require.NoError(t, err)
	return a
}

// submissionIn drives a fresh submission to the requested status.
func submissionIn(t *testing.T, status valueobject.SubmissionStatus) *model.Submission {
	t.Helper()
	sub := newSubmission(t)
	steps := map[valueobject.SubmissionStatus][]func() error{
		valueobject.SubmissionStatusDraft:    nil,
		valueobject.SubmissionStatusReceived: {func() error { return sub.MarkAsReceived(now) }},
		valueobject.SubmissionStatusInReview: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.AssignToUnderwriter("uw-1", "Jane Doe", now) },
		},
		valueobject.SubmissionStatusPendingInformation: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.AssignToUnderwriter("uw-1", "Jane Doe", now) },
			func() error { return sub.RequestInformation("need loss runs", now) },
		},
		valueobject.SubmissionStatusQuoted: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.AssignToUnderwriter("uw-1", "Jane Doe", now) },
			func() error { return sub.Quote(usd(t, 45000), now) },
		},
		valueobject.SubmissionStatusBound: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.AssignToUnderwriter("uw-1", "Jane Doe", now) },
			func() error { return sub.Quote(usd(t, 45000), now) },
			func() error { return sub.Bind(now) },
		},
		valueobject.SubmissionStatusDeclined: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.Decline("outside appetite", now) },
		},
		valueobject.SubmissionStatusWithdrawn: {
			func() error { return sub.MarkAsReceived(now) },
			func() error { return sub.Withdraw("", now) },
		},
		valueobject.SubmissionStatusExpired: {
			func() error { return sub.Expire("stale", now) },
		},
	}
	for _, step := range steps[status] {
		require.NoError(t, step())
	}
	require.Equal(t, status, sub.Status())
	return sub
}

func statusChanges(sub *model.Submission) []event.SubmissionStatusChanged {
	var out []event.SubmissionStatusChanged
	for _, e := range sub.DomainEvents() {
		if sc, ok := e.(event.SubmissionStatusChanged); ok {
			out = append(out, sc)
		}
	}
	return out
}

func TestNewSubmission_Valid(t *testing.T) {
	sub := newSubmission(t)

	assert.NotEmpty(t, sub.ID())
	assert.Equal(t, "tenant-1", sub.TenantID())
	assert.Equal(t, "SUB-2026-000001", sub.SubmissionNumber())
	assert.Equal(t, valueobject.SubmissionStatusDraft, sub.Status())
	assert.Equal(t, valueobject.ClearanceStatusNotStarted, sub.Clearance().Status())
	assert.False(t, sub.IsClosed())

	evts := sub.DomainEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, event.TypeSubmissionCreated, evts[0].EventType())
	assert.Equal(t, sub.ID(), evts[0].AggregateID())
}

func TestNewSubmission_Invalid(t *testing.T) {
	ins := newInsured(t, "Acme")

	_, err := model.NewSubmission("", "SUB-1", ins, now)
	assert.ErrorIs(t, err, model.ErrTenantRequired)

	_, err = model.NewSubmission("tenant-1", " ", ins, now)
	assert.ErrorIs(t, err, model.ErrInvalidSubmission)

	_, err = model.NewSubmission("tenant-1", "SUB-1", model.Insured{}, now)
	assert.ErrorIs(t, err, model.ErrInsuredNameRequired)

	_, err = model.NewInsured("   ")
	assert.ErrorIs(t, err, model.ErrInsuredNameRequired)
}

func TestSubmission_HappyPathToBound(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusBound)

	premium, ok := sub.QuotedPremium()
	require.True(t, ok)
	assert.True(t, premium.Equal(usd(t, 45000)))
	assert.Equal(t, "uw-1", sub.AssignedUnderwriterID())
	assert.True(t, sub.IsClosed())

	changes := statusChanges(sub)
	require.Len(t, changes, 4)
	var path []string
	for _, c := range changes {
		path = append(path, c.NewStatus)
	}
	assert.Equal(t, []string{"RECEIVED", "IN_REVIEW", "QUOTED", "BOUND"}, path)
}

func TestSubmission_MarkAsReceivedIsIdempotent(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)
	before := len(sub.DomainEvents())

	require.NoError(t, sub.MarkAsReceived(now))

	assert.Equal(t, valueobject.SubmissionStatusInReview, sub.Status())
	assert.Len(t, sub.DomainEvents(), before)
}

func TestSubmission_TransitionTable(t *testing.T) {
	type op struct {
		name string
		run  func(*model.Submission) error
	}
	ops := []op{
		{"quote", func(s *model.Submission) error { return s.Quote(usd(t, 1000), now) }},
		{"request info", func(s *model.Submission) error { return s.RequestInformation("why", now) }},
		{"decline", func(s *model.Submission) error { return s.Decline("no", now) }},
		{"withdraw", func(s *model.Submission) error { return s.Withdraw("", now) }},
		{"expire", func(s *model.Submission) error { return s.Expire("", now) }},
	}
	allowed := map[string][]valueobject.SubmissionStatus{
		"quote":        {valueobject.SubmissionStatusInReview, valueobject.SubmissionStatusPendingInformation},
		"request info": {valueobject.SubmissionStatusInReview},
		"decline": {
			valueobject.SubmissionStatusReceived,
			valueobject.SubmissionStatusInReview,
			valueobject.SubmissionStatusPendingInformation,
		},
		"withdraw": {
			valueobject.SubmissionStatusReceived,
			valueobject.SubmissionStatusInReview,
			valueobject.SubmissionStatusPendingInformation,
			valueobject.SubmissionStatusQuoted,
		},
		"expire": {
			valueobject.SubmissionStatusDraft,
			valueobject.SubmissionStatusReceived,
			valueobject.SubmissionStatusInReview,
			valueobject.SubmissionStatusPendingInformation,
			valueobject.SubmissionStatusQuoted,
		},
	}

	for _, o := range ops {
		for _, from := range valueobject.SubmissionStatuses() {
			t.Run(o.name+" from "+from.String(), func(t *testing.T) {
				sub := submissionIn(t, from)
				err := o.run(sub)
				if from.In(allowed[o.name]...) {
					assert.NoError(t, err)
					return
				}
				assert.ErrorIs(t, err, model.ErrInvalidStatusTransition)
				assert.Equal(t, from, sub.Status(), "status must not change on a rejected transition")
			})
		}
	}
}

func TestSubmission_BindRequiresQuoted(t *testing.T) {
	for _, from := range valueobject.SubmissionStatuses() {
		if from == valueobject.SubmissionStatusQuoted {
			continue
		}
		sub := submissionIn(t, from)
		err := sub.Bind(now)
		assert.ErrorIs(t, err, model.ErrMustBeQuotedToBind, from.String())
	}
}

func TestSubmission_QuoteRequiresPositivePremium(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)

	err := sub.Quote(money.Zero(money.USD), now)

	assert.ErrorIs(t, err, model.ErrInvalidPremium)
	assert.Equal(t, valueobject.SubmissionStatusInReview, sub.Status())
}

func TestSubmission_DeclineRequiresReason(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)

	assert.ErrorIs(t, sub.Decline("  ", now), model.ErrReasonRequired)

	require.NoError(t, sub.Decline("Vacant building", now))
	assert.Equal(t, "Vacant building", sub.DeclineReason())
	assert.Equal(t, "Vacant building", sub.StatusReason())
}

func TestSubmission_AssignToUnderwriter(t *testing.T) {
	t.Run("received moves to in review", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusReceived)
		require.NoError(t, sub.AssignToUnderwriter("uw-7", "Sam Lee", now))
		assert.Equal(t, valueobject.SubmissionStatusInReview, sub.Status())
		assert.Equal(t, "Sam Lee", sub.AssignedUnderwriterName())
	})

	t.Run("pending information moves to in review", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusPendingInformation)
		require.NoError(t, sub.AssignToUnderwriter("uw-7", "Sam Lee", now))
		assert.Equal(t, valueobject.SubmissionStatusInReview, sub.Status())
	})

	t.Run("quoted keeps status", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusQuoted)
		before := len(statusChanges(sub))
		require.NoError(t, sub.AssignToUnderwriter("uw-7", "Sam Lee", now))
		assert.Equal(t, valueobject.SubmissionStatusQuoted, sub.Status())
		assert.Len(t, statusChanges(sub), before)
	})

	t.Run("closed submissions are rejected", func(t *testing.T) {
		for _, st := range []valueobject.SubmissionStatus{
			valueobject.SubmissionStatusBound,
			valueobject.SubmissionStatusDeclined,
			valueobject.SubmissionStatusWithdrawn,
			valueobject.SubmissionStatusExpired,
		} {
			sub := submissionIn(t, st)
			assert.ErrorIs(t, sub.AssignToUnderwriter("uw-7", "", now), model.ErrCannotAssignClosed, st.String())
		}
	})

	t.Run("underwriter id required", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusReceived)
		assert.ErrorIs(t, sub.AssignToUnderwriter(" ", "x", now), model.ErrUnderwriterRequired)
	})
}

func TestSubmission_Clearance(t *testing.T) {
	match := model.ClearanceMatch{SubmissionID: "other", SubmissionNumber: "SUB-2026-000002", InsuredName: "Acme Manufacturing", Reason: "same insured"}

	t.Run("no matches passes", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusReceived)
		require.NoError(t, sub.CompleteClearance(nil, now))
		assert.Equal(t, valueobject.ClearanceStatusPassed, sub.Clearance().Status())
		checked, ok := sub.Clearance().CheckedAt()
		assert.True(t, ok)
		assert.Equal(t, now, checked)
	})

	t.Run("failed clearance blocks assignment until overridden", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusReceived)
		require.NoError(t, sub.CompleteClearance([]model.ClearanceMatch{match}, now))
		assert.Equal(t, valueobject.ClearanceStatusFailed, sub.Clearance().Status())
		assert.Equal(t, []model.ClearanceMatch{match}, sub.Clearance().Matches())

		assert.ErrorIs(t, sub.AssignToUnderwriter("uw-1", "", now), model.ErrClearanceFailed)

		assert.ErrorIs(t, sub.OverrideClearance("", "mgr-1", now), model.ErrReasonRequired)
		require.NoError(t, sub.OverrideClearance("renewal of expiring policy", "mgr-1", now))
		assert.Equal(t, valueobject.ClearanceStatusOverridden, sub.Clearance().Status())
		assert.Equal(t, "mgr-1", sub.Clearance().OverriddenBy())

		require.NoError(t, sub.AssignToUnderwriter("uw-1", "", now))
		assert.Equal(t, valueobject.SubmissionStatusInReview, sub.Status())
	})

	t.Run("override needs a failed clearance", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusReceived)
		require.NoError(t, sub.CompleteClearance(nil, now))
		assert.ErrorIs(t, sub.OverrideClearance("why", "mgr-1", now), model.ErrClearanceNotFailed)
	})

	t.Run("override rejected outside received or in review", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusDraft)
		require.NoError(t, sub.CompleteClearance([]model.ClearanceMatch{match}, now))
		assert.ErrorIs(t, sub.OverrideClearance("why", "mgr-1", now), model.ErrInvalidStatusTransition)
	})

	t.Run("closed submissions cannot run clearance", func(t *testing.T) {
		sub := submissionIn(t, valueobject.SubmissionStatusBound)
		assert.ErrorIs(t, sub.CompleteClearance(nil, now), model.ErrInvalidStatusTransition)
	})
}

func TestSubmission_ChildrenRefusedWhenClosed(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)
	cov, err := sub.AddCoverage(valueobject.CoverageTypeProperty)
	require.NoError(t, err)
	loc, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)
	loss, err := sub.AddLoss(now.AddDate(-1, 0, 0), "water damage")
	require.NoError(t, err)

	require.NoError(t, sub.Decline("outside appetite", now))

	_, err = sub.AddCoverage(valueobject.CoverageTypeCyber)
	assert.ErrorIs(t, err, model.ErrSubmissionClosed)
	assert.ErrorIs(t, cov.SetRequestedLimit(usd(t, 1_000_000)), model.ErrSubmissionClosed)
	assert.ErrorIs(t, loc.SetOccupancy("warehouse"), model.ErrSubmissionClosed)
	assert.ErrorIs(t, loss.SetStatus(valueobject.LossStatusOpen), model.ErrSubmissionClosed)
	assert.ErrorIs(t, sub.RemoveLocation(loc.ID()), model.ErrSubmissionClosed)
	assert.ErrorIs(t, sub.RecordScores(50, 50, 50, now), model.ErrSubmissionClosed)
}

func TestSubmission_DuplicateCoverageRejected(t *testing.T) {
	sub := newSubmission(t)
	_, err := sub.AddCoverage(valueobject.CoverageTypeGeneralLiability)
	require.NoError(t, err)

	_, err = sub.AddCoverage(valueobject.CoverageTypeGeneralLiability)

	assert.ErrorIs(t, err, model.ErrDuplicateCoverage)
	assert.Len(t, sub.Coverages(), 1)
}

func TestSubmission_LocationNumbersAreNeverReused(t *testing.T) {
	sub := newSubmission(t)
	first, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)
	second, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)

	require.NoError(t, sub.RemoveLocation(second.ID()))
	third, err := sub.AddLocation(address(t, "WI"))
	require.NoError(t, err)

	assert.Equal(t, 1, first.LocationNumber())
	assert.Equal(t, 2, second.LocationNumber())
	assert.Equal(t, 3, third.LocationNumber())
	assert.Len(t, sub.Locations(), 2)
}

func TestSubmission_DerivedTotals(t *testing.T) {
	sub := newSubmission(t)

	tiv, err := sub.TotalInsuredValue()
	require.NoError(t, err)
	assert.True(t, tiv.IsZero())

	loc1, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)
	building, contents := usd(t, 2_000_000), usd(t, 500_000)
	require.NoError(t, loc1.SetValues(&building, &contents, nil))

	loc2, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)
	bi := usd(t, 250_000)
	require.NoError(t, loc2.SetValues(nil, nil, &bi))

	tiv, err = sub.TotalInsuredValue()
	require.NoError(t, err)
	assert.True(t, tiv.Equal(usd(t, 2_750_000)), tiv.String())

	l1, err := sub.AddLoss(now.AddDate(-2, 0, 0), "slip and fall")
	require.NoError(t, err)
	paid, reserved := usd(t, 10_000), usd(t, 5_000)
	require.NoError(t, l1.SetAmounts(&paid, &reserved))

	l2, err := sub.AddLoss(now.AddDate(-1, 0, 0), "roof collapse")
	require.NoError(t, err)
	incurred := usd(t, 40_000)
	require.NoError(t, l2.SetIncurred(&incurred))
	require.NoError(t, l2.SetStatus(valueobject.LossStatusReopened))

	total, err := sub.TotalIncurredLosses()
	require.NoError(t, err)
	assert.True(t, total.Equal(usd(t, 55_000)), total.String())
	assert.True(t, sub.HasOpenClaims())
}

func TestSubmission_LocationValuesMustShareCurrency(t *testing.T) {
	sub := newSubmission(t)
	loc, err := sub.AddLocation(address(t, "IL"))
	require.NoError(t, err)

	building := usd(t, 100)
	contents, err := money.NewFromInt(100, "EUR")
	require.NoError(t, err)

	assert.Error(t, loc.SetValues(&building, &contents, nil))
}

func TestSubmission_RecordScores(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusInReview)

	assert.ErrorIs(t, sub.RecordScores(101, 50, 50, now), model.ErrInvalidScore)
	_, ok := sub.AppetiteScore()
	assert.False(t, ok)

	require.NoError(t, sub.RecordScores(85, 70, 40, now))
	a, _ := sub.AppetiteScore()
	w, _ := sub.WinnabilityScore()
	dq, _ := sub.DataQualityScore()
	assert.Equal(t, []int{85, 70, 40}, []int{a, w, dq})

	evts := sub.DomainEvents()
	assert.Equal(t, event.TypeScoresRecorded, evts[len(evts)-1].EventType())
}

func TestSubmission_EarliestEffectiveDate(t *testing.T) {
	sub := newSubmission(t)
	_, ok := sub.EarliestEffectiveDate()
	assert.False(t, ok)

	gl, err := sub.AddCoverage(valueobject.CoverageTypeGeneralLiability)
	require.NoError(t, err)
	require.NoError(t, gl.SetPolicyPeriod(now.AddDate(0, 2, 0), now.AddDate(1, 2, 0)))
	prop, err := sub.AddCoverage(valueobject.CoverageTypeProperty)
	require.NoError(t, err)
	require.NoError(t, prop.SetPolicyPeriod(now.AddDate(0, 1, 0), now.AddDate(1, 1, 0)))

	earliest, ok := sub.EarliestEffectiveDate()
	require.True(t, ok)
	assert.Equal(t, now.AddDate(0, 1, 0), earliest)

	assert.Error(t, gl.SetPolicyPeriod(now, now.AddDate(0, 0, -1)))
}

func TestSubmission_ClearEventsDrains(t *testing.T) {
	sub := submissionIn(t, valueobject.SubmissionStatusReceived)

	drained := sub.ClearEvents()

	assert.Len(t, drained, 2)
	assert.Empty(t, sub.DomainEvents())
}

func TestSubmission_FieldValues(t *testing.T) {
	sub := newSubmission(t)

	assert.Nil(t, sub.FieldValues(valueobject.FieldAnnualRevenue))
	assert.Equal(t, []string{"0"}, sub.FieldValues(valueobject.FieldLocationCount))
	assert.Equal(t, []string{"false"}, sub.FieldValues(valueobject.FieldHasOpenClaims))

	_, err := sub.AddCoverage(valueobject.CoverageTypeGeneralLiability)
	require.NoError(t, err)
	_, err = sub.AddCoverage(valueobject.CoverageTypeProperty)
	require.NoError(t, err)
	_, err = sub.AddLocation(address(t, "CA"))
	require.NoError(t, err)
	_, err = sub.AddLocation(address(t, "TX"))
	require.NoError(t, err)

	assert.Equal(t, []string{"GENERAL_LIABILITY", "PROPERTY"}, sub.FieldValues(valueobject.FieldCoverageType))
	assert.Equal(t, []string{"CA", "TX"}, sub.FieldValues(valueobject.FieldLocationState))
	assert.Equal(t, []string{"Acme Manufacturing"}, sub.FieldValues(valueobject.FieldInsuredName))
}

func TestSubmissionPredicates(t *testing.T) {
	open := submissionIn(t, valueobject.SubmissionStatusInReview)
	closed := submissionIn(t, valueobject.SubmissionStatusDeclined)
	other, err := model.NewSubmission("tenant-1", "SUB-2026-000009", newInsured(t, "Beta LLC"), now)
	require.NoError(t, err)
	all := []*model.Submission{open, closed, other}

	assert.Equal(t, []*model.Submission{open, other}, model.IsOpen().Filter(all))
	assert.Equal(t, []*model.Submission{closed}, model.IsOpen().Not().Filter(all))
	assert.Equal(t, []*model.Submission{open}, model.AssignedTo("uw-1").And(model.IsOpen()).Filter(all))
	assert.Equal(t, []*model.Submission{open, closed},
		model.InsuredNameEquals("  acme   MANUFACTURING ").Filter(all))
	assert.Equal(t, []*model.Submission{closed, other},
		model.HasStatus(valueobject.SubmissionStatusDeclined).Or(model.HasID(other.ID())).Filter(all))
}

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := model.ErrInvalidStatusTransition.WithDescription("cannot move from %s to %s", "DRAFT", "BOUND")

	assert.True(t, errors.Is(err, model.ErrInvalidStatusTransition))
	assert.False(t, errors.Is(err, model.ErrMustBeQuotedToBind))
	assert.Equal(t, model.KindConflict, err.Kind)
	assert.Contains(t, err.Error(), "cannot move from DRAFT to BOUND")
}
