//go:build integration

package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/usecase"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/underwriting/migrations"
	"github.com/bibbank/underwriting/pkg/testutil"
)

const tenant = testutil.TestTenantID

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func harborRequest(name string) dto.CreateSubmissionRequest {
	return dto.CreateSubmissionRequest{
		TenantID:     tenant,
		ProducerID:   testutil.TestProducerID,
		ProducerName: "Great Lakes Brokerage",
		Insured: dto.InsuredDTO{
			Name:          name,
			NaicsCode:     "332710",
			AnnualRevenue: dec("4000000"),
			Address:       &dto.AddressDTO{Street1: "1 Harbor Way", City: "Chicago", State: "IL"},
		},
		Coverages: []dto.CoverageDTO{{Type: "general_liability", RequestedLimit: dec("1000000")}},
		Locations: []dto.LocationDTO{{
			Address:       dto.AddressDTO{Street1: "1 Harbor Way", City: "Chicago", State: "IL"},
			BuildingValue: dec("900000"),
		}},
		Losses: []dto.LossDTO{{
			Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "Slip and fall", Paid: dec("12000"),
		}},
		MarkReceived: true,
	}
}

func TestRepositories_Postgres(t *testing.T) {
	ctx := context.Background()
	pg := testutil.NewPostgresContainer(ctx, t, migrations.FS)

	subs := postgres.NewSubmissionRepository(pg.Pool)
	guidelines := postgres.NewGuidelineRepository(pg.Pool)
	outbox := postgres.NewOutboxRepository(pg.Pool)

	t.Run("submission round trip", func(t *testing.T) {
		created, err := usecase.NewCreateSubmissionUseCase(subs, quietLogger()).Execute(ctx, harborRequest("Harbor Fabrication LLC"))
		require.NoError(t, err)
		assert.Equal(t, 1, created.Version)

		got, err := subs.FindByID(ctx, tenant, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.SubmissionNumber, got.SubmissionNumber())
		assert.Equal(t, valueobject.SubmissionStatusReceived, got.Status())
		assert.Len(t, got.Coverages(), 1)
		assert.Len(t, got.Locations(), 1)
		assert.Len(t, got.LossHistory(), 1)
		assert.Equal(t, "IL", got.Insured().Address().State())
		assert.Equal(t, testutil.TestProducerID, got.ProducerID())
		assert.Empty(t, got.DomainEvents())
	})

	t.Run("assignment is persisted and filterable", func(t *testing.T) {
		created, err := usecase.NewCreateSubmissionUseCase(subs, quietLogger()).Execute(ctx, harborRequest("Prairie Tool Works"))
		require.NoError(t, err)
		sub, err := subs.FindByID(ctx, tenant, created.ID)
		require.NoError(t, err)

		require.NoError(t, sub.AssignToUnderwriter(testutil.TestUnderwriterID, "Dana Reyes", time.Now().UTC()))
		require.NoError(t, subs.Save(ctx, sub))

		assigned, err := subs.List(ctx, tenant, port.SubmissionFilter{AssignedTo: testutil.TestUnderwriterID})
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Equal(t, created.ID, assigned[0].ID())
		assert.Equal(t, testutil.TestUnderwriterID, assigned[0].AssignedUnderwriterID())
		assert.Equal(t, valueobject.SubmissionStatusInReview, assigned[0].Status())
	})

	t.Run("missing submission", func(t *testing.T) {
		_, err := subs.FindByID(ctx, tenant, "does-not-exist")
		testutil.AssertErrorIs(t, err, model.ErrSubmissionNotFound)
	})

	t.Run("submission numbers are sequential per tenant and year", func(t *testing.T) {
		first, err := subs.NextSubmissionNumber(ctx, testutil.TestOtherTenantID, 2026)
		require.NoError(t, err)
		second, err := subs.NextSubmissionNumber(ctx, testutil.TestOtherTenantID, 2026)
		require.NoError(t, err)
		other, err := subs.NextSubmissionNumber(ctx, testutil.TestOtherTenantID, 2027)
		require.NoError(t, err)

		assert.Equal(t, "SUB-2026-000001", first)
		assert.Equal(t, "SUB-2026-000002", second)
		assert.Equal(t, "SUB-2027-000001", other)
	})

	t.Run("stale update is rejected", func(t *testing.T) {
		created, err := usecase.NewCreateSubmissionUseCase(subs, quietLogger()).Execute(ctx, harborRequest("Lakeside Bakery"))
		require.NoError(t, err)

		a, err := subs.FindByID(ctx, tenant, created.ID)
		require.NoError(t, err)
		b, err := subs.FindByID(ctx, tenant, created.ID)
		require.NoError(t, err)

		now := time.Now().UTC()
		require.NoError(t, a.Withdraw("producer withdrew", now))
		require.NoError(t, subs.Save(ctx, a))

		require.NoError(t, b.Decline("outside appetite", now))
		err = subs.Save(ctx, b)
		testutil.AssertErrorIs(t, err, model.ErrConcurrencyConflict)
	})

	t.Run("list filters by name and open status", func(t *testing.T) {
		list, err := subs.List(ctx, tenant, port.SubmissionFilter{InsuredName: "  harbor   fabrication llc ", OpenOnly: true})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Harbor Fabrication LLC", list[0].Insured().Name())

		closed, err := subs.List(ctx, tenant, port.SubmissionFilter{Statuses: []valueobject.SubmissionStatus{valueobject.SubmissionStatusWithdrawn}})
		require.NoError(t, err)
		assert.Len(t, closed, 1)
	})

	t.Run("guidelines", func(t *testing.T) {
		req := dto.CreateGuidelineRequest{
			TenantID: tenant,
			Name:     "Midwest Manufacturing",
			States:   "IL,IN",
			Rules: []dto.RuleDTO{{
				Name: "Manufacturing credit", Type: "pricing", Action: "apply_modifier", Priority: 1,
				PricingModifier: dec("0.95"),
				Conditions:      []dto.ConditionDTO{{Field: "naics_code", Operator: "in", Value: "332710,332720"}},
			}},
			Activate: true,
		}
		created, err := usecase.NewCreateGuidelineUseCase(guidelines, quietLogger()).Execute(ctx, req)
		require.NoError(t, err)

		_, err = usecase.NewCreateGuidelineUseCase(guidelines, quietLogger()).Execute(ctx, req)
		testutil.AssertErrorIs(t, err, model.ErrGuidelineDuplicateName)

		applicable, err := guidelines.FindApplicable(ctx, tenant, "GENERAL_LIABILITY", "IL", "332710")
		require.NoError(t, err)
		require.Len(t, applicable, 1)
		assert.Equal(t, created.ID, applicable[0].ID())
		require.Len(t, applicable[0].Rules(), 1)

		none, err := guidelines.FindApplicable(ctx, tenant, "GENERAL_LIABILITY", "TX", "332710")
		require.NoError(t, err)
		assert.Empty(t, none)

		_, err = guidelines.FindByID(ctx, tenant, "missing")
		testutil.AssertErrorIs(t, err, model.ErrGuidelineNotFound)
	})

	t.Run("outbox collects events written with aggregates", func(t *testing.T) {
		pending, err := outbox.FetchUnpublished(ctx, 1000)
		require.NoError(t, err)
		require.NotEmpty(t, pending)

		ids := make([]string, 0, len(pending))
		for _, e := range pending {
			assert.NotEmpty(t, e.EventType)
			assert.Equal(t, tenant, e.TenantID)
			ids = append(ids, e.ID)
		}
		require.NoError(t, outbox.MarkPublished(ctx, ids))

		remaining, err := outbox.FetchUnpublished(ctx, 1000)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})
}
