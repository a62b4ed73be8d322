package usecase_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/bibbank/underwriting/internal/domain/event"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/pkg/events"
)

// --- Mock implementations ---

type mockSubmissionRepository struct {
	saveFunc    func(ctx context.Context, sub *model.Submission) error
	items       []*model.Submission
	saveCount   int
	savedEvents []event.DomainEvent
	seq         int
}

func (m *mockSubmissionRepository) Save(ctx context.Context, sub *model.Submission) error {
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, sub); err != nil {
			return err
		}
	}
	m.saveCount++
	m.savedEvents = append(m.savedEvents, sub.ClearEvents()...)
	sub.AdvanceVersion()
	for _, existing := range m.items {
		if existing.ID() == sub.ID() {
			return nil
		}
	}
	m.items = append(m.items, sub)
	return nil
}

func (m *mockSubmissionRepository) FindByID(_ context.Context, tenantID, id string) (*model.Submission, error) {
	for _, sub := range m.items {
		if sub.TenantID() == tenantID && sub.ID() == id {
			return sub, nil
		}
	}
	return nil, model.ErrSubmissionNotFound
}

func (m *mockSubmissionRepository) List(_ context.Context, tenantID string, filter port.SubmissionFilter) ([]*model.Submission, error) {
	var out []*model.Submission
	for _, sub := range filter.Predicate().Filter(m.items) {
		if sub.TenantID() == tenantID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (m *mockSubmissionRepository) NextSubmissionNumber(_ context.Context, _ string, year int) (string, error) {
	m.seq++
	return fmt.Sprintf("SUB-%d-%06d", year, m.seq), nil
}

func (m *mockSubmissionRepository) eventTypes() []string {
	out := make([]string, 0, len(m.savedEvents))
	for _, e := range m.savedEvents {
		out = append(out, e.EventType())
	}
	return out
}

type mockGuidelineRepository struct {
	saveFunc func(ctx context.Context, g *model.Guideline) error
	items    []*model.Guideline
	saved    []*model.Guideline
}

func (m *mockGuidelineRepository) Save(ctx context.Context, g *model.Guideline) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, g)
	}
	g.ClearEvents()
	g.AdvanceRevision()
	m.saved = append(m.saved, g)
	for _, existing := range m.items {
		if existing.ID() == g.ID() {
			return nil
		}
	}
	m.items = append(m.items, g)
	return nil
}

func (m *mockGuidelineRepository) FindByID(_ context.Context, tenantID, id string) (*model.Guideline, error) {
	for _, g := range m.items {
		if g.TenantID() == tenantID && g.ID() == id {
			return g, nil
		}
	}
	return nil, model.ErrGuidelineNotFound
}

func (m *mockGuidelineRepository) FindActiveByTenant(_ context.Context, tenantID string) ([]*model.Guideline, error) {
	var out []*model.Guideline
	for _, g := range m.items {
		if g.TenantID() == tenantID && g.IsActive() {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGuidelineRepository) FindApplicable(_ context.Context, tenantID, coverageType, state, naics string) ([]*model.Guideline, error) {
	var out []*model.Guideline
	for _, g := range m.items {
		if g.TenantID() == tenantID && g.IsApplicable(coverageType, state, naics) {
			out = append(out, g)
		}
	}
	return out, nil
}

type mockClearanceChecker struct {
	checkFunc func(ctx context.Context, sub *model.Submission) ([]model.ClearanceMatch, error)
}

func (m *mockClearanceChecker) Check(ctx context.Context, sub *model.Submission) ([]model.ClearanceMatch, error) {
	if m.checkFunc != nil {
		return m.checkFunc(ctx, sub)
	}
	return nil, nil
}

type mockOutboxRepository struct {
	entries   []events.OutboxEntry
	fetchErr  error
	published []string
}

func (m *mockOutboxRepository) Store(_ context.Context, entries []events.OutboxEntry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockOutboxRepository) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.entries) > batchSize {
		return m.entries[:batchSize], nil
	}
	return m.entries, nil
}

func (m *mockOutboxRepository) MarkPublished(_ context.Context, ids []string) error {
	m.published = append(m.published, ids...)
	return nil
}

type mockEventPublisher struct {
	publishFunc func(ctx context.Context, entries ...events.OutboxEntry) error
	published   []events.OutboxEntry
}

func (m *mockEventPublisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, entries...)
	}
	m.published = append(m.published, entries...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMeter() metric.Meter {
	return noop.NewMeterProvider().Meter("usecase_test")
}
