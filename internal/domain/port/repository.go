package port

import (
	"context"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// SubmissionFilter narrows SubmissionRepository.List. Zero fields do not filter.
type SubmissionFilter struct {
	Statuses    []valueobject.SubmissionStatus
	AssignedTo  string
	InsuredName string
	OpenOnly    bool
	Limit       int
	Offset      int
}

// Predicate expresses the filter as a composable predicate, for adapters
// that filter in memory.
func (f SubmissionFilter) Predicate() model.SubmissionPredicate {
	p := model.SubmissionPredicate(func(*model.Submission) bool { return true })
	if len(f.Statuses) > 0 {
		p = p.And(model.HasStatus(f.Statuses...))
	}
	if f.AssignedTo != "" {
		p = p.And(model.AssignedTo(f.AssignedTo))
	}
	if f.InsuredName != "" {
		p = p.And(model.InsuredNameEquals(f.InsuredName))
	}
	if f.OpenOnly {
		p = p.And(model.IsOpen())
	}
	return p
}

// SubmissionRepository persists submissions. Save writes the aggregate and
// its pending events atomically and fails with model.ErrConcurrencyConflict
// when the stored version moved on.
type SubmissionRepository interface {
	Save(ctx context.Context, sub *model.Submission) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Submission, error)
	List(ctx context.Context, tenantID string, filter SubmissionFilter) ([]*model.Submission, error)
	NextSubmissionNumber(ctx context.Context, tenantID string, year int) (string, error)
}

// GuidelineRepository persists underwriting guidelines.
type GuidelineRepository interface {
	Save(ctx context.Context, g *model.Guideline) error
	FindByID(ctx context.Context, tenantID, id string) (*model.Guideline, error)
	FindActiveByTenant(ctx context.Context, tenantID string) ([]*model.Guideline, error)
	FindApplicable(ctx context.Context, tenantID, coverageType, state, naicsCode string) ([]*model.Guideline, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher relays stored domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, entries ...events.OutboxEntry) error
}

// ---------------------------------------------------------------------------
// External service ports
// ---------------------------------------------------------------------------

// ClearanceChecker looks for existing submissions that conflict with sub.
type ClearanceChecker interface {
	Check(ctx context.Context, sub *model.Submission) ([]model.ClearanceMatch, error)
}
