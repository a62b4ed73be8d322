package adapter

import (
	"context"
	"fmt"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// RepositoryClearanceChecker flags other open submissions in the same tenant
// for the same insured. It implements port.ClearanceChecker.
type RepositoryClearanceChecker struct {
	submissions port.SubmissionRepository
}

// NewRepositoryClearanceChecker creates a checker backed by the submission store.
func NewRepositoryClearanceChecker(submissions port.SubmissionRepository) *RepositoryClearanceChecker {
	return &RepositoryClearanceChecker{submissions: submissions}
}

var _ port.ClearanceChecker = (*RepositoryClearanceChecker)(nil)

// Check returns one match per conflicting submission.
func (c *RepositoryClearanceChecker) Check(ctx context.Context, sub *model.Submission) ([]model.ClearanceMatch, error) {
	name := sub.Insured().Name()
	candidates, err := c.submissions.List(ctx, sub.TenantID(), port.SubmissionFilter{
		InsuredName: name,
		OpenOnly:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("list candidate submissions: %w", err)
	}

	conflicting := model.IsOpen().
		And(model.InsuredNameEquals(name)).
		And(model.HasID(sub.ID()).Not())

	var matches []model.ClearanceMatch
	for _, other := range conflicting.Filter(candidates) {
		matches = append(matches, model.ClearanceMatch{
			SubmissionID:     other.ID(),
			SubmissionNumber: other.SubmissionNumber(),
			InsuredName:      other.Insured().Name(),
			Reason:           fmt.Sprintf("open submission %s (%s) for the same insured", other.SubmissionNumber(), other.Status()),
		})
	}
	return matches, nil
}
