package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// RunClearanceUseCase checks a submission against existing business and
// records the outcome on the aggregate.
type RunClearanceUseCase struct {
	submissions port.SubmissionRepository
	checker     port.ClearanceChecker
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunClearanceUseCase wires dependencies.
func NewRunClearanceUseCase(
	submissions port.SubmissionRepository,
	checker port.ClearanceChecker,
	logger *slog.Logger,
) *RunClearanceUseCase {
	return &RunClearanceUseCase{
		submissions: submissions,
		checker:     checker,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute runs the check and saves the submission with its clearance result.
func (uc *RunClearanceUseCase) Execute(
	ctx context.Context,
	req dto.RunClearanceRequest,
) (dto.SubmissionResponse, error) {
	// 1. Load.
	sub, err := uc.submissions.FindByID(ctx, req.TenantID, req.SubmissionID)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("find submission: %w", err)
	}

	// 2. Look for conflicting submissions.
	matches, err := uc.checker.Check(ctx, sub)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("clearance check: %w", err)
	}

	// 3. Record the outcome.
	if err := sub.CompleteClearance(matches, uc.now()); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// 4. Persist.
	if err := uc.submissions.Save(ctx, sub); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("save submission: %w", err)
	}

	uc.logger.InfoContext(ctx, "clearance completed",
		"tenant_id", sub.TenantID(),
		"submission_id", sub.ID(),
		"clearance_status", sub.Clearance().Status().String(),
		"matches", len(matches),
	)
	return toSubmissionResponse(sub), nil
}
