package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
)

// TransitionSubmissionUseCase applies one lifecycle command to a submission.
type TransitionSubmissionUseCase struct {
	submissions port.SubmissionRepository
	logger      *slog.Logger
	now         func() time.Time
}

// NewTransitionSubmissionUseCase wires dependencies.
func NewTransitionSubmissionUseCase(submissions port.SubmissionRepository, logger *slog.Logger) *TransitionSubmissionUseCase {
	return &TransitionSubmissionUseCase{
		submissions: submissions,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute loads the submission, applies the command and saves the result.
func (uc *TransitionSubmissionUseCase) Execute(
	ctx context.Context,
	req dto.TransitionSubmissionRequest,
) (dto.SubmissionResponse, error) {
	// 1. Load.
	sub, err := uc.submissions.FindByID(ctx, req.TenantID, req.SubmissionID)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("find submission: %w", err)
	}
	from := sub.Status()

	// 2. Apply.
	if err := uc.apply(sub, req); err != nil {
		return dto.SubmissionResponse{}, err
	}

	// 3. Persist.
	if err := uc.submissions.Save(ctx, sub); err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("save submission: %w", err)
	}

	uc.logger.InfoContext(ctx, "submission command applied",
		"tenant_id", sub.TenantID(),
		"submission_id", sub.ID(),
		"command", req.Command,
		"from_status", from.String(),
		"to_status", sub.Status().String(),
	)
	return toSubmissionResponse(sub), nil
}

func (uc *TransitionSubmissionUseCase) apply(sub *model.Submission, req dto.TransitionSubmissionRequest) error {
	now := uc.now()
	switch req.Command {
	case dto.CommandReceive:
		return sub.MarkAsReceived(now)
	case dto.CommandAssign:
		return sub.AssignToUnderwriter(req.UnderwriterID, req.UnderwriterName, now)
	case dto.CommandRequestInformation:
		return sub.RequestInformation(req.Reason, now)
	case dto.CommandQuote:
		if req.Premium == nil {
			return model.ErrInvalidPremium
		}
		currency := req.Currency
		if currency == "" {
			currency = defaultCurrency
		}
		premium, err := amount(*req.Premium, currency)
		if err != nil {
			return err
		}
		return sub.Quote(premium, now)
	case dto.CommandBind:
		return sub.Bind(now)
	case dto.CommandDecline:
		return sub.Decline(req.Reason, now)
	case dto.CommandWithdraw:
		return sub.Withdraw(req.Reason, now)
	case dto.CommandExpire:
		return sub.Expire(req.Reason, now)
	case dto.CommandOverrideClearance:
		return sub.OverrideClearance(req.Reason, req.UserID, now)
	default:
		return model.ErrInvalidStatusTransition.WithDescription("unknown command %q", req.Command)
	}
}
