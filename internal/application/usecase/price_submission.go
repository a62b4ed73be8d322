package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
)

// PriceSubmissionUseCase applies guideline pricing modifiers to a base premium.
type PriceSubmissionUseCase struct {
	submissions port.SubmissionRepository
	guidelines  port.GuidelineRepository
	pricing     *service.PricingService
}

// NewPriceSubmissionUseCase wires dependencies.
func NewPriceSubmissionUseCase(
	submissions port.SubmissionRepository,
	guidelines port.GuidelineRepository,
	pricing *service.PricingService,
) *PriceSubmissionUseCase {
	return &PriceSubmissionUseCase{
		submissions: submissions,
		guidelines:  guidelines,
		pricing:     pricing,
	}
}

// Execute prices the submission. The submission is not modified.
func (uc *PriceSubmissionUseCase) Execute(
	ctx context.Context,
	req dto.PriceSubmissionRequest,
) (dto.PriceSubmissionResponse, error) {
	if !req.BasePremium.IsPositive() {
		return dto.PriceSubmissionResponse{}, model.ErrInvalidPremium.WithDescription("base premium must be positive")
	}
	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	base, err := amount(req.BasePremium, currency)
	if err != nil {
		return dto.PriceSubmissionResponse{}, err
	}

	sub, err := uc.submissions.FindByID(ctx, req.TenantID, req.SubmissionID)
	if err != nil {
		return dto.PriceSubmissionResponse{}, fmt.Errorf("find submission: %w", err)
	}
	guidelines, err := applicableGuidelines(ctx, uc.guidelines, sub)
	if err != nil {
		return dto.PriceSubmissionResponse{}, err
	}

	return dto.PriceSubmissionResponse{
		SubmissionID: sub.ID(),
		Pricing:      uc.pricing.Price(sub, guidelines, base),
	}, nil
}
