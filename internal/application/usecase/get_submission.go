package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/money"
)

// GetSubmissionUseCase retrieves a submission by ID.
type GetSubmissionUseCase struct {
	submissions port.SubmissionRepository
}

// NewGetSubmissionUseCase wires dependencies.
func NewGetSubmissionUseCase(submissions port.SubmissionRepository) *GetSubmissionUseCase {
	return &GetSubmissionUseCase{submissions: submissions}
}

// Execute returns a submission response for the given ID.
func (uc *GetSubmissionUseCase) Execute(
	ctx context.Context,
	req dto.GetSubmissionRequest,
) (dto.SubmissionResponse, error) {
	sub, err := uc.submissions.FindByID(ctx, req.TenantID, req.SubmissionID)
	if err != nil {
		return dto.SubmissionResponse{}, fmt.Errorf("find submission: %w", err)
	}
	return toSubmissionResponse(sub), nil
}

// ListSubmissionsUseCase lists a tenant's submissions.
type ListSubmissionsUseCase struct {
	submissions port.SubmissionRepository
}

// NewListSubmissionsUseCase wires dependencies.
func NewListSubmissionsUseCase(submissions port.SubmissionRepository) *ListSubmissionsUseCase {
	return &ListSubmissionsUseCase{submissions: submissions}
}

// Execute returns the submissions matching the request filter.
func (uc *ListSubmissionsUseCase) Execute(
	ctx context.Context,
	req dto.ListSubmissionsRequest,
) (dto.ListSubmissionsResponse, error) {
	filter := port.SubmissionFilter{
		AssignedTo:  req.AssignedTo,
		InsuredName: req.InsuredName,
		OpenOnly:    req.OpenOnly,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	for _, raw := range req.Statuses {
		status, err := valueobject.NewSubmissionStatus(raw)
		if err != nil {
			return dto.ListSubmissionsResponse{}, model.ErrInvalidRequest.WithDescription("status filter: %v", err)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	subs, err := uc.submissions.List(ctx, req.TenantID, filter)
	if err != nil {
		return dto.ListSubmissionsResponse{}, fmt.Errorf("list submissions: %w", err)
	}

	resp := dto.ListSubmissionsResponse{Submissions: make([]dto.SubmissionResponse, 0, len(subs))}
	for _, sub := range subs {
		resp.Submissions = append(resp.Submissions, toSubmissionResponse(sub))
	}
	return resp, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func toSubmissionResponse(sub *model.Submission) dto.SubmissionResponse {
	resp := dto.SubmissionResponse{
		ID:                      sub.ID(),
		TenantID:                sub.TenantID(),
		SubmissionNumber:        sub.SubmissionNumber(),
		Status:                  sub.Status().String(),
		StatusReason:            sub.StatusReason(),
		InsuredName:             sub.Insured().Name(),
		ProducerName:            sub.ProducerName(),
		AssignedUnderwriterID:   sub.AssignedUnderwriterID(),
		AssignedUnderwriterName: sub.AssignedUnderwriterName(),
		QuotedPremium:           moneyPtr(sub.QuotedPremium()),
		DeclineReason:           sub.DeclineReason(),
		Coverages:               make([]dto.CoverageResponse, 0, len(sub.Coverages())),
		LocationCount:           len(sub.Locations()),
		LossCount:               len(sub.LossHistory()),
		Clearance:               toClearanceResponse(sub.Clearance()),
		Scores: dto.ScoresResponse{
			Appetite:    intPtr(sub.AppetiteScore()),
			Winnability: intPtr(sub.WinnabilityScore()),
			DataQuality: intPtr(sub.DataQualityScore()),
		},
		Version:   sub.Version(),
		CreatedAt: sub.CreatedAt(),
		UpdatedAt: sub.UpdatedAt(),
	}
	for _, c := range sub.Coverages() {
		resp.Coverages = append(resp.Coverages, dto.CoverageResponse{
			ID:             c.ID(),
			Type:           c.Type().String(),
			RequestedLimit: moneyPtr(c.RequestedLimit()),
			Deductible:     moneyPtr(c.Deductible()),
			EffectiveDate:  timePtr(c.EffectiveDate()),
			ExpirationDate: timePtr(c.ExpirationDate()),
		})
	}
	// Mixed-currency locations have no meaningful total.
	if len(sub.Locations()) > 0 {
		if tiv, err := sub.TotalInsuredValue(); err == nil {
			resp.TotalInsuredValue = &tiv
		}
	}
	return resp
}

func toClearanceResponse(c model.Clearance) dto.ClearanceResponse {
	return dto.ClearanceResponse{
		Status:         c.Status().String(),
		MatchCount:     len(c.Matches()),
		CheckedAt:      timePtr(c.CheckedAt()),
		OverrideReason: c.OverrideReason(),
		OverriddenBy:   c.OverriddenBy(),
	}
}

func toGuidelineResponse(g *model.Guideline) dto.GuidelineResponse {
	resp := dto.GuidelineResponse{
		ID:            g.ID(),
		TenantID:      g.TenantID(),
		Name:          g.Name(),
		Description:   g.Description(),
		Status:        g.Status().String(),
		Version:       g.Version(),
		CoverageTypes: g.CoverageTypeFilter(),
		States:        g.StateFilter(),
		NaicsCodes:    g.NaicsFilter(),
		Rules:         make([]dto.RuleResponse, 0, len(g.Rules())),
		CreatedAt:     g.CreatedAt(),
		UpdatedAt:     g.UpdatedAt(),
	}
	for _, r := range g.Rules() {
		rr := dto.RuleResponse{
			ID:              r.ID(),
			Name:            r.Name(),
			Type:            r.Type().String(),
			Action:          r.Action().String(),
			Priority:        r.Priority(),
			IsActive:        r.IsActive(),
			ConditionCount:  len(r.Conditions()),
			ScoreAdjustment: intPtr(r.ScoreAdjustment()),
			Message:         r.Message(),
		}
		if m, ok := r.PricingModifier(); ok {
			rr.PricingModifier = &m
		}
		resp.Rules = append(resp.Rules, rr)
	}
	return resp
}

func moneyPtr(m money.Money, ok bool) *money.Money {
	if !ok {
		return nil
	}
	return &m
}

func intPtr(v int, ok bool) *int {
	if !ok {
		return nil
	}
	return &v
}

func timePtr(t time.Time, ok bool) *time.Time {
	if !ok {
		return nil
	}
	return &t
}
