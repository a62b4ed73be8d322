package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

// CreateGuidelineUseCase defines a guideline together with its rules.
type CreateGuidelineUseCase struct {
	guidelines port.GuidelineRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewCreateGuidelineUseCase wires dependencies.
func NewCreateGuidelineUseCase(guidelines port.GuidelineRepository, logger *slog.Logger) *CreateGuidelineUseCase {
	return &CreateGuidelineUseCase{
		guidelines: guidelines,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute builds the guideline, optionally activates it and saves it.
func (uc *CreateGuidelineUseCase) Execute(
	ctx context.Context,
	req dto.CreateGuidelineRequest,
) (dto.GuidelineResponse, error) {
	now := uc.now()

	// 1. Create the aggregate and its filters.
	g, err := model.NewGuideline(req.TenantID, req.Name, req.Description, now)
	if err != nil {
		return dto.GuidelineResponse{}, err
	}
	if req.CoverageTypes != "" || req.States != "" || req.NaicsCodes != "" {
		if err := g.SetApplicability(req.CoverageTypes, req.States, req.NaicsCodes, now); err != nil {
			return dto.GuidelineResponse{}, err
		}
	}

	// 2. Add rules.
	for i, r := range req.Rules {
		if err := addRule(g, r, now); err != nil {
			return dto.GuidelineResponse{}, fmt.Errorf("rule %d: %w", i+1, err)
		}
	}

	// 3. Optionally activate.
	if req.Activate {
		if err := g.Activate(now); err != nil {
			return dto.GuidelineResponse{}, err
		}
	}

	// 4. Persist.
	if err := uc.guidelines.Save(ctx, g); err != nil {
		return dto.GuidelineResponse{}, fmt.Errorf("save guideline: %w", err)
	}

	uc.logger.InfoContext(ctx, "guideline created",
		"tenant_id", g.TenantID(),
		"guideline_id", g.ID(),
		"rules", len(g.Rules()),
		"status", g.Status().String(),
	)
	return toGuidelineResponse(g), nil
}

func addRule(g *model.Guideline, in dto.RuleDTO, now time.Time) error {
	ruleType, err := valueobject.NewRuleType(in.Type)
	if err != nil {
		return model.ErrRuleInvalid.WithDescription("%v", err)
	}
	action, err := valueobject.NewRuleAction(in.Action)
	if err != nil {
		return model.ErrRuleInvalid.WithDescription("%v", err)
	}
	rule, err := g.AddRule(in.Name, ruleType, action, in.Priority, now)
	if err != nil {
		return err
	}
	if in.Message != "" {
		if err := rule.SetMessage(in.Message); err != nil {
			return err
		}
	}
	if in.ScoreAdjustment != nil {
		if err := rule.SetScoreAdjustment(*in.ScoreAdjustment); err != nil {
			return err
		}
	}
	if in.PricingModifier != nil {
		if err := rule.SetPricingModifier(*in.PricingModifier); err != nil {
			return err
		}
	}
	for _, c := range in.Conditions {
		field, err := valueobject.NewRuleField(c.Field)
		if err != nil {
			return model.ErrConditionInvalid.WithDescription("%v", err)
		}
		op, err := valueobject.NewConditionOperator(c.Operator)
		if err != nil {
			return model.ErrConditionInvalid.WithDescription("%v", err)
		}
		cond, err := model.NewRuleCondition(field, op, c.Value, c.SecondaryValue)
		if err != nil {
			return err
		}
		if err := rule.AddCondition(cond); err != nil {
			return err
		}
	}
	return nil
}

// ChangeGuidelineStatusUseCase activates, deactivates or archives a guideline.
type ChangeGuidelineStatusUseCase struct {
	guidelines port.GuidelineRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewChangeGuidelineStatusUseCase wires dependencies.
func NewChangeGuidelineStatusUseCase(guidelines port.GuidelineRepository, logger *slog.Logger) *ChangeGuidelineStatusUseCase {
	return &ChangeGuidelineStatusUseCase{
		guidelines: guidelines,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Execute applies the command and saves the guideline.
func (uc *ChangeGuidelineStatusUseCase) Execute(
	ctx context.Context,
	req dto.ChangeGuidelineStatusRequest,
) (dto.GuidelineResponse, error) {
	g, err := uc.guidelines.FindByID(ctx, req.TenantID, req.GuidelineID)
	if err != nil {
		return dto.GuidelineResponse{}, fmt.Errorf("find guideline: %w", err)
	}

	now := uc.now()
	switch req.Command {
	case dto.GuidelineActivate:
		err = g.Activate(now)
	case dto.GuidelineDeactivate:
		err = g.Deactivate(now)
	case dto.GuidelineArchive:
		err = g.Archive(now)
	default:
		err = model.ErrGuidelineInvalidTransition.WithDescription("unknown command %q", req.Command)
	}
	if err != nil {
		return dto.GuidelineResponse{}, err
	}

	if err := uc.guidelines.Save(ctx, g); err != nil {
		return dto.GuidelineResponse{}, fmt.Errorf("save guideline: %w", err)
	}

	uc.logger.InfoContext(ctx, "guideline status changed",
		"tenant_id", g.TenantID(),
		"guideline_id", g.ID(),
		"command", req.Command,
		"status", g.Status().String(),
	)
	return toGuidelineResponse(g), nil
}
