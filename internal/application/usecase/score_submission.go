package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/pkg/observability"
)

// ScoreSubmissionUseCase runs appetite, winnability and data-quality scoring
// for a submission and records the scores on it.
type ScoreSubmissionUseCase struct {
	submissions port.SubmissionRepository
	guidelines  port.GuidelineRepository
	appetite    *service.AppetiteScorer
	winnability *service.WinnabilityScorer
	dataQuality *service.DataQualityScorer
	metrics     *observability.ScoringMetrics
	logger      *slog.Logger
	now         func() time.Time
}

// NewScoreSubmissionUseCase wires dependencies. metrics may be nil.
func NewScoreSubmissionUseCase(
	submissions port.SubmissionRepository,
	guidelines port.GuidelineRepository,
	cfg service.ScoringConfig,
	metrics *observability.ScoringMetrics,
	logger *slog.Logger,
) *ScoreSubmissionUseCase {
	return &ScoreSubmissionUseCase{
		submissions: submissions,
		guidelines:  guidelines,
		appetite:    service.NewAppetiteScorer(cfg.Appetite),
		winnability: service.NewWinnabilityScorer(cfg.Winnability),
		dataQuality: service.NewDataQualityScorer(cfg.DataQuality),
		metrics:     metrics,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Execute scores the submission and saves the recorded scores.
func (uc *ScoreSubmissionUseCase) Execute(
	ctx context.Context,
	req dto.ScoreSubmissionRequest,
) (dto.ScoreSubmissionResponse, error) {
	now := uc.now()
	asOf := now
	if req.AsOf != nil {
		asOf = *req.AsOf
	}

	// 1. Load the submission and the guidelines that apply to it.
	sub, err := uc.submissions.FindByID(ctx, req.TenantID, req.SubmissionID)
	if err != nil {
		return dto.ScoreSubmissionResponse{}, fmt.Errorf("find submission: %w", err)
	}
	guidelines, err := applicableGuidelines(ctx, uc.guidelines, sub)
	if err != nil {
		return dto.ScoreSubmissionResponse{}, err
	}

	// 2. Score.
	appetite := uc.appetite.Score(sub, guidelines)
	winnability := uc.winnability.Score(sub, asOf)
	quality := uc.dataQuality.ScoreSubmission(sub)

	// 3. Record and persist.
	if err := sub.RecordScores(appetite.OverallScore, winnability.OverallScore, quality.OverallScore, now); err != nil {
		return dto.ScoreSubmissionResponse{}, err
	}
	if err := uc.submissions.Save(ctx, sub); err != nil {
		return dto.ScoreSubmissionResponse{}, fmt.Errorf("save submission: %w", err)
	}

	uc.metrics.Record(ctx, "appetite", appetite.OverallScore, appetiteVerdict(appetite))
	uc.metrics.Record(ctx, "winnability", winnability.OverallScore, winnabilityVerdict(winnability))
	uc.metrics.Record(ctx, "data_quality", quality.OverallScore, qualityVerdict(quality))

	uc.logger.InfoContext(ctx, "submission scored",
		"tenant_id", sub.TenantID(),
		"submission_id", sub.ID(),
		"guidelines", len(guidelines),
		"appetite_score", appetite.OverallScore,
		"winnability_score", winnability.OverallScore,
		"data_quality_score", quality.OverallScore,
	)
	return dto.ScoreSubmissionResponse{
		SubmissionID: sub.ID(),
		Appetite:     appetite,
		Winnability:  winnability,
		DataQuality:  quality,
	}, nil
}

// applicableGuidelines collects the active guidelines that admit any of the
// submission's coverages, in the insured's state and industry. A submission
// without coverages only sees guidelines with no coverage filter.
func applicableGuidelines(ctx context.Context, repo port.GuidelineRepository, sub *model.Submission) ([]*model.Guideline, error) {
	state := sub.Insured().Address().State()
	naics := sub.Insured().Industry().NaicsCode()

	coverageTypes := []string{""}
	if covs := sub.Coverages(); len(covs) > 0 {
		coverageTypes = coverageTypes[:0]
		for _, c := range covs {
			coverageTypes = append(coverageTypes, c.Type().String())
		}
	}

	var out []*model.Guideline
	seen := make(map[string]bool)
	for _, ct := range coverageTypes {
		found, err := repo.FindApplicable(ctx, sub.TenantID(), ct, state, naics)
		if err != nil {
			return nil, fmt.Errorf("find applicable guidelines: %w", err)
		}
		for _, g := range found {
			if !seen[g.ID()] {
				seen[g.ID()] = true
				out = append(out, g)
			}
		}
	}
	return out, nil
}

func appetiteVerdict(r service.AppetiteScoreResult) string {
	switch {
	case len(r.DeclineReasons) > 0:
		return "decline"
	case r.RequiresReferral:
		return "referral"
	case r.IsInAppetite:
		return "in_appetite"
	default:
		return "out_of_appetite"
	}
}

func winnabilityVerdict(r service.WinnabilityScoreResult) string {
	switch {
	case r.IsHighWinnability:
		return "high"
	case r.NeedsAttention:
		return "needs_attention"
	default:
		return "moderate"
	}
}

func qualityVerdict(r service.DataQualityScoreResult) string {
	switch {
	case r.IsHighQuality:
		return "high_quality"
	case r.RequiresReview:
		return "requires_review"
	default:
		return "acceptable"
	}
}
