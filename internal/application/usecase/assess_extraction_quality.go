package usecase

import (
	"context"
	"log/slog"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/service"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
	"github.com/bibbank/underwriting/pkg/observability"
)

// AssessExtractionQualityUseCase grades the output of an upstream document
// processing job. Nothing is persisted.
type AssessExtractionQualityUseCase struct {
	scorer  *service.DataQualityScorer
	metrics *observability.ScoringMetrics
	logger  *slog.Logger
}

// NewAssessExtractionQualityUseCase wires dependencies. metrics may be nil.
func NewAssessExtractionQualityUseCase(
	cfg service.DataQualityConfig,
	metrics *observability.ScoringMetrics,
	logger *slog.Logger,
) *AssessExtractionQualityUseCase {
	return &AssessExtractionQualityUseCase{
		scorer:  service.NewDataQualityScorer(cfg),
		metrics: metrics,
		logger:  logger,
	}
}

// Execute converts the job and scores it.
func (uc *AssessExtractionQualityUseCase) Execute(
	ctx context.Context,
	req dto.AssessExtractionQualityRequest,
) (dto.ExtractionQualityResponse, error) {
	job := model.ProcessingJob{ID: req.JobID, SubmissionID: req.SubmissionID}
	for i, d := range req.Documents {
		docType, err := valueobject.NewDocumentType(d.Type)
		if err != nil {
			return dto.ExtractionQualityResponse{}, model.ErrInvalidRequest.WithDescription("document %d: %v", i+1, err)
		}
		status, err := valueobject.NewDocumentStatus(d.Status)
		if err != nil {
			return dto.ExtractionQualityResponse{}, model.ErrInvalidRequest.WithDescription("document %d: %v", i+1, err)
		}
		doc := model.Document{ID: d.ID, FileName: d.FileName, Type: docType, Status: status}
		for _, f := range d.Fields {
			doc.Fields = append(doc.Fields, model.ExtractedField{Name: f.Name, Value: f.Value, Confidence: f.Confidence})
		}
		job.Documents = append(job.Documents, doc)
	}

	quality := uc.scorer.ScoreJob(job)
	uc.metrics.Record(ctx, "extraction_quality", quality.OverallScore, qualityVerdict(quality))

	uc.logger.InfoContext(ctx, "extraction quality assessed",
		"tenant_id", req.TenantID,
		"job_id", req.JobID,
		"documents", len(job.Documents),
		"overall_score", quality.OverallScore,
		"issues", len(quality.Issues),
	)
	return dto.ExtractionQualityResponse{JobID: req.JobID, Quality: quality}, nil
}
