package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/application/middleware"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/pkg/auth"
)

// UseCases are the application entry points served over gRPC, each already
// wrapped in its middleware chain.
type UseCases struct {
	CreateSubmission        middleware.Handler[dto.CreateSubmissionRequest, dto.SubmissionResponse]
	GetSubmission           middleware.Handler[dto.GetSubmissionRequest, dto.SubmissionResponse]
	ListSubmissions         middleware.Handler[dto.ListSubmissionsRequest, dto.ListSubmissionsResponse]
	TransitionSubmission    middleware.Handler[dto.TransitionSubmissionRequest, dto.SubmissionResponse]
	RunClearance            middleware.Handler[dto.RunClearanceRequest, dto.SubmissionResponse]
	ScoreSubmission         middleware.Handler[dto.ScoreSubmissionRequest, dto.ScoreSubmissionResponse]
	PriceSubmission         middleware.Handler[dto.PriceSubmissionRequest, dto.PriceSubmissionResponse]
	AssessExtractionQuality middleware.Handler[dto.AssessExtractionQualityRequest, dto.ExtractionQualityResponse]
	CreateGuideline         middleware.Handler[dto.CreateGuidelineRequest, dto.GuidelineResponse]
	ChangeGuidelineStatus   middleware.Handler[dto.ChangeGuidelineStatusRequest, dto.GuidelineResponse]
}

// UnderwritingHandler implements UnderwritingServiceServer. The tenant of
// every request is taken from the caller's token, never from the body.
type UnderwritingHandler struct {
	uc UseCases
}

// NewUnderwritingHandler creates a new gRPC underwriting handler.
func NewUnderwritingHandler(uc UseCases) *UnderwritingHandler {
	return &UnderwritingHandler{uc: uc}
}

var _ UnderwritingServiceServer = (*UnderwritingHandler)(nil)

// clearanceOverrideRoles may set aside a failed clearance.
var clearanceOverrideRoles = []string{auth.RoleSeniorUnderwriter, auth.RoleAdmin}

// CreateSubmission handles the gRPC CreateSubmission request.
func (h *UnderwritingHandler) CreateSubmission(ctx context.Context, req *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error) {
	return serve(ctx, req, h.uc.CreateSubmission, func(r *dto.CreateSubmissionRequest, tenant string) { r.TenantID = tenant })
}

// GetSubmission handles the gRPC GetSubmission request.
func (h *UnderwritingHandler) GetSubmission(ctx context.Context, req *dto.GetSubmissionRequest) (*dto.SubmissionResponse, error) {
	return serve(ctx, req, h.uc.GetSubmission, func(r *dto.GetSubmissionRequest, tenant string) { r.TenantID = tenant })
}

// ListSubmissions handles the gRPC ListSubmissions request.
func (h *UnderwritingHandler) ListSubmissions(ctx context.Context, req *dto.ListSubmissionsRequest) (*dto.ListSubmissionsResponse, error) {
	return serve(ctx, req, h.uc.ListSubmissions, func(r *dto.ListSubmissionsRequest, tenant string) { r.TenantID = tenant })
}

// TransitionSubmission handles the gRPC TransitionSubmission request.
// Overriding a failed clearance is reserved for senior underwriters, and the
// override is attributed to the caller.
func (h *UnderwritingHandler) TransitionSubmission(ctx context.Context, req *dto.TransitionSubmissionRequest) (*dto.SubmissionResponse, error) {
	if req != nil && req.Command == dto.CommandOverrideClearance {
		claims, ok := auth.ClaimsFromContext(ctx)
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "no claims in context")
		}
		if !claims.HasAnyRole(clearanceOverrideRoles...) {
			return nil, status.Errorf(codes.PermissionDenied, "required role(s): %v", clearanceOverrideRoles)
		}
		req.UserID = claims.UserID
	}
	return serve(ctx, req, h.uc.TransitionSubmission, func(r *dto.TransitionSubmissionRequest, tenant string) { r.TenantID = tenant })
}

// RunClearance handles the gRPC RunClearance request.
func (h *UnderwritingHandler) RunClearance(ctx context.Context, req *dto.RunClearanceRequest) (*dto.SubmissionResponse, error) {
	return serve(ctx, req, h.uc.RunClearance, func(r *dto.RunClearanceRequest, tenant string) { r.TenantID = tenant })
}

// ScoreSubmission handles the gRPC ScoreSubmission request.
func (h *UnderwritingHandler) ScoreSubmission(ctx context.Context, req *dto.ScoreSubmissionRequest) (*dto.ScoreSubmissionResponse, error) {
	return serve(ctx, req, h.uc.ScoreSubmission, func(r *dto.ScoreSubmissionRequest, tenant string) { r.TenantID = tenant })
}

// PriceSubmission handles the gRPC PriceSubmission request.
func (h *UnderwritingHandler) PriceSubmission(ctx context.Context, req *dto.PriceSubmissionRequest) (*dto.PriceSubmissionResponse, error) {
	return serve(ctx, req, h.uc.PriceSubmission, func(r *dto.PriceSubmissionRequest, tenant string) { r.TenantID = tenant })
}

// AssessExtractionQuality handles the gRPC AssessExtractionQuality request.
func (h *UnderwritingHandler) AssessExtractionQuality(ctx context.Context, req *dto.AssessExtractionQualityRequest) (*dto.ExtractionQualityResponse, error) {
	return serve(ctx, req, h.uc.AssessExtractionQuality, func(r *dto.AssessExtractionQualityRequest, tenant string) { r.TenantID = tenant })
}

// CreateGuideline handles the gRPC CreateGuideline request.
func (h *UnderwritingHandler) CreateGuideline(ctx context.Context, req *dto.CreateGuidelineRequest) (*dto.GuidelineResponse, error) {
	return serve(ctx, req, h.uc.CreateGuideline, func(r *dto.CreateGuidelineRequest, tenant string) { r.TenantID = tenant })
}

// ChangeGuidelineStatus handles the gRPC ChangeGuidelineStatus request.
func (h *UnderwritingHandler) ChangeGuidelineStatus(ctx context.Context, req *dto.ChangeGuidelineStatusRequest) (*dto.GuidelineResponse, error) {
	return serve(ctx, req, h.uc.ChangeGuidelineStatus, func(r *dto.ChangeGuidelineStatusRequest, tenant string) { r.TenantID = tenant })
}

// serve scopes req to the caller's tenant, runs the use case and converts
// its error into a gRPC status.
func serve[Req, Resp any](
	ctx context.Context,
	req *Req,
	h middleware.Handler[Req, Resp],
	setTenant func(*Req, string),
) (*Resp, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	tenant := auth.TenantFromContext(ctx)
	if tenant == "" {
		return nil, status.Error(codes.Unauthenticated, "token carries no tenant")
	}
	setTenant(req, tenant)

	resp, err := h(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// toStatus maps an application error onto a gRPC status. Domain errors keep
// their code in the message; anything else is reported as internal.
func toStatus(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	var de *model.DomainError
	if !errors.As(err, &de) {
		return status.Error(codes.Internal, "internal error")
	}

	code := codes.Internal
	switch {
	case errors.Is(err, model.ErrConcurrencyConflict), errors.Is(err, model.ErrGuidelineConcurrencyConflict):
		code = codes.Aborted
	case errors.Is(err, model.ErrGuidelineDuplicateName):
		code = codes.AlreadyExists
	case de.Kind == model.KindValidation:
		code = codes.InvalidArgument
	case de.Kind == model.KindNotFound:
		code = codes.NotFound
	case de.Kind == model.KindConflict:
		code = codes.FailedPrecondition
	case de.Kind == model.KindForbidden:
		code = codes.PermissionDenied
	}
	return status.Error(code, de.Error())
}
