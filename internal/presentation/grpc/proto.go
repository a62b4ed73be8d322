package grpc

// proto.go hand-writes the service descriptor for bib.underwriting.v1.UnderwritingService.
// Messages are the application DTOs, carried by the JSON codec.

import (
	"context"

	grpclib "google.golang.org/grpc"

	"github.com/bibbank/underwriting/internal/application/dto"
)

const serviceName = "bib.underwriting.v1.UnderwritingService"

// Full method names, used by interceptors that guard individual methods.
const (
	MethodCreateSubmission        = "/" + serviceName + "/CreateSubmission"
	MethodGetSubmission           = "/" + serviceName + "/GetSubmission"
	MethodListSubmissions         = "/" + serviceName + "/ListSubmissions"
	MethodTransitionSubmission    = "/" + serviceName + "/TransitionSubmission"
	MethodRunClearance            = "/" + serviceName + "/RunClearance"
	MethodScoreSubmission         = "/" + serviceName + "/ScoreSubmission"
	MethodPriceSubmission         = "/" + serviceName + "/PriceSubmission"
	MethodAssessExtractionQuality = "/" + serviceName + "/AssessExtractionQuality"
	MethodCreateGuideline         = "/" + serviceName + "/CreateGuideline"
	MethodChangeGuidelineStatus   = "/" + serviceName + "/ChangeGuidelineStatus"
)

// UnderwritingServiceServer is the server API for UnderwritingService.
type UnderwritingServiceServer interface {
	CreateSubmission(context.Context, *dto.CreateSubmissionRequest) (*dto.SubmissionResponse, error)
	GetSubmission(context.Context, *dto.GetSubmissionRequest) (*dto.SubmissionResponse, error)
	ListSubmissions(context.Context, *dto.ListSubmissionsRequest) (*dto.ListSubmissionsResponse, error)
	TransitionSubmission(context.Context, *dto.TransitionSubmissionRequest) (*dto.SubmissionResponse, error)
	RunClearance(context.Context, *dto.RunClearanceRequest) (*dto.SubmissionResponse, error)
	ScoreSubmission(context.Context, *dto.ScoreSubmissionRequest) (*dto.ScoreSubmissionResponse, error)
	PriceSubmission(context.Context, *dto.PriceSubmissionRequest) (*dto.PriceSubmissionResponse, error)
	AssessExtractionQuality(context.Context, *dto.AssessExtractionQualityRequest) (*dto.ExtractionQualityResponse, error)
	CreateGuideline(context.Context, *dto.CreateGuidelineRequest) (*dto.GuidelineResponse, error)
	ChangeGuidelineStatus(context.Context, *dto.ChangeGuidelineStatusRequest) (*dto.GuidelineResponse, error)
}

// RegisterUnderwritingServiceServer registers srv with the gRPC server.
func RegisterUnderwritingServiceServer(s *grpclib.Server, srv UnderwritingServiceServer) {
	s.RegisterService(&underwritingServiceDesc, srv)
}

var underwritingServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*UnderwritingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		unary("CreateSubmission", UnderwritingServiceServer.CreateSubmission),
		unary("GetSubmission", UnderwritingServiceServer.GetSubmission),
		unary("ListSubmissions", UnderwritingServiceServer.ListSubmissions),
		unary("TransitionSubmission", UnderwritingServiceServer.TransitionSubmission),
		unary("RunClearance", UnderwritingServiceServer.RunClearance),
		unary("ScoreSubmission", UnderwritingServiceServer.ScoreSubmission),
		unary("PriceSubmission", UnderwritingServiceServer.PriceSubmission),
		unary("AssessExtractionQuality", UnderwritingServiceServer.AssessExtractionQuality),
		unary("CreateGuideline", UnderwritingServiceServer.CreateGuideline),
		unary("ChangeGuidelineStatus", UnderwritingServiceServer.ChangeGuidelineStatus),
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "bib/underwriting/v1/underwriting.proto",
}

// unary builds the MethodDesc that decodes Req, runs the interceptor chain
// and dispatches to call.
func unary[Req, Resp any](method string, call func(UnderwritingServiceServer, context.Context, *Req) (*Resp, error)) grpclib.MethodDesc {
	fullMethod := "/" + serviceName + "/" + method
	return grpclib.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(UnderwritingServiceServer), ctx, in)
			}
			info := &grpclib.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(UnderwritingServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
