package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/underwriting/pkg/auth"
	"github.com/bibbank/underwriting/pkg/tlsutil"
)

// healthService is the name reported by the gRPC health server.
const healthService = "underwriting-service"

// guidelineAdminMethods change underwriting guidelines.
var guidelineAdminMethods = []string{MethodCreateGuideline, MethodChangeGuidelineStatus}

// ServerOptions configures transport concerns of the gRPC server.
type ServerOptions struct {
	TLS        tlsutil.ServerConfig
	Reflection bool
}

// Server wraps a gRPC server with the underwriting handler registered.
type Server struct {
	gs      *grpc.Server
	health  *health.Server
	handler *UnderwritingHandler
	logger  *slog.Logger
}

// NewServer creates and configures the gRPC server.
func NewServer(handler *UnderwritingHandler, logger *slog.Logger, jwtService *auth.JWTService, opts ServerOptions) (*Server, error) {
	// Add auth interceptor, skipping health check methods.
	authInterceptor := auth.UnaryAuthInterceptor(jwtService, []string{
		"/grpc.health.v1.Health/Check",
		"/grpc.health.v1.Health/Watch",
	})

	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			authInterceptor,
			auth.RequireRole(guidelineAdminMethods, auth.RoleAdmin, auth.RoleSeniorUnderwriter),
		),
	}

	if opts.TLS.Enabled() {
		creds, err := tlsutil.ServerCredentials(opts.TLS)
		if err != nil {
			return nil, fmt.Errorf("load TLS credentials: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(creds))
		logger.Info("gRPC TLS enabled", "cert", opts.TLS.CertFile, "mtls", opts.TLS.ClientCAFile != "")
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	gs := grpc.NewServer(serverOpts...)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(healthService, healthpb.HealthCheckResponse_SERVING)

	if opts.Reflection {
		reflection.Register(gs)
	}

	RegisterUnderwritingServiceServer(gs, handler)

	return &Server{
		gs:      gs,
		health:  healthSrv,
		handler: handler,
		logger:  logger,
	}, nil
}

// Serve starts the gRPC server on the specified address.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(lis net.Listener) error {
	s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
	return s.gs.Serve(lis)
}

// GracefulStop marks the service as not serving and stops the server gracefully.
func (s *Server) GracefulStop() {
	s.logger.Info("gRPC server shutting down")
	s.health.SetServingStatus(healthService, healthpb.HealthCheckResponse_NOT_SERVING)
	s.gs.GracefulStop()
}
