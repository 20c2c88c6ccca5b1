package grpc

import (
	"context"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/health"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthServer answers grpc.health.v1.Health/Check from the dependency probes.
// The empty service name and AuthServiceName are known; anything else is NotFound.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	checker *health.Checker
	log     *zap.Logger
}

func NewHealthServer(checker *health.Checker, log *zap.Logger) *HealthServer {
	return &HealthServer{checker: checker, log: log}
}

func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if svc := req.GetService(); svc != "" && svc != AuthServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", svc)
	}

	failed := s.checker.Run(ctx)
	for name, err := range failed {
		s.log.Warn("gRPC health probe failed", zap.String("check", name), zap.Error(err))
	}
	if len(failed) > 0 {
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
