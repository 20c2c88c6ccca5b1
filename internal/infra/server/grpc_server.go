package server

import (
	"context"
	"net"
	"time"

	grpctransport "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/grpc"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/grpc/middleware"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/config"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const grpcStopTimeout = 5 * time.Second

// NewGRPCServer builds the server with the interceptor chain, TLS when
// configured, and the Auth and Health services registered.
func NewGRPCServer(
	ctx context.Context,
	cfg *config.Config,
	auth grpctransport.AuthServer,
	hs healthpb.HealthServer,
	m *grpc_prometheus.ServerMetrics,
	logger *zap.Logger,
) (*grpc.Server, error) {
	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(middleware.ChainUnaryServer(ctx, logger, m, cfg.RateLimitRPS, cfg.RateLimitBurst)),
	}
	if cfg.TLSEnabled() {
		creds, err := credentials.NewServerTLSFromFile(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
		if err != nil {
			return nil, errors.Wrap(err, "load gRPC TLS credentials")
		}
		opts = append(opts, grpc.Creds(creds))
	}

	srv := grpc.NewServer(opts...)
	grpctransport.RegisterAuthServer(srv, auth)
	healthpb.RegisterHealthServer(srv, hs)
	if m != nil {
		m.InitializeMetrics(srv)
	}
	return srv, nil
}

// ServeGRPC serves on addr until ctx is done, then stops gracefully. If the
// graceful stop takes longer than grpcStopTimeout the server is stopped hard.
func ServeGRPC(ctx context.Context, srv *grpc.Server, addr string, logger *zap.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen %s", addr)
	}
	return serve(ctx, srv, lis, logger)
}

func serve(ctx context.Context, srv *grpc.Server, lis net.Listener, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gRPC server listening", zap.String("addr", lis.Addr().String()))
		errCh <- srv.Serve(lis)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return errors.Wrap(err, "serve gRPC")
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("stopping gRPC server")
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(grpcStopTimeout):
		srv.Stop()
	}
	logger.Info("gRPC server stopped")
	return nil
}
