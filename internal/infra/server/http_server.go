package server

import (
	"context"
	"net/http"
	"time"

	httptransport "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http"
	httpmw "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/middleware"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const httpShutdownTimeout = 5 * time.Second

// NewRouter assembles the middleware stack and mounts the API, /metrics and /health.
func NewRouter(
	ctx context.Context,
	cfg *config.Config,
	h *httptransport.Handler,
	m *metrics.AuthMetrics,
	logger *zap.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.Tracing())
	router.Use(httpmw.RequestLogger(logger, "/health", "/metrics"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(httpmw.RateLimitPerIP(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst, 10_000, time.Hour))

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	h.Register(router)
	return router
}

// ServeHTTP runs srv until ctx is done. TLS is used when both files are set.
func ServeHTTP(ctx context.Context, srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr), zap.Bool("tls", cfg.TLSEnabled()))
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS(cfg.HTTPSCertFile, cfg.HTTPSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve HTTP")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown HTTP")
	}
	logger.Info("HTTP server stopped")
	return nil
}
