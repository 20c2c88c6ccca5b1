package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	myPostgresRepo "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/db/postgres"
	myRedisRepo "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/db/redis"
	myGrpc "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/grpc"
	myHttp "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/password"
	appsvc "github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/health"
	lg "github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/log"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/metrics"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/server"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/telemetry"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const version = "v1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		lg.Must("info", "console").Fatal("failed to load config", zap.Error(err))
	}

	zapLog := lg.Must(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = zapLog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.OtelEnabled,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: version,
		CollectorAddr:  cfg.OtelCollectorAddr,
	})
	if err != nil {
		zapLog.Fatal("failed to init tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			zapLog.Error("tracer shutdown", zap.Error(err))
		}
	}()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	checker := health.NewChecker(2 * time.Second)
	checker.Add("database", health.Database(db))

	var registry repo.RefreshRegistry
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		tokenRepo := myRedisRepo.NewRedisTokenRepo(redisCli)
		checker.Add("redis", health.Redis(tokenRepo))
		if cfg.RefreshSingleUse {
			registry = tokenRepo
		}
	}
	zapLog.Info("refresh tokens", zap.Bool("single_use", registry != nil))

	jwtUtil, err := jwt.NewJWTUtil(cfg)
	if err != nil {
		zapLog.Fatal("failed to init JWT util", zap.Error(err))
	}

	authMetrics := metrics.New()
	grpcMetrics := grpc_prometheus.NewServerMetrics()
	grpcMetrics.EnableHandlingTimeHistogram()
	authMetrics.Registry().MustRegister(grpcMetrics)

	validate := dto.NewValidator()
	hasher := password.NewHasher(cfg.PasswordPepper, nil)
	userRepo := myPostgresRepo.NewPostgresUserRepo(db)

	authSvc := appsvc.New(userRepo, registry, jwtUtil, hasher, authMetrics, validate)
	userSvc := appsvc.NewUserService(userRepo, hasher, authMetrics, validate)

	httpHandler := myHttp.NewHandler(authSvc, userSvc, checker, myHttp.CookieConfig{
		Name:   cfg.RefreshCookieName,
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.RefreshTokenTTL,
	}, zapLog)
	router := server.NewRouter(ctx, cfg, httpHandler, authMetrics, zapLog)
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcSrv, err := server.NewGRPCServer(ctx, cfg,
		myGrpc.NewHandler(authSvc, zapLog),
		myGrpc.NewHealthServer(checker, zapLog),
		grpcMetrics,
		zapLog,
	)
	if err != nil {
		zapLog.Fatal("failed to build gRPC server", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ServeGRPC(gctx, grpcSrv, cfg.GRPCAddress, zapLog)
	})
	g.Go(func() error {
		return server.ServeHTTP(gctx, httpSrv, cfg, zapLog)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
	zapLog.Info("shutdown complete")
}
