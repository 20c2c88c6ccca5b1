package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httptransport "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/health"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/metrics"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if cfg.AllowedOrigins == nil {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	h := httptransport.NewHandler(nil, nil, health.NewChecker(time.Second),
		httptransport.CookieConfig{Name: "refresh_token", MaxAge: time.Hour}, zap.NewNop())
	return NewRouter(ctx, cfg, h, metrics.New(), zap.NewNop())
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := testRouter(t, &config.Config{RateLimitRPS: 100, RateLimitBurst: 100})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := testRouter(t, &config.Config{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		RateLimitRPS:     100,
		RateLimitBurst:   100,
	})

	req := httptest.NewRequest(http.MethodOptions, "/login/refresh", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_RateLimited(t *testing.T) {
	r := testRouter(t, &config.Config{RateLimitRPS: 1, RateLimitBurst: 1})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		codes = append(codes, w.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestServeHTTP_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- ServeHTTP(ctx, srv, &config.Config{}, zap.NewNop()) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * httpShutdownTimeout):
		t.Fatal("HTTP server did not stop")
	}
}
