package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "portal-service"})
	require.NoError(t, err)
	require.Nil(t, p.tp)
	require.NoError(t, p.Shutdown(context.Background()))
	require.NotNil(t, otel.GetTextMapPropagator())
}

func TestInit_Enabled(t *testing.T) {
	// the exporter dials lazily, so no collector is needed to build the provider
	p, err := Init(context.Background(), Config{
		Enabled:       true,
		ServiceName:   "portal-service",
		CollectorAddr: "127.0.0.1:4317",
	})
	require.NoError(t, err)
	require.NotNil(t, p.tp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = p.Shutdown(ctx)
}

func TestProvider_NilShutdown(t *testing.T) {
	var p *Provider
	require.NoError(t, p.Shutdown(context.Background()))
}
