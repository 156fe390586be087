package obs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/joliday/backend/internal/obs"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := obs.InitTracer(context.Background(), obs.TracerConfig{ServiceName: "joliday-api"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracer_Enabled(t *testing.T) {
	// The gRPC client connects lazily, so no collector is needed to start up.
	shutdown, err := obs.InitTracer(context.Background(), obs.TracerConfig{
		Endpoint:    "127.0.0.1:4317",
		ServiceName: "joliday-api",
		Environment: "test",
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestResource(t *testing.T) {
	res := obs.Resource(obs.TracerConfig{ServiceName: "joliday-api", Environment: "dev"})

	v, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "joliday-api", v.AsString())

	v, ok = res.Set().Value(semconv.DeploymentEnvironmentKey)
	require.True(t, ok)
	assert.Equal(t, "dev", v.AsString())
}
