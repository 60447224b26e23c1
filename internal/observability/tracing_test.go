package observability

import (
	"context"
	"testing"
	"time"

	"gabaychat/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStandardTracingProviderSupportsShutdown(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Endpoint:     "localhost:4317",
		Protocol:     "grpc",
		Insecure:     true,
		ServiceName:  "gabaychat-test",
		SamplingRate: 1.0,
	}

	tp, err := InitStandardTracing(cfg)
	require.NoError(t, err)

	// The binaries flush via this assertion; the SDK provider must satisfy it.
	shutdown, ok := tp.(interface{ Shutdown(context.Context) error })
	require.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown.Shutdown(ctx)
}

func TestInitStandardTracingUnsupportedProtocol(t *testing.T) {
	cfg := &config.OpenTelemetryConfig{
		Endpoint: "localhost:4317",
		Protocol: "carrier-pigeon",
	}

	_, err := InitStandardTracing(cfg)
	assert.Error(t, err)
}
