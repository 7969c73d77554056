package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func TestZeroValueMetricsAreNoops(t *testing.T) {
	m := &Metrics{}
	ctx := context.Background()

	// None of these may panic on the zero value.
	m.RecordPollCycle(ctx, StatusSuccess, time.Second)
	m.RecordNotification(ctx, "updated")
	m.RecordOAuth(ctx, "refresh", StatusError)
	m.RecordIntentParse(ctx, "create", StatusSuccess)
	m.RecordMessage(ctx, StatusSuccess)
}

func TestNewMetrics(t *testing.T) {
	mp := sdkmetric.NewMeterProvider()
	defer mp.Shutdown(context.Background())

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, m)

	ctx := context.Background()
	m.RecordPollCycle(ctx, StatusSuccess, 250*time.Millisecond)
	m.RecordNotification(ctx, "deleted")
	m.RecordOAuth(ctx, "exchange", StatusSuccess)
	m.RecordIntentParse(ctx, "summarize", StatusSuccess)
	m.RecordMessage(ctx, StatusError)
}

func TestNewProviderDisabled(t *testing.T) {
	p, err := NewProvider(context.Background(), "xo-assistance", "test", false)
	require.NoError(t, err)
	assert.NotNil(t, p.Metrics(), "disabled provider still returns a usable recorder")
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderEnabled(t *testing.T) {
	p, err := NewProvider(context.Background(), "xo-assistance", "test", true)
	require.NoError(t, err)
	assert.NotNil(t, p.Metrics())
	assert.NotNil(t, p.Handler())
	assert.NoError(t, p.Shutdown(context.Background()))
}
