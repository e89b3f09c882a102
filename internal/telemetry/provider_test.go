package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/felixgeelhaar/scarepick/internal/log"
)

func TestInitProviderDisabled(t *testing.T) {
	ctx := context.Background()
	shutdown, err := InitProvider(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.IsType(t, noop.TracerProvider{}, GetTracerProvider())
	assert.NoError(t, shutdown(ctx))
}

func TestInitProviderEnabled(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.Endpoint = "collector.example.com:4318"
	config.SampleRate = 0.5

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, config)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = InitProvider(ctx, DefaultConfig())
	})

	assert.IsType(t, &sdktrace.TracerProvider{}, GetTracerProvider())

	// Nothing was recorded, so shutdown never reaches the collector.
	assert.NoError(t, shutdown(ctx))
}

func TestShutdownForceFlush(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Shutdown(ctx))
	assert.NoError(t, ForceFlush(ctx))
}

type flakyExporter struct {
	calls    atomic.Int32
	failures atomic.Int32
}

func (f *flakyExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	if f.calls.Add(1) <= f.failures.Load() {
		return errors.New("collector unavailable")
	}
	return nil
}

func (f *flakyExporter) Shutdown(context.Context) error { return nil }

func TestBreakerExporterPassesThrough(t *testing.T) {
	exp := &flakyExporter{}
	be := newBreakerExporter(exp, time.Minute)

	require.NoError(t, be.ExportSpans(context.Background(), nil))
	assert.Equal(t, int32(1), exp.calls.Load())
	assert.Equal(t, gobreaker.StateClosed, be.breaker.State())
	assert.NoError(t, be.Shutdown(context.Background()))
}

func TestBreakerExporterOpensAfterConsecutiveFailures(t *testing.T) {
	prev := log.DefaultLogger()
	log.SetDefaultLogger(log.Discard())
	t.Cleanup(func() { log.SetDefaultLogger(prev) })

	exp := &flakyExporter{}
	exp.failures.Store(1 << 30)
	be := newBreakerExporter(exp, 20*time.Millisecond)

	for i := 0; i < 5; i++ {
		assert.EqualError(t, be.ExportSpans(context.Background(), nil), "collector unavailable")
	}
	assert.Equal(t, gobreaker.StateOpen, be.breaker.State())

	err := be.ExportSpans(context.Background(), nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(5), exp.calls.Load(), "open circuit skips the exporter")

	// After the open period a trial export goes through and closes it.
	exp.failures.Store(0)
	assert.Eventually(t, func() bool {
		return be.ExportSpans(context.Background(), nil) == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, be.breaker.State())
}

func TestBreakerExporterSuccessResetsFailures(t *testing.T) {
	exp := &flakyExporter{}
	exp.failures.Store(4)
	be := newBreakerExporter(exp, time.Minute)

	for i := 0; i < 4; i++ {
		assert.Error(t, be.ExportSpans(context.Background(), nil))
	}
	require.NoError(t, be.ExportSpans(context.Background(), nil))

	exp.calls.Store(0)
	exp.failures.Store(4)
	for i := 0; i < 4; i++ {
		assert.Error(t, be.ExportSpans(context.Background(), nil))
	}
	assert.Equal(t, gobreaker.StateClosed, be.breaker.State(), "failures must be consecutive")
}
