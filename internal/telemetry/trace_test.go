package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// setupTestTracer installs a provider that keeps spans in memory.
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	res, err := createResource(DefaultConfig())
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providerMu.Lock()
	previous := globalProvider
	globalProvider = tp
	providerMu.Unlock()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		providerMu.Lock()
		globalProvider = previous
		providerMu.Unlock()
	})
	return exporter
}

func attrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestStartCommandSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "play")
	require.NotNil(t, span)
	assert.NotEqual(t, ctx, spanCtx, "span context is propagated")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "command.play", spans[0].Name)
	got := attrs(spans[0])
	assert.Equal(t, "play", got["command"].AsString())
	assert.Equal(t, "cli", got["component"].AsString())
}

func TestStartQuizSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartQuizSpan(context.Background(), "select", "abc")
	RecordSuccess(span, attribute.Bool("moved", true))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "quiz.select", spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	got := attrs(spans[0])
	assert.Equal(t, "abc", got["session.id"].AsString())
	assert.True(t, got["moved"].AsBool())
}

func TestRecordError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "serve")
	RecordError(span, errors.New("address in use"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, "address in use", spans[0].Status.Description)
	assert.True(t, attrs(spans[0])["error"].AsBool())
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func TestRecordErrorWithNil(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "play")
	RecordError(span, nil)
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Empty(t, spans[0].Events)
}

func TestSpanContextPropagation(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := StartCommandSpan(context.Background(), "serve")
	_, child := StartQuizSpan(ctx, "restart", "s1")
	child.End()
	parent.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
}

func TestHTTPMiddlewareRenamesSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	handler := HTTPMiddleware("scarepick")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RenameSpan(r.Context(), "GET /api/v1/movies/{id}")
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/movies/alien-1979", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/movies/{id}", spans[0].Name)
}
