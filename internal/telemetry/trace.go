// Package telemetry traces scarepick with OpenTelemetry and exports spans
// over OTLP/HTTP.
package telemetry

import (
	"context"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "play")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)
	return ctx, span
}

// StartQuizSpan creates a span for one operation on a quiz session.
func StartQuizSpan(ctx context.Context, operation, sessionID string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("quiz")
	ctx, span := tracer.Start(ctx, "quiz."+operation)

	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("session.id", sessionID),
		attribute.String("component", "quiz"),
	)
	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records err on span and sets error status. A nil error is
// ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}

// HTTPMiddleware starts a server span for every request. Spans are named
// after the method until RenameSpan gives them the matched route.
func HTTPMiddleware(service string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(service,
		otelhttp.WithTracerProvider(GetTracerProvider()),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}

// RenameSpan sets the name of the span carried by ctx, if any.
func RenameSpan(ctx context.Context, name string) {
	trace.SpanFromContext(ctx).SetName(name)
}
