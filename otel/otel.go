package otel

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanName is the name of the span wrapping header generation.
const SpanName = "secureheaders.generate"

// Tracer adapts OpenTelemetry tracing to the middleware tracer interface.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global OpenTelemetry provider.
func NewTracer(name string) *Tracer {
	if name == "" {
		name = "secureheaders"
	}
	return &Tracer{tracer: otel.Tracer(name)}
}

// NewTracerFromProvider creates a tracer from provider.
func NewTracerFromProvider(provider trace.TracerProvider, name string) *Tracer {
	if provider == nil {
		return NewTracer(name)
	}
	if name == "" {
		name = "secureheaders"
	}
	return &Tracer{tracer: provider.Tracer(name)}
}

// Start opens a span for generating the headers of req.
func (t *Tracer) Start(ctx context.Context, req *http.Request, mode string) (context.Context, func(err error)) {
	if ctx == nil {
		ctx = context.Background()
	}
	if t == nil || t.tracer == nil {
		return ctx, func(error) {}
	}

	spanCtx, span := t.tracer.Start(ctx, SpanName)

	attrs := []attribute.KeyValue{
		attribute.String("secureheaders.mode", mode),
	}
	if req != nil && req.URL != nil {
		attrs = append(attrs,
			attribute.String("http.method", req.Method),
			attribute.String("http.target", req.URL.Path),
		)
	}
	span.SetAttributes(attrs...)

	return spanCtx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
