// Package otel holds tracing helpers and the attribute keys shared by solarmap spans.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Attribute keys used on solarmap spans
const (
	AttrArgumentCount = attribute.Key("solarmap.arguments")
	AttrSourceCount   = attribute.Key("solarmap.sources")
	AttrResultKind    = attribute.Key("solarmap.result.kind")
	AttrMode          = attribute.Key("solarmap.mode")
	AttrMapKind       = attribute.Key("solarmap.map.kind")
	AttrURL           = attribute.Key("url.full")
	AttrCacheHit      = attribute.Key("solarmap.cache.hit")
	AttrRecordID      = attribute.Key("solarmap.record.id")
)

// StartSpan starts a span on tracer. With a nil tracer it returns ctx unchanged and a
// no-op span, so ending it never ends a span owned by the caller.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, noop.Span{}
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status text stays generic because
// error messages can carry file paths and connection details; the error
// itself is attached as a span event.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, "operation failed")
}
