package tracing

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/sarchlab/eventreport"

// OTelTracer turns every activity into an OpenTelemetry span. The span starts
// and ends at the times that the report recorded.
type OTelTracer struct {
	tracer trace.Tracer

	lock  sync.Mutex
	spans map[activityKey]trace.Span
}

// NewOTelTracer creates an OTelTracer that draws its tracer from tp.
func NewOTelTracer(tp trace.TracerProvider) *OTelTracer {
	return &OTelTracer{
		tracer: tp.Tracer(instrumentationName),
		spans:  make(map[activityKey]trace.Span),
	}
}

// StartActivity opens a span named after the activity.
func (t *OTelTracer) StartActivity(a Activity) {
	_, span := t.tracer.Start(context.Background(), a.Name,
		trace.WithTimestamp(a.StartTime),
		trace.WithAttributes(
			attribute.String("eventreport.report", a.Report),
			attribute.String("eventreport.session", a.Session),
			attribute.String("eventreport.activity_id", a.ID),
			attribute.String("eventreport.args", FormatArgs(a.Args)),
		))

	t.lock.Lock()
	t.spans[keyOf(a)] = span
	t.lock.Unlock()
}

// EndActivity ends the span of the activity.
func (t *OTelTracer) EndActivity(a Activity) {
	t.lock.Lock()
	span, ok := t.spans[keyOf(a)]
	delete(t.spans, keyOf(a))
	t.lock.Unlock()

	if !ok {
		return
	}

	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(a.EndTime))
}

// RecordError emits a span that carries the error. Errors are not tied to
// any activity, so the span stands on its own.
func (t *OTelTracer) RecordError(e Error) {
	_, span := t.tracer.Start(context.Background(), "error",
		trace.WithTimestamp(e.Time),
		trace.WithAttributes(
			attribute.String("eventreport.report", e.Report),
			attribute.String("eventreport.session", e.Session),
		))

	span.RecordError(e.Err, trace.WithTimestamp(e.Time))
	span.SetStatus(codes.Error, e.Err.Error())
	span.End(trace.WithTimestamp(e.Time))
}

// Terminate ends the spans of all the activities that never finished. They
// are marked as errors.
func (t *OTelTracer) Terminate() {
	t.lock.Lock()
	spans := t.spans
	t.spans = make(map[activityKey]trace.Span)
	t.lock.Unlock()

	now := time.Now()
	for _, span := range spans {
		span.SetStatus(codes.Error, "unfinished")
		span.End(trace.WithTimestamp(now))
	}
}
