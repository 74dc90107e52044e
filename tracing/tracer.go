// Package tracing turns the events of a report into traces.
package tracing

// A Tracer can collect activity traces.
type Tracer interface {
	StartActivity(a Activity)
	EndActivity(a Activity)
	RecordError(e Error)
}
