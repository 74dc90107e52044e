package tracing

import "go.uber.org/zap"

// LogTracer writes one log line per activity event.
type LogTracer struct {
	logger   *zap.Logger
	inflight *inflight
}

// NewLogTracer creates a LogTracer. Starts are logged at debug level,
// finishes at info level and errors at warn level.
func NewLogTracer(logger *zap.Logger) *LogTracer {
	return &LogTracer{
		logger:   logger,
		inflight: newInflight(),
	}
}

// StartActivity logs the start of an activity.
func (t *LogTracer) StartActivity(a Activity) {
	t.inflight.start(a)

	t.logger.Debug("activity started",
		zap.String("report", a.Report),
		zap.String("id", a.ID),
		zap.String("name", a.Name),
		zap.Any("args", a.Args))
}

// EndActivity logs the end of an activity together with its duration.
func (t *LogTracer) EndActivity(a Activity) {
	original, ok := t.inflight.finish(a)
	if !ok {
		return
	}

	t.logger.Info("activity finished",
		zap.String("report", original.Report),
		zap.String("id", original.ID),
		zap.String("name", original.Name),
		zap.Duration("duration", original.Duration()))
}

// RecordError logs a failure.
func (t *LogTracer) RecordError(e Error) {
	t.logger.Warn("activity error",
		zap.String("report", e.Report),
		zap.Error(e.Err))
}
