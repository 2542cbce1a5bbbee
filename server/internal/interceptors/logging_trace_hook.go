package interceptors

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// TraceHook tags log entries with the trace and span of the entry's context. Loggers must be used through
// WithContext(ctx) for the ids to show up.
type TraceHook struct{}

func (h *TraceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *TraceHook) Fire(entry *logrus.Entry) error {
	if entry.Context == nil {
		return nil
	}

	sc := trace.SpanContextFromContext(entry.Context)
	if !sc.IsValid() {
		return nil
	}

	entry.Data["trace_id"] = sc.TraceID().String()
	// ingest and retrieval log from child spans of the otelhttp request span
	entry.Data["span_id"] = sc.SpanID().String()

	return nil
}
