// Package sinks provides fault sink implementations.
package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/cdoyle/beacon/internal/faults"
)

// LogSink emits a structured log line per swallowed failure.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs the event using structured fields.
func (s *LogSink) Consume(_ context.Context, evt faults.Event) error {
	s.logger.Warn("pipeline fault",
		zap.String("stage", string(evt.Stage)),
		zap.String("project", evt.Project),
		zap.Time("at", evt.At),
		zap.Error(evt.Err),
	)
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
