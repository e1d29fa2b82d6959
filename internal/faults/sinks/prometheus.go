package sinks

import (
	"context"

	"github.com/cdoyle/beacon/internal/faults"
	"github.com/cdoyle/beacon/internal/metrics"
)

// MetricsSink counts swallowed failures by pipeline stage.
type MetricsSink struct{}

// NewMetricsSink constructs a MetricsSink.
func NewMetricsSink() *MetricsSink {
	metrics.Init()
	return &MetricsSink{}
}

// Consume increments the fault counter.
func (s *MetricsSink) Consume(_ context.Context, evt faults.Event) error {
	metrics.ObserveFault(string(evt.Stage))
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *MetricsSink) Close(context.Context) error {
	return nil
}
