// Package faults captures swallowed pipeline failures into observability
// sinks. The caller-visible contract is fail-soft, so errors from the
// cache, the store, and the notifier are reported here instead of in the
// HTTP response.
package faults

import (
	"context"
	"time"
)

// Stage names the pipeline step a fault occurred in.
type Stage string

// Pipeline stages.
const (
	StageResolve Stage = "resolve"
	StagePersist Stage = "persist"
	StageNotify  Stage = "notify"
	StagePublish Stage = "publish"
	StagePanic   Stage = "panic"
)

// Event describes one swallowed failure.
type Event struct {
	Stage   Stage
	Project string
	Err     error
	At      time.Time
}

// Sink receives fault events. Implementations must tolerate concurrent
// Close while the hub drains.
type Sink interface {
	Consume(ctx context.Context, evt Event) error
	Close(ctx context.Context) error
}
