// Package publisher defines the optional downstream fan-out of persisted
// access events.
package publisher

import (
	"context"

	"github.com/cdoyle/beacon/internal/event"
)

// Publisher forwards a persisted event to a message bus for downstream
// consumers. Delivery is best-effort and never affects the request
// outcome.
type Publisher interface {
	Publish(ctx context.Context, evt event.AccessEvent) error
	Close() error
}

// NoOp discards every event.
type NoOp struct{}

// Publish implements Publisher by doing nothing.
func (NoOp) Publish(context.Context, event.AccessEvent) error {
	return nil
}

// Close implements Publisher by doing nothing.
func (NoOp) Close() error {
	return nil
}
