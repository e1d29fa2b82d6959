// Package memory provides an in-memory Publisher for development/testing.
package memory

import (
	"context"
	"sync"

	"github.com/cdoyle/beacon/internal/event"
)

// Publisher records published events.
type Publisher struct {
	mu     sync.Mutex
	events []event.AccessEvent

	// FailWith, when set, is returned by every Publish.
	FailWith error
}

// New constructs a Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event.
func (p *Publisher) Publish(_ context.Context, evt event.AccessEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailWith != nil {
		return p.FailWith
	}
	p.events = append(p.events, evt)
	return nil
}

// Events returns a copy of the published events.
func (p *Publisher) Events() []event.AccessEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.AccessEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Close implements Publisher; it performs no action.
func (p *Publisher) Close() error {
	return nil
}
