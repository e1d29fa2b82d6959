package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/cdoyle/beacon/internal/event"
)

// EventStore provides an in-memory event.Writer for development/testing.
type EventStore struct {
	mu     sync.RWMutex
	events []event.AccessEvent

	// FailWith, when set, is returned by every Insert. Lets tests exercise
	// the fail-soft persistence path.
	FailWith error
}

// NewEventStore constructs an EventStore.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Insert appends the event.
func (s *EventStore) Insert(_ context.Context, evt event.AccessEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if evt.ID == "" {
		return errors.New("event id is required")
	}
	s.events = append(s.events, evt)
	return nil
}

// Events returns a copy of all stored events.
func (s *EventStore) Events() []event.AccessEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.AccessEvent, len(s.events))
	copy(out, s.events)
	return out
}
