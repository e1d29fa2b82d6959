// Package memory provides a recording Notifier for tests.
package memory

import (
	"context"
	"sync"

	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/project"
)

// Call captures one Notify invocation.
type Call struct {
	Dest  project.Notification
	Event event.AccessEvent
}

// Notifier records every call; optionally fails.
type Notifier struct {
	mu    sync.Mutex
	calls []Call

	// FailWith, when set, is returned by every Notify.
	FailWith error
}

// New constructs a Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Notify records the call.
func (n *Notifier) Notify(_ context.Context, dest project.Notification, evt event.AccessEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.FailWith != nil {
		return n.FailWith
	}
	n.calls = append(n.calls, Call{Dest: dest, Event: evt})
	return nil
}

// Calls returns a copy of the recorded calls.
func (n *Notifier) Calls() []Call {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Call, len(n.calls))
	copy(out, n.calls)
	return out
}
