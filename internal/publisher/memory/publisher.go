// Package memory contains an in-memory publisher implementation for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/stromning/scholartrend/internal/publisher"
)

// Publisher stores published events for inspection.
type Publisher struct {
	mu     sync.RWMutex
	events []publisher.RunEvent
}

// New returns a memory Publisher.
func New() *Publisher {
	return &Publisher{}
}

// Publish records the event and returns a pseudo message ID.
func (p *Publisher) Publish(_ context.Context, event publisher.RunEvent) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return fmt.Sprintf("memory-%d", len(p.events)), nil
}

// Events returns the recorded publishes.
func (p *Publisher) Events() []publisher.RunEvent {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]publisher.RunEvent, len(p.events))
	copy(out, p.events)
	return out
}
