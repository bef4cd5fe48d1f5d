// Package trigger re-runs batches when input files change or on a schedule.
// Batches never overlap: each policy runs at most one batch at a time.
package trigger

import (
	"context"
	"sync"
)

// RunFunc runs one batch. A non-nil error is an unexpected failure and stops
// the trigger that called it.
type RunFunc func(ctx context.Context) error

// Guard admits one batch at a time.
type Guard struct {
	mu      sync.Mutex
	running bool
}

// TryLock marks a batch as running. It returns false if one already is.
func (g *Guard) TryLock() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running {
		return false
	}

	g.running = true

	return true
}

// Unlock marks the running batch as finished. Must follow a successful TryLock.
func (g *Guard) Unlock() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.running = false
}
