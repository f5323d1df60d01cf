// Package tabs tracks live page contexts and queues router instructions for
// them. Each page context long-polls for its next instruction.
package tabs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// ErrNoReceiver is returned when no page context is registered under an id.
var ErrNoReceiver = errors.New("no page context for id")

type tab struct {
	inbox      messages.Message // latest undelivered instruction
	notify     chan struct{}    // signalled when inbox is filled
	gone       chan struct{}    // closed on unregister
	lastSeen   time.Time
	registered time.Time
	polling    int
}

// Registry is safe for concurrent use.
type Registry struct {
	mu   sync.Mutex
	tabs map[string]*tab
	now  func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tabs: make(map[string]*tab),
		now:  time.Now,
	}
}

// Register adds a page context and returns its id.
func (r *Registry) Register() string {
	id := uuid.NewString()
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tabs[id] = &tab{
		notify:     make(chan struct{}, 1),
		gone:       make(chan struct{}),
		lastSeen:   now,
		registered: now,
	}
	return id
}

// Unregister removes a page context. Pending polls return ErrNoReceiver.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) bool {
	t, ok := r.tabs[id]
	if !ok {
		return false
	}
	close(t.gone)
	delete(r.tabs, id)
	return true
}

// Known reports whether id is registered.
func (r *Registry) Known(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.tabs[id]
	return ok
}

// Deliver queues msg for id, replacing any instruction not yet collected.
func (r *Registry) Deliver(id string, msg messages.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[id]
	if !ok {
		return ErrNoReceiver
	}
	t.inbox = msg
	select {
	case t.notify <- struct{}{}:
	default:
	}
	return nil
}

// Next waits up to wait for an instruction for id. It returns nil when the
// wait elapses with nothing queued.
func (r *Registry) Next(ctx context.Context, id string, wait time.Duration) (messages.Message, error) {
	msg, t, err := r.take(id)
	if err != nil || msg != nil {
		return msg, err
	}

	r.setPolling(t, 1)
	defer r.setPolling(t, -1)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-t.notify:
		msg, _, err := r.take(id)
		return msg, err
	case <-t.gone:
		return nil, ErrNoReceiver
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) take(id string) (messages.Message, *tab, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tabs[id]
	if !ok {
		return nil, nil, ErrNoReceiver
	}
	t.lastSeen = r.now()
	msg := t.inbox
	t.inbox = nil
	if msg != nil {
		// drain a stale signal so the next poll blocks
		select {
		case <-t.notify:
		default:
		}
	}
	return msg, t, nil
}

func (r *Registry) setPolling(t *tab, delta int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t.polling += delta
	t.lastSeen = r.now()
}

// Sweep evicts page contexts idle for longer than ttl that are not polling,
// and returns their ids.
func (r *Registry) Sweep(ttl time.Duration) []string {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, t := range r.tabs {
		if t.polling == 0 && now.Sub(t.lastSeen) > ttl {
			r.removeLocked(id)
			evicted = append(evicted, id)
		}
	}
	return evicted
}

// Count returns the number of registered page contexts.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tabs)
}
