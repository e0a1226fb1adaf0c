package comms

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// InMemoryBus is a thread-safe in-process message bus.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[MessageType][]handlerEntry
	nextID   int
	history  []*Message
	maxHist  int
}

type handlerEntry struct {
	id      int
	handler Handler
}

// NewInMemoryBus creates an InMemoryBus with a 1000-message history cap.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[MessageType][]handlerEntry),
		maxHist:  1000,
	}
}

// Publish records msg and hands it to the handlers subscribed to its type
// and to TypeAll. Handlers run outside the lock, in subscription order.
func (b *InMemoryBus) Publish(ctx context.Context, msg *Message) error {
	b.mu.Lock()
	b.history = append(b.history, msg)
	if len(b.history) > b.maxHist {
		b.history = b.history[len(b.history)-b.maxHist:]
	}

	var targets []Handler
	for _, e := range b.handlers[msg.Type] {
		targets = append(targets, e.handler)
	}
	if msg.Type != TypeAll {
		for _, e := range b.handlers[TypeAll] {
			targets = append(targets, e.handler)
		}
	}
	b.mu.Unlock()

	var errs []error
	for _, h := range targets {
		if err := h(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("publish %s: %d handler error(s): %w", msg.Type, len(errs), errors.Join(errs...))
	}
	return nil
}

// Subscribe registers handler for messages of type typ.
// The returned function unsubscribes the handler.
func (b *InMemoryBus) Subscribe(typ MessageType, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[typ] = append(b.handlers[typ], handlerEntry{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.handlers[typ]
		filtered := entries[:0]
		for _, e := range entries {
			if e.id != id {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) == 0 {
			delete(b.handlers, typ)
		} else {
			b.handlers[typ] = filtered
		}
	}
}

// History returns the most recent limit messages in chronological order.
// A limit of zero or less returns the whole retained history.
func (b *InMemoryBus) History(limit int) ([]*Message, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := 0
	if limit > 0 && len(b.history) > limit {
		start = len(b.history) - limit
	}
	out := make([]*Message, len(b.history)-start)
	copy(out, b.history[start:])
	return out, nil
}
