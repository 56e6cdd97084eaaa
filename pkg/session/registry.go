package session

import (
	"encoding/json"
	"sync"
)

// Handler processes one inbound event payload. Handlers run sequentially on
// the connection's read goroutine; a slow handler delays later events.
type Handler func(payload json.RawMessage)

// Token identifies one registered handler so it can be removed without
// affecting other handlers for the same event.
type Token uint64

// handlerEntry pairs a token with its handler. Entries are kept in a slice
// so dispatch order matches registration order.
type handlerEntry struct {
	token   Token
	handler Handler
}

// registry maps event names to their handlers. Multiple handlers per event
// are supported; registering never clobbers an existing handler.
type registry struct {
	mu       sync.RWMutex
	next     Token
	handlers map[string][]handlerEntry
}

func newRegistry() *registry {
	return &registry{handlers: make(map[string][]handlerEntry)}
}

// add registers a handler for an event and returns its removal token.
func (r *registry) add(event string, h Handler) Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.handlers[event] = append(r.handlers[event], handlerEntry{token: r.next, handler: h})
	return r.next
}

// remove deletes the handler with the given token. Other handlers for the
// same event are untouched.
func (r *registry) remove(event string, token Token) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.handlers[event]
	for i, e := range entries {
		if e.token == token {
			r.handlers[event] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(r.handlers[event]) == 0 {
		delete(r.handlers, event)
	}
}

// dispatch invokes every handler registered for the event, in registration
// order. Returns the number of handlers invoked.
func (r *registry) dispatch(event string, payload json.RawMessage) int {
	r.mu.RLock()
	entries := make([]handlerEntry, len(r.handlers[event]))
	copy(entries, r.handlers[event])
	r.mu.RUnlock()

	for _, e := range entries {
		e.handler(payload)
	}
	return len(entries)
}

// clear drops every registration. Used on teardown.
func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string][]handlerEntry)
}
