package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Mux routes updates to handlers registered by condition name.
type Mux struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	fallback Handler
}

// NewMux creates an empty mux.
func NewMux() *Mux {
	return &Mux{handlers: make(map[string]Handler)}
}

// Handle registers h for name, replacing any earlier handler.
func (m *Mux) Handle(name string, h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[name] = h
}

// HandleFunc registers fn for name.
func (m *Mux) HandleFunc(name string, fn func(ctx context.Context, u Update) error) {
	m.Handle(name, HandlerFunc(fn))
}

// Remove drops the handler for name.
func (m *Mux) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.handlers, name)
}

// Fallback sets the handler for names without a registered handler.
func (m *Mux) Fallback(h Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = h
}

// Names returns the registered names, sorted.
func (m *Mux) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.handlers))
	for name := range m.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HandleUpdate implements Handler.
func (m *Mux) HandleUpdate(ctx context.Context, u Update) error {
	m.mu.RLock()
	h, ok := m.handlers[u.Name]
	if !ok {
		h = m.fallback
	}
	m.mu.RUnlock()

	if h == nil {
		return fmt.Errorf("%w: %q", ErrNoHandler, u.Name)
	}
	return h.HandleUpdate(ctx, u)
}
