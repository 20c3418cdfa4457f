package log

import "sync"

// MemoryLogger keeps events in memory. The interactive shell uses it to show
// recent diagnostics; tests use it to assert on cleanup failures.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryLogger creates a MemoryLogger retaining at most limit events
// (0 = unbounded).
func NewMemoryLogger(limit int) *MemoryLogger {
	return &MemoryLogger{limit: limit}
}

// Log appends the event, dropping the oldest one when the limit is reached.
func (m *MemoryLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 && len(m.events) >= m.limit {
		copy(m.events, m.events[1:])
		m.events = m.events[:len(m.events)-1]
	}
	m.events = append(m.events, event)
}

// Events returns a copy of the retained events matching the filter.
func (m *MemoryLogger) Events(filter Filter) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Event
	for _, e := range m.events {
		if filter.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Errors returns the retained error events.
func (m *MemoryLogger) Errors() []Event {
	c := CategoryError
	return m.Events(Filter{Category: &c})
}

// Reset discards all retained events.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

// Compile-time interface satisfaction check.
var _ Logger = (*MemoryLogger)(nil)
