package log

// Logger receives diagnostic events.
// Pass nil or NoopLogger to disable diagnostics.
type Logger interface {
	// Log records an event. Implementations must be thread-safe and should
	// not block: cleanup paths call Log while releasing resources.
	Log(event Event)
}

// NoopLogger discards all events.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
