package log

// Logger receives protocol log events.
// Pass nil or NoopLogger to disable protocol capture.
type Logger interface {
	// Log records a protocol event. Implementations must be thread-safe
	// and should return quickly; the client waits on Log between commands.
	Log(event Event)
}

// NoopLogger discards all events. Its zero value is ready to use.
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

var _ Logger = NoopLogger{}
