package log

// MultiLogger sends events to multiple loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger that sends events to all provided loggers.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Log sends the event to all configured loggers. Nil loggers are skipped.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		if l != nil {
			l.Log(event)
		}
	}
}

// Recorder keeps every event in memory. It is used by check runs and tests.
type Recorder struct {
	Events []Event
}

// Log appends the event.
func (r *Recorder) Log(event Event) {
	r.Events = append(r.Events, event)
}

// Kinds returns the kinds of the recorded events in order.
func (r *Recorder) Kinds() []Kind {
	kinds := make([]Kind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

// Compile-time interface satisfaction check.
var (
	_ Logger = (*MultiLogger)(nil)
	_ Logger = (*Recorder)(nil)
)
