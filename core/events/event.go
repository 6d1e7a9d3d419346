package events

// Event represents a structured state change produced by a native module.
type Event interface {
	EventType() string
	// Record flattens the event into string attributes for logs and indexers.
	Record() Record
}

// Record is the flattened form of an event.
type Record struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Emitter broadcasts events to downstream subscribers (logs, metrics).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter satisfies Emitter while discarding all events.
type NoopEmitter struct{}

func (NoopEmitter) Emit(Event) {}

// Buffer holds events raised inside a transaction until it commits. Events of
// an aborted transaction are simply dropped with the buffer.
type Buffer struct {
	pending []Event
}

func (b *Buffer) Emit(e Event) {
	if e == nil {
		return
	}
	b.pending = append(b.pending, e)
}

// Events returns the buffered events in emission order.
func (b *Buffer) Events() []Event {
	out := make([]Event, len(b.pending))
	copy(out, b.pending)
	return out
}

// Flush forwards every buffered event to dst and empties the buffer.
func (b *Buffer) Flush(dst Emitter) {
	if dst == nil {
		dst = NoopEmitter{}
	}
	for _, e := range b.pending {
		dst.Emit(e)
	}
	b.pending = nil
}
