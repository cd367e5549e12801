package events

import (
	"sync"

	"yieldvault/core/types"
)

// Recorder keeps a bounded in-memory tail of emitted events for the RPC
// event feed. Older entries fall off once the limit is reached; external
// indexers are expected to consume the feed continuously.
type Recorder struct {
	mu      sync.RWMutex
	limit   int
	entries []*types.Event
}

// NewRecorder returns a recorder retaining at most limit events.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 1024
	}
	return &Recorder{limit: limit}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	payload, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	wire := payload.Event()
	if wire == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, wire)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Events returns a copy of the retained tail, oldest first.
func (r *Recorder) Events() []*types.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*types.Event, len(r.entries))
	copy(out, r.entries)
	return out
}

// Fanout returns an emitter that forwards every event to each sink in order.
func Fanout(sinks ...Emitter) Emitter {
	filtered := make([]Emitter, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return fanout(filtered)
}

type fanout []Emitter

// Emit implements the Emitter interface.
func (f fanout) Emit(evt Event) {
	for _, sink := range f {
		sink.Emit(evt)
	}
}
