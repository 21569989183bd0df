package events

import "time"

// DomainEvent is a fact raised by an aggregate and relayed through the outbox.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Recorder is embedded into aggregates that raise events. It is not safe for
// concurrent use; aggregates are owned by a single request.
type Recorder struct {
	pending []DomainEvent
}

// Raise queues an event. Nil events are ignored.
func (r *Recorder) Raise(evs ...DomainEvent) {
	for _, ev := range evs {
		if ev != nil {
			r.pending = append(r.pending, ev)
		}
	}
}

// Pending returns a copy of the queued events.
func (r *Recorder) Pending() []DomainEvent {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// Drain returns the queued events and empties the queue.
func (r *Recorder) Drain() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
