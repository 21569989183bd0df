package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appoutbox "fitryne/internal/app/outbox"
)

type outboxEntry struct {
	record    appoutbox.EventRecord
	state     string
	attempts  int
	next      time.Time
	claimedBy string
	claimedAt time.Time
	lastError string
	seq       int
}

// Outbox keeps events in memory and serves them to a relay worker, so the
// Kafka relay also works without Mongo.
type Outbox struct {
	mu      sync.Mutex
	entries map[string]*outboxEntry
	seq     int
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{entries: make(map[string]*outboxEntry), now: time.Now}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seq++
	o.entries[record.ID] = &outboxEntry{record: record, state: "NEW", next: o.now(), seq: o.seq}
	return nil
}

// Claim hands out the oldest due record, including claims whose lease expired.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*appoutbox.PendingEvent, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	stale := now.Add(-appoutbox.ClaimLease)
	var due []*outboxEntry
	for _, e := range o.entries {
		switch e.state {
		case "NEW", "FAILED":
			if !e.next.After(now) {
				due = append(due, e)
			}
		case "CLAIMED":
			if e.claimedAt.Before(stale) {
				due = append(due, e)
			}
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].seq < due[j].seq })
	e := due[0]
	e.state = "CLAIMED"
	e.claimedBy = workerID
	e.claimedAt = now
	return &appoutbox.PendingEvent{EventRecord: e.record, Attempts: e.attempts}, nil
}

// MarkSent forgets the record. Nothing reads sent events back.
func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.entries, id)
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, reason string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if e, ok := o.entries[id]; ok {
		e.state = "FAILED"
		e.attempts++
		e.next = next
		e.lastError = reason
	}
	return nil
}

// Pending counts records not yet sent.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries)
}

var (
	_ appoutbox.Outbox     = (*Outbox)(nil)
	_ appoutbox.RelayStore = (*Outbox)(nil)
)
