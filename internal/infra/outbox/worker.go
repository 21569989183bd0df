package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	appoutbox "fitryne/internal/app/outbox"
)

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// Worker relays due outbox records to the broker as CloudEvents on every tick.
// Run only returns when ctx is done.
type Worker struct {
	Store       appoutbox.RelayStore
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil && ctx.Err() == nil {
				w.logger().ErrorContext(ctx, "outbox store unavailable", "worker", w.ID, "error", err)
			}
		}
	}
}

// drain relays due records until the store has nothing left to hand out.
func (w *Worker) drain(ctx context.Context) error {
	for {
		sent, err := w.processOnce(ctx)
		if err != nil || !sent {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// processOnce reports whether a record was claimed. Publish failures are
// rescheduled. Store failures end the current drain and are retried on the
// next tick; a record stuck in CLAIMED comes back once its lease expires.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	ev, err := w.Store.Claim(ctx, w.workerID())
	if err != nil || ev == nil {
		return false, err
	}
	topic := w.topicFor(ev.Name)
	payload, headers, err := w.formatPayload(ev)
	if err != nil {
		return true, w.fail(ctx, ev, err)
	}
	if err := w.Producer.Publish(ctx, topic, ev.Aggregate, payload, headers); err != nil {
		return true, w.fail(ctx, ev, err)
	}
	if err := w.Store.MarkSent(ctx, ev.ID); err != nil {
		return true, err
	}
	w.logger().DebugContext(ctx, "outbox event relayed", "id", ev.ID, "name", ev.Name, "topic", topic)
	return true, nil
}

func (w *Worker) fail(ctx context.Context, ev *appoutbox.PendingEvent, cause error) error {
	next := w.nextRetry(ev.Attempts)
	w.logger().WarnContext(ctx, "outbox relay failed", "id", ev.ID, "name", ev.Name, "attempts", ev.Attempts+1, "next_attempt", next, "error", cause)
	return w.Store.MarkFailed(ctx, ev.ID, next, cause.Error())
}

func (w *Worker) formatPayload(ev *appoutbox.PendingEvent) ([]byte, map[string]string, error) {
	data := map[string]any{}
	if err := json.Unmarshal(ev.Payload, &data); err != nil {
		return nil, nil, err
	}
	evt := map[string]any{
		"specversion":     "1.0",
		"id":              ev.ID,
		"type":            ev.Name + ".v1",
		"source":          w.source(),
		"subject":         ev.Aggregate,
		"time":            ev.OccurredAt,
		"datacontenttype": "application/json",
		"data":            data,
	}
	if trace, ok := ev.Headers["traceparent"]; ok {
		evt["traceparent"] = trace
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return nil, nil, err
	}
	headers := map[string]string{
		"content-type": "application/cloudevents+json",
	}
	for k, v := range ev.Headers {
		headers[k] = v
	}
	return payload, headers, nil
}

func (w *Worker) topicFor(name string) string {
	base := name
	if idx := strings.IndexRune(name, '.'); idx > 0 {
		base = name[:idx]
	}
	topic := base + ".events.v1"
	if w.TopicPrefix != "" {
		topic = w.TopicPrefix + topic
	}
	return topic
}

func (w *Worker) workerID() string {
	if w.ID != "" {
		return w.ID
	}
	return uuid.NewString()
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) nextRetry(attempts int) time.Time {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	if attempts < len(w.Backoff) {
		return now.Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return now.Add(w.Backoff[len(w.Backoff)-1])
	}
	return now.Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://fitryne"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

var ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")
