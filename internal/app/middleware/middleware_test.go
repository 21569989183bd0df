package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/queries"
)

type echoCommand struct {
	Value  string
	Replay string
}

func (echoCommand) Key() string { return "test.echo" }

func (c echoCommand) IdempotencyKey() string { return c.Replay }

func (c echoCommand) IdempotencyFingerprint() string { return c.Value }

func (echoCommand) DecodeResult(data []byte) (any, error) {
	var out string
	err := json.Unmarshal(data, &out)
	return out, err
}

type echoQuery struct{ Value string }

func (echoQuery) Key() string { return "test.echo" }

func newEchoBus(calls *int) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.MustRegister[echoCommand, string](bus, "test.echo", commands.HandlerFunc[echoCommand, string](func(_ context.Context, cmd echoCommand) (string, error) {
		*calls++
		if cmd.Value == "fail" {
			return "", errors.New("boom")
		}
		return cmd.Value, nil
	}))
	return bus
}

func TestChainCommands_Order(t *testing.T) {
	var order []string
	mark := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	calls := 0
	bus := ChainCommands(newEchoBus(&calls), mark("outer"), mark("inner"))
	if _, err := bus.Dispatch(context.Background(), echoCommand{Value: "x"}); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v", order)
	}
}

type rejectValidator struct{ err error }

func (v rejectValidator) Validate(context.Context, any) error { return v.err }

func TestValidation(t *testing.T) {
	calls := 0
	invalid := errors.New("invalid")
	bus := ChainCommands(newEchoBus(&calls), Validation(rejectValidator{err: invalid}))
	if _, err := bus.Dispatch(context.Background(), echoCommand{Value: "x"}); !errors.Is(err, invalid) {
		t.Errorf("error = %v", err)
	}
	if calls != 0 {
		t.Error("handler ran for invalid command")
	}

	qbus := queries.NewInMemoryBus()
	queries.MustRegister[echoQuery, string](qbus, "test.echo", queries.HandlerFunc[echoQuery, string](func(_ context.Context, q echoQuery) (string, error) {
		return q.Value, nil
	}))
	got, err := queries.Ask[echoQuery, string](context.Background(), ChainQueries(qbus, QueryValidation(rejectValidator{})), echoQuery{Value: "ok"})
	if err != nil || got != "ok" {
		t.Errorf("query = %q, %v", got, err)
	}
}

type observed struct {
	kind, key string
	err       error
}

type recordingObserver struct{ seen []observed }

func (o *recordingObserver) ObserveMessage(kind, key string, _ time.Duration, err error) {
	o.seen = append(o.seen, observed{kind, key, err})
}

func TestObserveCommands(t *testing.T) {
	calls := 0
	obs := &recordingObserver{}
	bus := ChainCommands(newEchoBus(&calls), ObserveCommands(nil, obs))

	_, _ = bus.Dispatch(context.Background(), echoCommand{Value: "x"})
	_, _ = bus.Dispatch(context.Background(), echoCommand{Value: "fail"})

	if len(obs.seen) != 2 {
		t.Fatalf("observed %d messages", len(obs.seen))
	}
	if obs.seen[0].kind != "command" || obs.seen[0].key != "test.echo" || obs.seen[0].err != nil {
		t.Errorf("first = %+v", obs.seen[0])
	}
	if obs.seen[1].err == nil {
		t.Error("failure not reported")
	}
}

type mapStore struct {
	mu    sync.Mutex
	items map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[rec.Key] = rec
	return nil
}

func TestIdempotency(t *testing.T) {
	calls := 0
	store := &mapStore{items: map[string]IdempotencyRecord{}}
	bus := ChainCommands(newEchoBus(&calls), Idempotency(store))
	ctx := context.Background()

	first, err := commands.Dispatch[echoCommand, string](ctx, bus, echoCommand{Value: "a", Replay: "k1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := commands.Dispatch[echoCommand, string](ctx, bus, echoCommand{Value: "a", Replay: "k1"})
	if err != nil {
		t.Fatal(err)
	}
	if first != "a" || second != "a" || calls != 1 {
		t.Errorf("first %q, second %q, calls %d", first, second, calls)
	}
	if rec, ok := store.items["test.echo:k1"]; !ok || rec.Fingerprint == "" {
		t.Errorf("record not scoped by command key or missing fingerprint: %v", store.items)
	}
	if _, err := bus.Dispatch(ctx, echoCommand{Value: "changed", Replay: "k1"}); !errors.Is(err, ErrIdempotencyConflict) {
		t.Errorf("reused key with new content = %v, want ErrIdempotencyConflict", err)
	}
	if calls != 1 {
		t.Errorf("conflicting request reached the handler, calls = %d", calls)
	}

	_, _ = bus.Dispatch(ctx, echoCommand{Value: "b"})
	_, _ = bus.Dispatch(ctx, echoCommand{Value: "b"})
	if calls != 3 {
		t.Errorf("commands without a key were replayed, calls = %d", calls)
	}

	_, _ = bus.Dispatch(ctx, echoCommand{Value: "fail", Replay: "k2"})
	_, _ = bus.Dispatch(ctx, echoCommand{Value: "fail", Replay: "k2"})
	if calls != 5 {
		t.Errorf("failures were replayed, calls = %d", calls)
	}
}
