package commands

import (
	"context"
	"fmt"
	"sort"
)

type rawHandler func(ctx context.Context, cmd Command) (any, error)

// InMemoryBus keeps handlers in a map keyed by Command.Key. Registration is
// expected to finish before the first Dispatch.
type InMemoryBus struct {
	handlers map[string]rawHandler
}

func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string]rawHandler)}
}

func (b *InMemoryBus) Dispatch(ctx context.Context, cmd Command) (any, error) {
	if cmd == nil {
		return nil, ErrInvalidCommand
	}
	h, ok := b.handlers[cmd.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, cmd.Key())
	}
	return h(ctx, cmd)
}

// Keys lists registered command keys, sorted.
func (b *InMemoryBus) Keys() []string {
	keys := make([]string, 0, len(b.handlers))
	for k := range b.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Register binds a typed handler to key. It fails on an empty or duplicate key.
func Register[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) error {
	if bus == nil {
		return ErrNilBus
	}
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidCommand)
	}
	if _, exists := bus.handlers[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}
	bus.handlers[key] = func(ctx context.Context, raw Command) (any, error) {
		cmd, ok := raw.(C)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, key)
		}
		return handler.Handle(ctx, cmd)
	}
	return nil
}

// MustRegister is Register for wiring code, where a failure is a programming error.
func MustRegister[C Command, R any](bus *InMemoryBus, key string, handler Handler[C, R]) {
	if err := Register(bus, key, handler); err != nil {
		panic(err)
	}
}
