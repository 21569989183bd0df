package estimates

import (
	"time"

	"fitryne/internal/app/outbox"
)

// Option tunes how handlers stamp and publish stored estimates.
type Option func(*recorder)

func WithEncoder(enc outbox.EventEncoder) Option {
	return func(r *recorder) { r.Encoder = enc }
}

func WithIDGenerator(fn func() string) Option {
	return func(r *recorder) { r.NewID = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(r *recorder) { r.Now = fn }
}
