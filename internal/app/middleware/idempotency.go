package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitryne/internal/app/commands"
)

// IdempotentCommand is implemented by commands that can be replayed from a
// stored result when the client repeats its Idempotency-Key.
// IdempotencyFingerprint describes the request content; a repeated key with a
// different fingerprint is rejected instead of replayed.
type IdempotentCommand interface {
	commands.Command
	IdempotencyKey() string
	IdempotencyFingerprint() string
	DecodeResult(data []byte) (any, error)
}

type IdempotencyRecord struct {
	Key         string
	Fingerprint string
	Payload     []byte
	OccurredAt  time.Time
}

type IdempotencyStore interface {
	Get(ctx context.Context, key string) (IdempotencyRecord, bool, error)
	Save(ctx context.Context, rec IdempotencyRecord) error
}

// Idempotency replays successful results. Failures are not remembered so a
// client may retry a request that hit a transient AI or storage error.
func Idempotency(store IdempotencyStore) CommandMiddleware {
	if store == nil {
		panic("middleware: idempotency store required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			idCmd, ok := cmd.(IdempotentCommand)
			if !ok || idCmd.IdempotencyKey() == "" {
				return next.Dispatch(ctx, cmd)
			}
			key := cmd.Key() + ":" + idCmd.IdempotencyKey()
			fingerprint := hashFingerprint(idCmd.IdempotencyFingerprint())

			rec, found, err := store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("idempotency: get %s: %w", key, err)
			}
			if found {
				if rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
					return nil, fmt.Errorf("%w: %s", ErrIdempotencyConflict, idCmd.IdempotencyKey())
				}
				return idCmd.DecodeResult(rec.Payload)
			}

			result, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			payload, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("idempotency: encode %s: %w", key, err)
			}
			if err := store.Save(ctx, IdempotencyRecord{Key: key, Fingerprint: fingerprint, Payload: payload, OccurredAt: time.Now().UTC()}); err != nil {
				return nil, errors.Join(ErrIdempotencySave, err)
			}
			return result, nil
		})
	}
}

func hashFingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

var (
	ErrIdempotencySave     = errors.New("idempotency: result computed but not saved")
	ErrIdempotencyConflict = errors.New("idempotency: key reused with a different request")
)
