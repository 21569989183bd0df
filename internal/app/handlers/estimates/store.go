package estimates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fitryne/internal/app/dto"
	"fitryne/internal/app/outbox"
	"fitryne/internal/domain/nutrition"
)

var ErrRepositoryMissing = errors.New("estimates: repository not configured")

// recorder persists estimates for named trainees and queues their events.
// Anonymous calculations are returned to the caller without being stored.
type recorder struct {
	Estimates nutrition.EstimateRepository
	Outbox    outbox.Outbox
	Encoder   outbox.EventEncoder
	NewID     func() string
	Now       func() time.Time
}

func (r recorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r recorder) newID() nutrition.EstimateID {
	if r.NewID != nil {
		return nutrition.EstimateID(r.NewID())
	}
	return nutrition.EstimateID(uuid.NewString())
}

func (r recorder) store(ctx context.Context, est *nutrition.Estimate) error {
	if r.Estimates == nil {
		return ErrRepositoryMissing
	}
	if err := r.Estimates.Save(ctx, est); err != nil {
		return fmt.Errorf("estimates: save %s: %w", est.ID, err)
	}
	return outbox.RecordDomainEvents(ctx, r.Outbox, r.Encoder, est.Drain())
}

func decodeEstimate(data []byte) (any, error) {
	var out dto.Estimate
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("estimates: decode replay: %w", err)
	}
	return out, nil
}

// fingerprint covers what changes the estimate. Locale only changes labels.
func fingerprint(traineeID string, in nutrition.BiometricInput) string {
	return fmt.Sprintf("%s|%d|%s|%g|%g|%s|%s", strings.TrimSpace(traineeID), in.Age, in.Gender, in.WeightKg, in.HeightCm, in.ActivityLevel, in.Goal)
}

func anonymous(traineeID string) bool {
	return strings.TrimSpace(traineeID) == ""
}
