package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"fitryne/internal/domain/nutrition"
	"fitryne/internal/domain/shared/events"
)

// ErrNilEstimate is returned when Save receives nil.
var ErrNilEstimate = errors.New("memory: nil estimate")

// EstimateRepository keeps estimates in memory, indexed by trainee.
type EstimateRepository struct {
	mu        sync.RWMutex
	items     map[nutrition.EstimateID]*nutrition.Estimate
	byTrainee map[string][]nutrition.EstimateID
}

// NewEstimateRepository builds an empty repository.
func NewEstimateRepository() *EstimateRepository {
	return &EstimateRepository{
		items:     make(map[nutrition.EstimateID]*nutrition.Estimate),
		byTrainee: make(map[string][]nutrition.EstimateID),
	}
}

// Save stores a copy of e without its pending events.
func (r *EstimateRepository) Save(ctx context.Context, e *nutrition.Estimate) error {
	if e == nil {
		return ErrNilEstimate
	}
	stored := *e
	stored.Recorder = events.Recorder{}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[e.ID]; !exists {
		r.byTrainee[e.TraineeID] = append(r.byTrainee[e.TraineeID], e.ID)
	}
	r.items[e.ID] = &stored
	return nil
}

// ListByTrainee returns newest first. A limit of zero or less returns all.
func (r *EstimateRepository) ListByTrainee(ctx context.Context, traineeID string, limit int) ([]*nutrition.Estimate, error) {
	r.mu.RLock()
	ids := r.byTrainee[traineeID]
	out := make([]*nutrition.Estimate, 0, len(ids))
	for _, id := range ids {
		cp := *r.items[id]
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ nutrition.EstimateRepository = (*EstimateRepository)(nil)
