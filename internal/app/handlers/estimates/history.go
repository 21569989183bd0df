package estimates

import (
	"context"
	"strings"

	"fitryne/internal/app/dto"
	"fitryne/internal/app/queries"
	"fitryne/internal/domain/nutrition"
)

const ListHistoryKey = "nutrition.history"

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// ListHistoryQuery loads a trainee's stored estimates, newest first.
type ListHistoryQuery struct {
	TraineeID string           `validate:"required,max=64,printascii"`
	Limit     int              `validate:"gte=0"`
	Locale    nutrition.Locale `validate:"omitempty,oneof=ar en"`
}

func (q ListHistoryQuery) Key() string { return ListHistoryKey }

type ListHistoryHandler struct {
	Estimates    nutrition.EstimateRepository
	DefaultLimit int
}

func (h *ListHistoryHandler) Handle(ctx context.Context, q ListHistoryQuery) (dto.EstimateHistory, error) {
	if h.Estimates == nil {
		return dto.EstimateHistory{}, ErrRepositoryMissing
	}
	traineeID := strings.TrimSpace(q.TraineeID)
	if traineeID == "" {
		return dto.EstimateHistory{}, nutrition.ErrTraineeRequired
	}
	items, err := h.Estimates.ListByTrainee(ctx, traineeID, h.limit(q.Limit))
	if err != nil {
		return dto.EstimateHistory{}, err
	}
	return dto.MapHistory(traineeID, items, q.Locale), nil
}

func (h *ListHistoryHandler) limit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = h.DefaultLimit
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return limit
}

var _ queries.Handler[ListHistoryQuery, dto.EstimateHistory] = (*ListHistoryHandler)(nil)
