package estimates

import (
	"context"
	"fmt"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/dto"
	"fitryne/internal/app/outbox"
	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
)

const AIEstimateKey = "nutrition.estimate_ai"

// AIEstimateCommand asks the generative model for a calorie figure. It is an
// alternative to ComputeEstimateCommand, not a replacement.
type AIEstimateCommand struct {
	CommandID string                   `validate:"required"`
	TraineeID string                   `validate:"omitempty,max=64,printascii"`
	Input     nutrition.BiometricInput `validate:"-"`
	Locale    nutrition.Locale         `validate:"omitempty,oneof=ar en"`

	IdempotencyKeyV string `validate:"omitempty,max=128,printascii"`
}

func (c AIEstimateCommand) Key() string { return AIEstimateKey }

func (c AIEstimateCommand) Validate() error { return c.Input.Validate() }

func (c AIEstimateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c AIEstimateCommand) IdempotencyFingerprint() string { return fingerprint(c.TraineeID, c.Input) }

func (c AIEstimateCommand) DecodeResult(data []byte) (any, error) { return decodeEstimate(data) }

type AIEstimateHandler struct {
	AI policies.AICaloriePort
	recorder
}

func NewAIEstimateHandler(ai policies.AICaloriePort, repo nutrition.EstimateRepository, box outbox.Outbox, opts ...Option) *AIEstimateHandler {
	h := &AIEstimateHandler{AI: ai, recorder: recorder{Estimates: repo, Outbox: box}}
	for _, opt := range opts {
		opt(&h.recorder)
	}
	return h
}

func (h *AIEstimateHandler) Handle(ctx context.Context, cmd AIEstimateCommand) (dto.Estimate, error) {
	if err := cmd.Input.Validate(); err != nil {
		return dto.Estimate{}, err
	}
	if h.AI == nil {
		return dto.Estimate{}, policies.ErrAINotConfigured
	}
	locale := cmd.Locale.OrDefault()

	calories, err := h.AI.EstimateCalories(ctx, cmd.Input, locale)
	if err != nil {
		return dto.Estimate{}, fmt.Errorf("estimates: ai: %w", err)
	}
	if err := nutrition.ValidateAICalories(calories); err != nil {
		return dto.Estimate{}, err
	}

	if anonymous(cmd.TraineeID) {
		return dto.Estimate{
			Source:    string(nutrition.SourceAI),
			Locale:    string(locale),
			Input:     dto.MapInput(cmd.Input, locale),
			Calories:  calories,
			CreatedAt: h.now(),
		}, nil
	}

	est, err := nutrition.NewAIEstimate(h.newID(), cmd.TraineeID, cmd.Input, calories, h.now())
	if err != nil {
		return dto.Estimate{}, err
	}
	if err := h.store(ctx, est); err != nil {
		return dto.Estimate{}, err
	}
	return dto.MapEstimate(est, locale), nil
}

var _ commands.Handler[AIEstimateCommand, dto.Estimate] = (*AIEstimateHandler)(nil)
