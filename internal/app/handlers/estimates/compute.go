package estimates

import (
	"context"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/dto"
	"fitryne/internal/app/outbox"
	"fitryne/internal/domain/nutrition"
)

const ComputeEstimateKey = "nutrition.estimate"

// ComputeEstimateCommand runs the deterministic calculator. The estimate is
// stored only when TraineeID is set.
type ComputeEstimateCommand struct {
	CommandID string                   `validate:"required"`
	TraineeID string                   `validate:"omitempty,max=64,printascii"`
	Input     nutrition.BiometricInput `validate:"-"`
	Locale    nutrition.Locale         `validate:"omitempty,oneof=ar en"`

	IdempotencyKeyV string `validate:"omitempty,max=128,printascii"`
}

func (c ComputeEstimateCommand) Key() string { return ComputeEstimateKey }

func (c ComputeEstimateCommand) Validate() error { return c.Input.Validate() }

func (c ComputeEstimateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ComputeEstimateCommand) IdempotencyFingerprint() string {
	return fingerprint(c.TraineeID, c.Input)
}

func (c ComputeEstimateCommand) DecodeResult(data []byte) (any, error) { return decodeEstimate(data) }

type ComputeEstimateHandler struct {
	recorder
}

func NewComputeEstimateHandler(repo nutrition.EstimateRepository, box outbox.Outbox, opts ...Option) *ComputeEstimateHandler {
	h := &ComputeEstimateHandler{recorder: recorder{Estimates: repo, Outbox: box}}
	for _, opt := range opts {
		opt(&h.recorder)
	}
	return h
}

func (h *ComputeEstimateHandler) Handle(ctx context.Context, cmd ComputeEstimateCommand) (dto.Estimate, error) {
	result, err := nutrition.Compute(cmd.Input)
	if err != nil {
		return dto.Estimate{}, err
	}
	locale := cmd.Locale.OrDefault()

	if anonymous(cmd.TraineeID) {
		return dto.Estimate{
			Source:    string(nutrition.SourceFormula),
			Locale:    string(locale),
			Input:     dto.MapInput(cmd.Input, locale),
			Result:    &result,
			CreatedAt: h.now(),
		}, nil
	}

	est, err := nutrition.NewFormulaEstimate(h.newID(), cmd.TraineeID, cmd.Input, result, h.now())
	if err != nil {
		return dto.Estimate{}, err
	}
	if err := h.store(ctx, est); err != nil {
		return dto.Estimate{}, err
	}
	return dto.MapEstimate(est, locale), nil
}

var _ commands.Handler[ComputeEstimateCommand, dto.Estimate] = (*ComputeEstimateHandler)(nil)
