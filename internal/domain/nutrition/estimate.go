package nutrition

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"fitryne/internal/domain/shared/events"
)

var (
	ErrEstimateIDRequired = errors.New("nutrition: estimate id is required")
	ErrTraineeRequired    = errors.New("nutrition: trainee id is required")
	ErrAICaloriesInvalid  = errors.New("nutrition: ai calories must be a non-empty integer string")
)

type EstimateID string

// Source tells how an estimate was produced.
type Source string

const (
	SourceFormula Source = "formula"
	SourceAI      Source = "ai"
)

// Estimate is a stored calculation for a trainee. Formula estimates carry a
// full Result; AI estimates carry only the calorie figure returned by the model.
type Estimate struct {
	ID         EstimateID
	TraineeID  string
	Source     Source
	Input      BiometricInput
	Result     CalorieResult
	AICalories string
	CreatedAt  time.Time
	events.Recorder
}

type EstimateRepository interface {
	Save(ctx context.Context, estimate *Estimate) error
	// ListByTrainee returns the newest estimates first.
	ListByTrainee(ctx context.Context, traineeID string, limit int) ([]*Estimate, error)
}

// NewFormulaEstimate records a deterministic calculation and raises EstimateComputed.
func NewFormulaEstimate(id EstimateID, traineeID string, in BiometricInput, result CalorieResult, now time.Time) (*Estimate, error) {
	e, err := newEstimate(id, traineeID, SourceFormula, in, now)
	if err != nil {
		return nil, err
	}
	e.Result = result
	e.Raise(e.computedEvent())
	return e, nil
}

// NewAIEstimate records a model-produced calorie figure and raises EstimateComputed.
func NewAIEstimate(id EstimateID, traineeID string, in BiometricInput, calories string, now time.Time) (*Estimate, error) {
	if err := ValidateAICalories(calories); err != nil {
		return nil, err
	}
	e, err := newEstimate(id, traineeID, SourceAI, in, now)
	if err != nil {
		return nil, err
	}
	e.AICalories = calories
	e.Raise(e.computedEvent())
	return e, nil
}

// ValidateAICalories checks that a model figure is a non-negative int.
func ValidateAICalories(calories string) error {
	if n, err := strconv.Atoi(calories); err != nil || n < 0 {
		return ErrAICaloriesInvalid
	}
	return nil
}

func newEstimate(id EstimateID, traineeID string, source Source, in BiometricInput, now time.Time) (*Estimate, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrEstimateIDRequired
	}
	traineeID = strings.TrimSpace(traineeID)
	if traineeID == "" {
		return nil, ErrTraineeRequired
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now()
	}
	return &Estimate{
		ID:        id,
		TraineeID: traineeID,
		Source:    source,
		Input:     in,
		CreatedAt: now.UTC(),
	}, nil
}

func (e *Estimate) computedEvent() EstimateComputed {
	return EstimateComputed{
		EstimateID:     e.ID,
		TraineeID:      e.TraineeID,
		Source:         e.Source,
		Goal:           e.Input.Goal,
		TargetCalories: e.Result.TargetCalories,
		ProteinGrams:   e.Result.ProteinGrams,
		CarbGrams:      e.Result.CarbGrams,
		FatGrams:       e.Result.FatGrams,
		AICalories:     e.AICalories,
		At:             e.CreatedAt,
	}
}

// EstimateComputed is published for every stored estimate.
type EstimateComputed struct {
	EstimateID     EstimateID `json:"estimate_id"`
	TraineeID      string     `json:"trainee_id"`
	Source         Source     `json:"source"`
	Goal           Goal       `json:"goal"`
	TargetCalories int        `json:"target_calories,omitempty"`
	ProteinGrams   int        `json:"protein_g,omitempty"`
	CarbGrams      int        `json:"carbs_g,omitempty"`
	FatGrams       int        `json:"fat_g,omitempty"`
	AICalories     string     `json:"ai_calories,omitempty"`
	At             time.Time  `json:"at"`
}

func (e EstimateComputed) EventName() string     { return "nutrition.estimate_computed" }
func (e EstimateComputed) AggregateID() string   { return string(e.EstimateID) }
func (e EstimateComputed) OccurredAt() time.Time { return e.At }
