package nutrition

import (
	"errors"
	"testing"
	"time"
)

func TestNewFormulaEstimate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.FixedZone("AST", 3*3600))
	in := validInput()
	result := Calculate(in)

	est, err := NewFormulaEstimate("est-1", " trainee-7 ", in, result, now)
	if err != nil {
		t.Fatalf("NewFormulaEstimate: %v", err)
	}
	if est.TraineeID != "trainee-7" {
		t.Errorf("trainee id = %q", est.TraineeID)
	}
	if est.Source != SourceFormula {
		t.Errorf("source = %q", est.Source)
	}
	if !est.CreatedAt.Equal(now) || est.CreatedAt.Location() != time.UTC {
		t.Errorf("created at = %v, want %v in UTC", est.CreatedAt, now)
	}

	pending := est.Drain()
	if len(pending) != 1 {
		t.Fatalf("pending events = %d, want 1", len(pending))
	}
	ev, ok := pending[0].(EstimateComputed)
	if !ok {
		t.Fatalf("event type = %T", pending[0])
	}
	if ev.TargetCalories != result.TargetCalories || ev.AggregateID() != "est-1" {
		t.Errorf("event = %+v", ev)
	}
	if ev.EventName() != "nutrition.estimate_computed" {
		t.Errorf("event name = %q", ev.EventName())
	}
	if len(est.Pending()) != 0 {
		t.Error("Drain did not clear pending events")
	}
}

func TestNewEstimate_Errors(t *testing.T) {
	in := validInput()
	now := time.Now()

	if _, err := NewFormulaEstimate("", "t", in, CalorieResult{}, now); !errors.Is(err, ErrEstimateIDRequired) {
		t.Errorf("missing id: %v", err)
	}
	if _, err := NewFormulaEstimate("id", "  ", in, CalorieResult{}, now); !errors.Is(err, ErrTraineeRequired) {
		t.Errorf("missing trainee: %v", err)
	}
	bad := in
	bad.HeightCm = 20
	if _, err := NewFormulaEstimate("id", "t", bad, CalorieResult{}, now); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("invalid input: %v", err)
	}
	if _, err := NewAIEstimate("id", "t", in, "about 2500", now); !errors.Is(err, ErrAICaloriesInvalid) {
		t.Errorf("invalid ai calories: %v", err)
	}
}

func TestNewAIEstimate(t *testing.T) {
	est, err := NewAIEstimate("est-2", "t-1", validInput(), "2500", time.Time{})
	if err != nil {
		t.Fatalf("NewAIEstimate: %v", err)
	}
	if est.Source != SourceAI || est.AICalories != "2500" {
		t.Errorf("estimate = %+v", est)
	}
	if est.CreatedAt.IsZero() {
		t.Error("zero creation time was not defaulted")
	}
	evs := est.Pending()
	if len(evs) != 1 || evs[0].(EstimateComputed).AICalories != "2500" {
		t.Errorf("events = %+v", evs)
	}
}

func TestValidateAICalories(t *testing.T) {
	for _, raw := range []string{"0", "2500", "20000"} {
		if err := ValidateAICalories(raw); err != nil {
			t.Errorf("ValidateAICalories(%q) = %v", raw, err)
		}
	}
	for _, raw := range []string{"", "-5", "2.5", "99999999999999999999"} {
		if err := ValidateAICalories(raw); !errors.Is(err, ErrAICaloriesInvalid) {
			t.Errorf("ValidateAICalories(%q) = %v, want ErrAICaloriesInvalid", raw, err)
		}
	}
}
