package estimates

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"fitryne/internal/app/outbox"
	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
)

type fakeRepo struct {
	mu    sync.Mutex
	saved []*nutrition.Estimate
	err   error
}

func (r *fakeRepo) Save(_ context.Context, e *nutrition.Estimate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, e)
	return nil
}

func (r *fakeRepo) ListByTrainee(_ context.Context, traineeID string, limit int) ([]*nutrition.Estimate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*nutrition.Estimate
	for _, e := range r.saved {
		if e.TraineeID == traineeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeOutbox struct {
	records []outbox.EventRecord
}

func (o *fakeOutbox) Add(_ context.Context, rec outbox.EventRecord) error {
	o.records = append(o.records, rec)
	return nil
}

type fakeAI struct {
	answer string
	err    error
	calls  int
	locale nutrition.Locale
}

func (f *fakeAI) EstimateCalories(_ context.Context, _ nutrition.BiometricInput, locale nutrition.Locale) (string, error) {
	f.calls++
	f.locale = locale
	return f.answer, f.err
}

var fixedNow = time.Date(2026, 5, 4, 7, 0, 0, 0, time.UTC)

func scenarioA() nutrition.BiometricInput {
	return nutrition.BiometricInput{Age: 25, Gender: nutrition.GenderMale, WeightKg: 70, HeightCm: 175, ActivityLevel: nutrition.ActivityModerate, Goal: nutrition.GoalMaintainWeight}
}

func testOptions() []Option {
	return []Option{
		WithIDGenerator(func() string { return "est-fixed" }),
		WithClock(func() time.Time { return fixedNow }),
	}
}

func TestComputeEstimate_Anonymous(t *testing.T) {
	repo := &fakeRepo{}
	box := &fakeOutbox{}
	h := NewComputeEstimateHandler(repo, box, testOptions()...)

	got, err := h.Handle(context.Background(), ComputeEstimateCommand{CommandID: "c1", Input: scenarioA(), Locale: nutrition.LocaleEnglish})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.EstimateID != "" {
		t.Errorf("anonymous estimate got id %q", got.EstimateID)
	}
	if got.Result == nil || got.Result.TargetCalories != 2594 || got.Result.CarbGrams != 346 {
		t.Errorf("result = %+v", got.Result)
	}
	if got.Input.ActivityLevelLabel != "Moderately active" {
		t.Errorf("label = %q", got.Input.ActivityLevelLabel)
	}
	if len(repo.saved) != 0 || len(box.records) != 0 {
		t.Errorf("anonymous estimate was stored: %d saved, %d events", len(repo.saved), len(box.records))
	}
}

func TestComputeEstimate_StoresForTrainee(t *testing.T) {
	repo := &fakeRepo{}
	box := &fakeOutbox{}
	h := NewComputeEstimateHandler(repo, box, testOptions()...)

	got, err := h.Handle(context.Background(), ComputeEstimateCommand{CommandID: "c1", TraineeID: "trainee-1", Input: scenarioA()})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.EstimateID != "est-fixed" || got.Locale != "ar" {
		t.Errorf("estimate = %+v", got)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("saved = %d", len(repo.saved))
	}
	if len(box.records) != 1 || box.records[0].Name != "nutrition.estimate_computed" || box.records[0].Aggregate != "est-fixed" {
		t.Errorf("outbox records = %+v", box.records)
	}
	if pending := repo.saved[0].Pending(); len(pending) != 0 {
		t.Errorf("events left on aggregate: %d", len(pending))
	}
}

func TestComputeEstimate_Errors(t *testing.T) {
	bad := scenarioA()
	bad.WeightKg = 10
	h := NewComputeEstimateHandler(&fakeRepo{}, nil)
	if _, err := h.Handle(context.Background(), ComputeEstimateCommand{Input: bad}); !errors.Is(err, nutrition.ErrInvalidInput) {
		t.Errorf("invalid input error = %v", err)
	}

	saveErr := errors.New("disk full")
	h = NewComputeEstimateHandler(&fakeRepo{err: saveErr}, nil)
	if _, err := h.Handle(context.Background(), ComputeEstimateCommand{TraineeID: "t", Input: scenarioA()}); !errors.Is(err, saveErr) {
		t.Errorf("save error = %v", err)
	}

	h = NewComputeEstimateHandler(nil, nil)
	if _, err := h.Handle(context.Background(), ComputeEstimateCommand{TraineeID: "t", Input: scenarioA()}); !errors.Is(err, ErrRepositoryMissing) {
		t.Errorf("missing repo error = %v", err)
	}
}

func TestAIEstimate(t *testing.T) {
	ai := &fakeAI{answer: "2500"}
	repo := &fakeRepo{}
	box := &fakeOutbox{}
	h := NewAIEstimateHandler(ai, repo, box, testOptions()...)

	got, err := h.Handle(context.Background(), AIEstimateCommand{CommandID: "c", TraineeID: "t-9", Input: scenarioA(), Locale: "fr"})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if got.Calories != "2500" || got.Source != "ai" || got.Result != nil {
		t.Errorf("estimate = %+v", got)
	}
	if ai.locale != nutrition.LocaleArabic {
		t.Errorf("unsupported locale passed through as %q", ai.locale)
	}
	if len(repo.saved) != 1 || len(box.records) != 1 {
		t.Errorf("saved %d, events %d", len(repo.saved), len(box.records))
	}
}

func TestAIEstimate_Errors(t *testing.T) {
	h := NewAIEstimateHandler(nil, &fakeRepo{}, nil)
	if _, err := h.Handle(context.Background(), AIEstimateCommand{Input: scenarioA()}); !errors.Is(err, policies.ErrAINotConfigured) {
		t.Errorf("nil port error = %v", err)
	}

	ai := &fakeAI{err: policies.ErrAIMalformedResponse}
	repo := &fakeRepo{}
	h = NewAIEstimateHandler(ai, repo, nil)
	if _, err := h.Handle(context.Background(), AIEstimateCommand{TraineeID: "t", Input: scenarioA()}); !errors.Is(err, policies.ErrAIMalformedResponse) {
		t.Errorf("malformed error = %v", err)
	}
	if len(repo.saved) != 0 {
		t.Error("failed AI estimate was stored")
	}

	bad := scenarioA()
	bad.Goal = ""
	ai = &fakeAI{answer: "1"}
	h = NewAIEstimateHandler(ai, nil, nil)
	if _, err := h.Handle(context.Background(), AIEstimateCommand{Input: bad}); !errors.Is(err, nutrition.ErrInvalidInput) {
		t.Errorf("invalid input error = %v", err)
	}
	if ai.calls != 0 {
		t.Error("model called for invalid input")
	}
}

func TestListHistory(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 3; i++ {
		est, err := nutrition.NewFormulaEstimate(nutrition.EstimateID(string(rune('a'+i))), "t-1", scenarioA(), nutrition.Calculate(scenarioA()), fixedNow.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		_ = repo.Save(context.Background(), est)
	}
	h := &ListHistoryHandler{Estimates: repo, DefaultLimit: 2}

	got, err := h.Handle(context.Background(), ListHistoryQuery{TraineeID: " t-1 "})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].EstimateID != "c" || got.TraineeID != "t-1" {
		t.Errorf("history = %+v", got)
	}

	if _, err := h.Handle(context.Background(), ListHistoryQuery{}); !errors.Is(err, nutrition.ErrTraineeRequired) {
		t.Errorf("empty trainee error = %v", err)
	}
}

func TestListHistoryLimit(t *testing.T) {
	tests := []struct {
		name         string
		defaultLimit int
		requested    int
		want         int
	}{
		{"requested", 10, 5, 5},
		{"handler default", 10, 0, 10},
		{"package default", 0, 0, DefaultHistoryLimit},
		{"capped", 0, 10_000, MaxHistoryLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &ListHistoryHandler{DefaultLimit: tt.defaultLimit}
			if got := h.limit(tt.requested); got != tt.want {
				t.Errorf("limit(%d) = %d, want %d", tt.requested, got, tt.want)
			}
		})
	}
}
