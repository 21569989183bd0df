package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"fitryne/internal/app/middleware"
	appoutbox "fitryne/internal/app/outbox"
	"fitryne/internal/domain/nutrition"
)

func estimateAt(t *testing.T, id, trainee string, at time.Time) *nutrition.Estimate {
	t.Helper()
	in := nutrition.BiometricInput{Age: 25, Gender: nutrition.GenderMale, WeightKg: 70, HeightCm: 175, ActivityLevel: nutrition.ActivityModerate, Goal: nutrition.GoalMaintainWeight}
	e, err := nutrition.NewFormulaEstimate(nutrition.EstimateID(id), trainee, in, nutrition.Calculate(in), at)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestEstimateRepository(t *testing.T) {
	repo := NewEstimateRepository()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Save(ctx, estimateAt(t, id, "t-1", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}
	_ = repo.Save(ctx, estimateAt(t, "z", "t-2", base))
	// re-saving must not duplicate the index entry
	_ = repo.Save(ctx, estimateAt(t, "a", "t-1", base))

	got, err := repo.ListByTrainee(ctx, "t-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].ID != "c" || got[2].ID != "a" {
		t.Fatalf("history = %v", ids(got))
	}
	if len(got[0].Pending()) != 0 {
		t.Error("stored estimate kept pending events")
	}

	limited, _ := repo.ListByTrainee(ctx, "t-1", 2)
	if len(limited) != 2 {
		t.Errorf("limited = %v", ids(limited))
	}
	none, _ := repo.ListByTrainee(ctx, "nobody", 10)
	if len(none) != 0 {
		t.Errorf("unknown trainee = %v", ids(none))
	}

	got[0].TraineeID = "mutated"
	again, _ := repo.ListByTrainee(ctx, "t-1", 1)
	if again[0].TraineeID != "t-1" {
		t.Error("caller mutation leaked into the repository")
	}

	if err := repo.Save(ctx, nil); err != ErrNilEstimate {
		t.Errorf("Save(nil) = %v", err)
	}
}

func ids(items []*nutrition.Estimate) []nutrition.EstimateID {
	out := make([]nutrition.EstimateID, 0, len(items))
	for _, e := range items {
		out = append(out, e.ID)
	}
	return out
}

func TestOutboxClaimCycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	box := NewOutbox()
	box.now = func() time.Time { return now }
	ctx := context.Background()

	_ = box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "nutrition.estimate_computed"})
	_ = box.Add(ctx, appoutbox.EventRecord{ID: "2", Name: "nutrition.estimate_computed"})

	first, err := box.Claim(ctx, "w")
	if err != nil || first == nil || first.ID != "1" {
		t.Fatalf("first claim = %+v, %v", first, err)
	}
	second, _ := box.Claim(ctx, "w")
	if second == nil || second.ID != "2" {
		t.Fatalf("second claim = %+v", second)
	}
	if ev, _ := box.Claim(ctx, "w"); ev != nil {
		t.Fatalf("claimed record handed out twice: %+v", ev)
	}

	_ = box.MarkSent(ctx, "1")
	_ = box.MarkFailed(ctx, "2", now.Add(time.Minute), "broker down")
	if ev, _ := box.Claim(ctx, "w"); ev != nil {
		t.Fatalf("failed record claimed before its retry time")
	}
	now = now.Add(2 * time.Minute)
	retry, _ := box.Claim(ctx, "w")
	if retry == nil || retry.ID != "2" || retry.Attempts != 1 {
		t.Fatalf("retry claim = %+v", retry)
	}
	if box.Pending() != 1 {
		t.Errorf("pending = %d", box.Pending())
	}
}

func TestOutboxReclaimsExpiredLease(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	box := NewOutbox()
	box.now = func() time.Time { return now }
	ctx := context.Background()

	_ = box.Add(ctx, appoutbox.EventRecord{ID: "1", Name: "nutrition.estimate_computed"})
	if ev, _ := box.Claim(ctx, "crashed"); ev == nil {
		t.Fatal("nothing claimed")
	}
	now = now.Add(appoutbox.ClaimLease / 2)
	if ev, _ := box.Claim(ctx, "w"); ev != nil {
		t.Fatalf("record reclaimed inside its lease: %+v", ev)
	}
	now = now.Add(appoutbox.ClaimLease)
	ev, _ := box.Claim(ctx, "w")
	if ev == nil || ev.ID != "1" {
		t.Fatalf("expired claim = %+v", ev)
	}
}

func TestOutboxDropsSentRecords(t *testing.T) {
	box := NewOutbox()
	ctx := context.Background()
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("evt-%d", i)
		_ = box.Add(ctx, appoutbox.EventRecord{ID: id, Name: "nutrition.estimate_computed"})
		ev, err := box.Claim(ctx, "w")
		if err != nil || ev == nil || ev.ID != id {
			t.Fatalf("claim %d = %+v, %v", i, ev, err)
		}
		_ = box.MarkSent(ctx, id)
	}
	if box.Pending() != 0 || len(box.entries) != 0 {
		t.Errorf("pending = %d, retained = %d", box.Pending(), len(box.entries))
	}
}

func TestIdempotencyStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore(time.Hour)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	_ = store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`"x"`)})
	if rec, ok, _ := store.Get(ctx, "k"); !ok || string(rec.Payload) != `"x"` {
		t.Fatalf("Get = %+v, %v", rec, ok)
	}
	now = now.Add(2 * time.Hour)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Error("expired record returned")
	}
}
