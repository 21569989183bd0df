package dto

import (
	"time"

	"fitryne/internal/domain/nutrition"
)

type BiometricInput struct {
	Age                int     `json:"age"`
	Gender             string  `json:"gender"`
	GenderLabel        string  `json:"gender_label"`
	WeightKg           float64 `json:"weight_kg"`
	HeightCm           float64 `json:"height_cm"`
	ActivityLevel      string  `json:"activity_level"`
	ActivityLevelLabel string  `json:"activity_level_label"`
	Goal               string  `json:"goal"`
	GoalLabel          string  `json:"goal_label"`
}

// Estimate is the response shape for both calculator paths and history items.
// Result is set for formula estimates, Calories for AI ones.
type Estimate struct {
	EstimateID string                   `json:"estimate_id,omitempty"`
	TraineeID  string                   `json:"trainee_id,omitempty"`
	Source     string                   `json:"source"`
	Locale     string                   `json:"locale"`
	Input      BiometricInput           `json:"input"`
	Result     *nutrition.CalorieResult `json:"result,omitempty"`
	Calories   string                   `json:"calories,omitempty"`
	CreatedAt  time.Time                `json:"created_at"`
}

type EstimateHistory struct {
	TraineeID string     `json:"trainee_id"`
	Locale    string     `json:"locale"`
	Items     []Estimate `json:"items"`
}

func MapInput(in nutrition.BiometricInput, locale nutrition.Locale) BiometricInput {
	return BiometricInput{
		Age:                in.Age,
		Gender:             string(in.Gender),
		GenderLabel:        in.Gender.Label(locale),
		WeightKg:           in.WeightKg,
		HeightCm:           in.HeightCm,
		ActivityLevel:      string(in.ActivityLevel),
		ActivityLevelLabel: in.ActivityLevel.Label(locale),
		Goal:               string(in.Goal),
		GoalLabel:          in.Goal.Label(locale),
	}
}

func MapEstimate(e *nutrition.Estimate, locale nutrition.Locale) Estimate {
	locale = locale.OrDefault()
	out := Estimate{
		EstimateID: string(e.ID),
		TraineeID:  e.TraineeID,
		Source:     string(e.Source),
		Locale:     string(locale),
		Input:      MapInput(e.Input, locale),
		CreatedAt:  e.CreatedAt,
	}
	if e.Source == nutrition.SourceAI {
		out.Calories = e.AICalories
	} else {
		result := e.Result
		out.Result = &result
	}
	return out
}

func MapHistory(traineeID string, items []*nutrition.Estimate, locale nutrition.Locale) EstimateHistory {
	locale = locale.OrDefault()
	out := EstimateHistory{
		TraineeID: traineeID,
		Locale:    string(locale),
		Items:     make([]Estimate, 0, len(items)),
	}
	for _, e := range items {
		if e == nil {
			continue
		}
		out.Items = append(out.Items, MapEstimate(e, locale))
	}
	return out
}
