package nutrition

import "math"

const (
	// goalAdjustmentKcal is the daily deficit or surplus for weight change goals,
	// roughly 0.45 kg of body mass per week.
	goalAdjustmentKcal = 500.0

	proteinGramsPerKg = 2.0
	fatCalorieShare   = 0.25

	kcalPerGramProtein = 4.0
	kcalPerGramCarb    = 4.0
	kcalPerGramFat     = 9.0
)

// CalorieResult holds daily energy and macro targets, each rounded on its own.
type CalorieResult struct {
	BMR            int `json:"bmr"`
	TDEE           int `json:"tdee"`
	TargetCalories int `json:"target_calories"`
	ProteinGrams   int `json:"protein_g"`
	CarbGrams      int `json:"carbs_g"`
	FatGrams       int `json:"fat_g"`
}

// Multiplier is the TDEE factor for the activity level. Unknown levels yield 0.
func (a ActivityLevel) Multiplier() float64 {
	switch a {
	case ActivitySedentary:
		return 1.2
	case ActivityLight:
		return 1.375
	case ActivityModerate:
		return 1.55
	case ActivityActive:
		return 1.725
	case ActivityExtraActive:
		return 1.9
	}
	return 0
}

// Adjust applies the goal to a TDEE value. Unknown goals leave it unchanged.
func (g Goal) Adjust(tdee float64) float64 {
	switch g {
	case GoalLoseWeight:
		return tdee - goalAdjustmentKcal
	case GoalGainWeight:
		return tdee + goalAdjustmentKcal
	case GoalMaintainWeight:
		return tdee
	}
	return tdee
}

// BasalMetabolicRate is the Mifflin-St Jeor estimate in kcal/day.
func BasalMetabolicRate(in BiometricInput) float64 {
	base := 10*in.WeightKg + 6.25*in.HeightCm - 5*float64(in.Age)
	if in.Gender == GenderMale {
		return base + 5
	}
	return base - 161
}

// Calculate runs the full pipeline on input that has already been validated.
// Macros are derived from the unrounded target, so the rounded grams do not
// have to add up exactly to TargetCalories.
func Calculate(in BiometricInput) CalorieResult {
	bmr := BasalMetabolicRate(in)
	tdee := bmr * in.ActivityLevel.Multiplier()
	target := in.Goal.Adjust(tdee)

	protein := in.WeightKg * proteinGramsPerKg
	fat := target * fatCalorieShare / kcalPerGramFat
	carbs := (target - protein*kcalPerGramProtein - fat*kcalPerGramFat) / kcalPerGramCarb

	return CalorieResult{
		BMR:            roundHalfUp(bmr),
		TDEE:           roundHalfUp(tdee),
		TargetCalories: roundHalfUp(target),
		ProteinGrams:   roundHalfUp(protein),
		CarbGrams:      roundHalfUp(carbs),
		FatGrams:       roundHalfUp(fat),
	}
}

// Compute validates the input and calculates the result.
func Compute(in BiometricInput) (CalorieResult, error) {
	if err := in.Validate(); err != nil {
		return CalorieResult{}, err
	}
	return Calculate(in), nil
}

// roundHalfUp rounds .5 towards positive infinity, so -2.5 becomes -2.
// Deficit goals on very light inputs can drive carbs negative.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
