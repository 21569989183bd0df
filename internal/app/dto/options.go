package dto

import "fitryne/internal/domain/nutrition"

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CalculatorOptions describes the calculator form: enum choices with labels
// and numeric bounds.
type CalculatorOptions struct {
	Locale         string           `json:"locale"`
	Genders        []Option         `json:"genders"`
	ActivityLevels []Option         `json:"activity_levels"`
	Goals          []Option         `json:"goals"`
	Bounds         map[string]Range `json:"bounds"`
}

func MapOptions(locale nutrition.Locale) CalculatorOptions {
	locale = locale.OrDefault()
	out := CalculatorOptions{
		Locale: string(locale),
		Bounds: map[string]Range{
			nutrition.FieldAge:    {Min: nutrition.MinAge, Max: nutrition.MaxAge},
			nutrition.FieldWeight: {Min: nutrition.MinWeightKg, Max: nutrition.MaxWeightKg},
			nutrition.FieldHeight: {Min: nutrition.MinHeightCm, Max: nutrition.MaxHeightCm},
		},
	}
	for _, g := range nutrition.Genders() {
		out.Genders = append(out.Genders, Option{Value: string(g), Label: g.Label(locale)})
	}
	for _, a := range nutrition.ActivityLevels() {
		out.ActivityLevels = append(out.ActivityLevels, Option{Value: string(a), Label: a.Label(locale)})
	}
	for _, g := range nutrition.Goals() {
		out.Goals = append(out.Goals, Option{Value: string(g), Label: g.Label(locale)})
	}
	return out
}
