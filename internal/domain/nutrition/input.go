package nutrition

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Accepted ranges for biometric input. They match the bounds the trainee form
// has always advertised.
const (
	MinAge      = 15
	MaxAge      = 100
	MinWeightKg = 30.0
	MaxWeightKg = 200.0
	MinHeightCm = 100.0
	MaxHeightCm = 250.0
)

// Form field names, used in InputError.Field.
const (
	FieldAge           = "age"
	FieldGender        = "gender"
	FieldWeight        = "weight"
	FieldHeight        = "height"
	FieldActivityLevel = "activityLevel"
	FieldGoal          = "goal"
)

var ErrInvalidInput = errors.New("nutrition: invalid input")

// InputError reports the first field that failed parsing or range checks.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("nutrition: invalid %s: %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type ActivityLevel string

const (
	ActivitySedentary   ActivityLevel = "SEDENTARY"
	ActivityLight       ActivityLevel = "LIGHT"
	ActivityModerate    ActivityLevel = "MODERATE"
	ActivityActive      ActivityLevel = "ACTIVE"
	ActivityExtraActive ActivityLevel = "EXTRA_ACTIVE"
)

type Goal string

const (
	GoalLoseWeight     Goal = "LOSE_WEIGHT"
	GoalMaintainWeight Goal = "MAINTAIN_WEIGHT"
	GoalGainWeight     Goal = "GAIN_WEIGHT"
)

// Genders lists the accepted genders in display order.
func Genders() []Gender { return []Gender{GenderMale, GenderFemale} }

// ActivityLevels lists activity levels from least to most active.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityExtraActive}
}

// Goals lists goals in display order.
func Goals() []Goal { return []Goal{GoalLoseWeight, GoalMaintainWeight, GoalGainWeight} }

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale:
		return true
	}
	return false
}

func (a ActivityLevel) Valid() bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityExtraActive:
		return true
	}
	return false
}

func (g Goal) Valid() bool {
	switch g {
	case GoalLoseWeight, GoalMaintainWeight, GoalGainWeight:
		return true
	}
	return false
}

// ParseGender accepts "male"/"female" in any case.
func ParseGender(raw string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(raw)))
	if !g.Valid() {
		return "", unknownValue(FieldGender, raw)
	}
	return g, nil
}

// ParseActivityLevel accepts the wire names (EXTRA_ACTIVE) as well as
// camelCase or dashed spellings (extraActive, extra-active).
func ParseActivityLevel(raw string) (ActivityLevel, error) {
	switch enumKey(raw) {
	case "SEDENTARY":
		return ActivitySedentary, nil
	case "LIGHT":
		return ActivityLight, nil
	case "MODERATE":
		return ActivityModerate, nil
	case "ACTIVE":
		return ActivityActive, nil
	case "EXTRAACTIVE":
		return ActivityExtraActive, nil
	}
	return "", unknownValue(FieldActivityLevel, raw)
}

// ParseGoal accepts LOSE_WEIGHT, loseWeight, lose-weight and so on.
func ParseGoal(raw string) (Goal, error) {
	switch enumKey(raw) {
	case "LOSEWEIGHT":
		return GoalLoseWeight, nil
	case "MAINTAINWEIGHT":
		return GoalMaintainWeight, nil
	case "GAINWEIGHT":
		return GoalGainWeight, nil
	}
	return "", unknownValue(FieldGoal, raw)
}

var enumKeyReplacer = strings.NewReplacer("_", "", "-", "", " ", "")

func enumKey(raw string) string {
	return strings.ToUpper(enumKeyReplacer.Replace(strings.TrimSpace(raw)))
}

func unknownValue(field, raw string) *InputError {
	if strings.TrimSpace(raw) == "" {
		return invalid(field, "is required")
	}
	return invalid(field, "unknown value %q", raw)
}

// BiometricInput is what the calculator needs to know about a trainee.
type BiometricInput struct {
	Age           int           `json:"age"`
	Gender        Gender        `json:"gender"`
	WeightKg      float64       `json:"weight_kg"`
	HeightCm      float64       `json:"height_cm"`
	ActivityLevel ActivityLevel `json:"activity_level"`
	Goal          Goal          `json:"goal"`
}

// Validate checks every field against its documented domain. Fields are
// checked in form order and the first failure is returned.
func (in BiometricInput) Validate() error {
	if err := validateAge(in.Age); err != nil {
		return err
	}
	if !in.Gender.Valid() {
		return unknownValue(FieldGender, string(in.Gender))
	}
	if err := validateRange(FieldWeight, in.WeightKg, MinWeightKg, MaxWeightKg); err != nil {
		return err
	}
	if err := validateRange(FieldHeight, in.HeightCm, MinHeightCm, MaxHeightCm); err != nil {
		return err
	}
	if !in.ActivityLevel.Valid() {
		return unknownValue(FieldActivityLevel, string(in.ActivityLevel))
	}
	if !in.Goal.Valid() {
		return unknownValue(FieldGoal, string(in.Goal))
	}
	return nil
}

func validateAge(age int) error {
	if age < MinAge || age > MaxAge {
		return invalid(FieldAge, "must be between %d and %d", MinAge, MaxAge)
	}
	return nil
}

func validateRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < lo || v > hi {
		return invalid(field, "must be between %g and %g", lo, hi)
	}
	return nil
}

// FormInput carries the raw strings submitted by the calculator form.
type FormInput struct {
	Age           string `form:"age" json:"age"`
	Gender        string `form:"gender" json:"gender"`
	Weight        string `form:"weight" json:"weight"`
	Height        string `form:"height" json:"height"`
	ActivityLevel string `form:"activityLevel" json:"activityLevel"`
	Goal          string `form:"goal" json:"goal"`
}

// ParseForm parses and range-checks the raw form values. Each field is fully
// checked before moving on to the next, so the error always names the first
// bad field in form order.
func ParseForm(f FormInput) (BiometricInput, error) {
	var in BiometricInput

	age, err := parseWhole(FieldAge, f.Age)
	if err != nil {
		return BiometricInput{}, err
	}
	if err := validateAge(age); err != nil {
		return BiometricInput{}, err
	}
	in.Age = age

	if in.Gender, err = ParseGender(f.Gender); err != nil {
		return BiometricInput{}, err
	}

	if in.WeightKg, err = parseDecimal(FieldWeight, f.Weight, MinWeightKg, MaxWeightKg); err != nil {
		return BiometricInput{}, err
	}
	if in.HeightCm, err = parseDecimal(FieldHeight, f.Height, MinHeightCm, MaxHeightCm); err != nil {
		return BiometricInput{}, err
	}

	if in.ActivityLevel, err = ParseActivityLevel(f.ActivityLevel); err != nil {
		return BiometricInput{}, err
	}
	if in.Goal, err = ParseGoal(f.Goal); err != nil {
		return BiometricInput{}, err
	}
	return in, nil
}

func parseWhole(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid(field, "is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid(field, "must be a whole number")
	}
	return v, nil
}

func parseDecimal(field, raw string, lo, hi float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, invalid(field, "is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid(field, "must be a number")
	}
	if err := validateRange(field, v, lo, hi); err != nil {
		return 0, err
	}
	return v, nil
}
