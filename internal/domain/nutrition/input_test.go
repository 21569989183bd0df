package nutrition

import (
	"errors"
	"math"
	"testing"
)

func validInput() BiometricInput {
	return BiometricInput{Age: 25, Gender: GenderMale, WeightKg: 70, HeightCm: 175, ActivityLevel: ActivityModerate, Goal: GoalMaintainWeight}
}

func TestBiometricInput_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*BiometricInput)
		wantField string
	}{
		{"valid", func(*BiometricInput) {}, ""},
		{"minimum bounds", func(in *BiometricInput) { in.Age, in.WeightKg, in.HeightCm = 15, 30, 100 }, ""},
		{"maximum bounds", func(in *BiometricInput) { in.Age, in.WeightKg, in.HeightCm = 100, 200, 250 }, ""},
		{"too young", func(in *BiometricInput) { in.Age = 14 }, FieldAge},
		{"too old", func(in *BiometricInput) { in.Age = 101 }, FieldAge},
		{"unknown gender", func(in *BiometricInput) { in.Gender = "other" }, FieldGender},
		{"negative weight", func(in *BiometricInput) { in.WeightKg = -70 }, FieldWeight},
		{"nan weight", func(in *BiometricInput) { in.WeightKg = math.NaN() }, FieldWeight},
		{"infinite height", func(in *BiometricInput) { in.HeightCm = math.Inf(1) }, FieldHeight},
		{"too tall", func(in *BiometricInput) { in.HeightCm = 250.1 }, FieldHeight},
		{"missing activity", func(in *BiometricInput) { in.ActivityLevel = "" }, FieldActivityLevel},
		{"unknown goal", func(in *BiometricInput) { in.Goal = "BULK" }, FieldGoal},
		{"first bad field wins", func(in *BiometricInput) { in.Age, in.Goal = 5, "BULK" }, FieldAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			var inputErr *InputError
			if !errors.As(err, &inputErr) {
				t.Fatalf("Validate() = %v, want *InputError", err)
			}
			if inputErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", inputErr.Field, tt.wantField)
			}
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error %v does not wrap ErrInvalidInput", err)
			}
		})
	}
}

func TestParseForm(t *testing.T) {
	base := FormInput{Age: "25", Gender: "male", Weight: "70", Height: "175", ActivityLevel: "MODERATE", Goal: "MAINTAIN_WEIGHT"}

	tests := []struct {
		name      string
		mutate    func(*FormInput)
		want      BiometricInput
		wantField string
	}{
		{name: "wire values", mutate: func(*FormInput) {}, want: validInput()},
		{
			name: "camel case and padding",
			mutate: func(f *FormInput) {
				f.Age, f.Gender, f.Weight, f.Height = " 30 ", "Female", "60.5", " 165 "
				f.ActivityLevel, f.Goal = "extraActive", "loseWeight"
			},
			want: BiometricInput{Age: 30, Gender: GenderFemale, WeightKg: 60.5, HeightCm: 165, ActivityLevel: ActivityExtraActive, Goal: GoalLoseWeight},
		},
		{name: "empty age", mutate: func(f *FormInput) { f.Age = "" }, wantField: FieldAge},
		{name: "fractional age", mutate: func(f *FormInput) { f.Age = "25.5" }, wantField: FieldAge},
		{name: "age out of range before weight parse error", mutate: func(f *FormInput) { f.Age, f.Weight = "9", "abc" }, wantField: FieldAge},
		{name: "non numeric weight", mutate: func(f *FormInput) { f.Weight = "seventy" }, wantField: FieldWeight},
		{name: "nan weight", mutate: func(f *FormInput) { f.Weight = "NaN" }, wantField: FieldWeight},
		{name: "short height", mutate: func(f *FormInput) { f.Height = "99" }, wantField: FieldHeight},
		{name: "bad gender", mutate: func(f *FormInput) { f.Gender = "x" }, wantField: FieldGender},
		{name: "bad activity", mutate: func(f *FormInput) { f.ActivityLevel = "lazy" }, wantField: FieldActivityLevel},
		{name: "missing goal", mutate: func(f *FormInput) { f.Goal = " " }, wantField: FieldGoal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := base
			tt.mutate(&form)
			got, err := ParseForm(form)
			if tt.wantField != "" {
				var inputErr *InputError
				if !errors.As(err, &inputErr) {
					t.Fatalf("ParseForm() error = %v, want *InputError", err)
				}
				if inputErr.Field != tt.wantField {
					t.Errorf("field = %q, want %q (%v)", inputErr.Field, tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseForm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseEnums(t *testing.T) {
	levels := map[string]ActivityLevel{
		"SEDENTARY":    ActivitySedentary,
		"light":        ActivityLight,
		"Moderate":     ActivityModerate,
		"active":       ActivityActive,
		"EXTRA_ACTIVE": ActivityExtraActive,
		"extra-active": ActivityExtraActive,
	}
	for raw, want := range levels {
		got, err := ParseActivityLevel(raw)
		if err != nil || got != want {
			t.Errorf("ParseActivityLevel(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}

	goals := map[string]Goal{
		"LOSE_WEIGHT":     GoalLoseWeight,
		"maintainWeight":  GoalMaintainWeight,
		"gain weight":     GoalGainWeight,
		"MAINTAIN-WEIGHT": GoalMaintainWeight,
	}
	for raw, want := range goals {
		got, err := ParseGoal(raw)
		if err != nil || got != want {
			t.Errorf("ParseGoal(%q) = %q, %v; want %q", raw, got, err, want)
		}
	}

	if _, err := ParseGender("MALE"); err != nil {
		t.Errorf("ParseGender(MALE) = %v", err)
	}
}

func TestLabels(t *testing.T) {
	if got := GenderFemale.Label(LocaleArabic); got != "أنثى" {
		t.Errorf("female ar label = %q", got)
	}
	if got := ActivityExtraActive.Label(LocaleEnglish); got != "Extra active" {
		t.Errorf("extra active en label = %q", got)
	}
	if got := GoalGainWeight.Label(""); got != "زيادة الوزن" {
		t.Errorf("default locale label = %q, want Arabic", got)
	}
	for _, level := range ActivityLevels() {
		if level.Label(LocaleArabic) == string(level) || level.Label(LocaleEnglish) == string(level) {
			t.Errorf("%s has no label", level)
		}
	}

	for raw, want := range map[string]Locale{"ar": LocaleArabic, "EN-us": LocaleEnglish, "ar_EG": LocaleArabic} {
		got, ok := ParseLocale(raw)
		if !ok || got != want {
			t.Errorf("ParseLocale(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseLocale("fr"); ok {
		t.Error("ParseLocale(fr) accepted")
	}
}
