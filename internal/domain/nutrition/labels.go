package nutrition

import "strings"

// Locale selects the language of display labels and AI prompts.
type Locale string

const (
	LocaleArabic  Locale = "ar"
	LocaleEnglish Locale = "en"

	DefaultLocale = LocaleArabic
)

// ParseLocale recognises "ar" and "en" (case-insensitive, region ignored).
func ParseLocale(raw string) (Locale, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(raw, "-_"); i > 0 {
		raw = raw[:i]
	}
	switch Locale(raw) {
	case LocaleArabic, LocaleEnglish:
		return Locale(raw), true
	}
	return "", false
}

// OrDefault returns l, or DefaultLocale when l is not supported.
func (l Locale) OrDefault() Locale {
	if l == LocaleArabic || l == LocaleEnglish {
		return l
	}
	return DefaultLocale
}

func (g Gender) Label(l Locale) string {
	if l.OrDefault() == LocaleEnglish {
		switch g {
		case GenderMale:
			return "Male"
		case GenderFemale:
			return "Female"
		}
		return string(g)
	}
	switch g {
	case GenderMale:
		return "ذكر"
	case GenderFemale:
		return "أنثى"
	}
	return string(g)
}

func (a ActivityLevel) Label(l Locale) string {
	if l.OrDefault() == LocaleEnglish {
		switch a {
		case ActivitySedentary:
			return "Sedentary"
		case ActivityLight:
			return "Lightly active"
		case ActivityModerate:
			return "Moderately active"
		case ActivityActive:
			return "Very active"
		case ActivityExtraActive:
			return "Extra active"
		}
		return string(a)
	}
	switch a {
	case ActivitySedentary:
		return "قليل الحركة"
	case ActivityLight:
		return "نشاط خفيف"
	case ActivityModerate:
		return "نشاط متوسط"
	case ActivityActive:
		return "نشاط عالي"
	case ActivityExtraActive:
		return "نشاط مكثف"
	}
	return string(a)
}

func (g Goal) Label(l Locale) string {
	if l.OrDefault() == LocaleEnglish {
		switch g {
		case GoalLoseWeight:
			return "Lose weight"
		case GoalMaintainWeight:
			return "Maintain weight"
		case GoalGainWeight:
			return "Gain weight"
		}
		return string(g)
	}
	switch g {
	case GoalLoseWeight:
		return "إنقاص الوزن"
	case GoalMaintainWeight:
		return "الحفاظ على الوزن"
	case GoalGainWeight:
		return "زيادة الوزن"
	}
	return string(g)
}
