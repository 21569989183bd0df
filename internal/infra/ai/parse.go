package ai

import (
	"regexp"
	"strconv"
	"strings"

	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
)

var (
	bareInteger  = regexp.MustCompile(`^\d+$`)
	firstInteger = regexp.MustCompile(`\d+`)
)

// MaxCalories bounds a salvaged figure. Anything above it is treated as noise.
const MaxCalories = 20000

var malformedMessages = map[nutrition.Locale]string{
	nutrition.LocaleArabic:  "لم يتمكن الذكاء الاصطناعي من حساب السعرات. حاول تعديل المدخلات.",
	nutrition.LocaleEnglish: "The AI could not calculate your calories. Try adjusting your inputs.",
}

var transportMessages = map[nutrition.Locale]string{
	nutrition.LocaleArabic:  "حدث خطأ أثناء الاتصال بخدمة الذكاء الاصطناعي لحساب السعرات.",
	nutrition.LocaleEnglish: "Something went wrong while contacting the AI calorie service.",
}

// MalformedResponseError carries the raw model reply alongside a message
// that can be shown to the trainee.
type MalformedResponseError struct {
	Raw     string
	Message string
}

func (e *MalformedResponseError) Error() string {
	return policies.ErrAIMalformedResponse.Error() + ": " + truncate(e.Raw, 80)
}

func (e *MalformedResponseError) Unwrap() error { return policies.ErrAIMalformedResponse }

func (e *MalformedResponseError) UserMessage() string { return e.Message }

// TransportError wraps a failed call to the model service.
type TransportError struct {
	Err     error
	Message string
}

func (e *TransportError) Error() string { return "ai: transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) UserMessage() string { return e.Message }

// ParseCalories extracts the calorie figure from a model reply. A reply that
// is only digits is taken as is, otherwise the first run of digits wins.
// Arabic-Indic digits are folded to ASCII first. Figures that overflow an int
// or exceed MaxCalories are rejected as malformed.
func ParseCalories(text string, locale nutrition.Locale) (string, error) {
	trimmed := strings.TrimSpace(foldDigits(text))
	candidate := trimmed
	if !bareInteger.MatchString(trimmed) {
		candidate = firstInteger.FindString(trimmed)
	}
	if candidate == "" || !plausible(candidate) {
		return "", &MalformedResponseError{Raw: text, Message: MalformedMessage(locale)}
	}
	return candidate, nil
}

// MalformedMessage is the trainee-facing text for an unusable model reply.
func MalformedMessage(locale nutrition.Locale) string {
	return malformedMessages[locale.OrDefault()]
}

func plausible(digits string) bool {
	n, err := strconv.Atoi(digits)
	return err == nil && n <= MaxCalories
}

func foldDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return r
	}, s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
