package policies

import (
	"context"
	"errors"

	"fitryne/internal/domain/nutrition"
)

var (
	// ErrAINotConfigured means no model client or API key is available. It is
	// never retried.
	ErrAINotConfigured = errors.New("ai: calorie model not configured")
	// ErrAIMalformedResponse means the model replied without a usable integer.
	ErrAIMalformedResponse = errors.New("ai: response contains no calorie figure")
)

// AICaloriePort asks a generative model for a daily calorie figure. The
// returned string holds decimal digits only. Errors other than the two
// sentinels above are transport failures and are left to the caller to retry.
type AICaloriePort interface {
	EstimateCalories(ctx context.Context, in nutrition.BiometricInput, locale nutrition.Locale) (string, error)
}

// UserMessage is implemented by errors that carry a localized explanation
// safe to show to the trainee.
type UserMessage interface {
	UserMessage() string
}
