package ai

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
)

// TextGenerator sends one prompt to a generative model and returns its reply.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder receives the outcome of every model call.
type Recorder interface {
	ObserveAIRequest(took time.Duration, err error)
}

// Estimator implements policies.AICaloriePort on top of a TextGenerator.
// It applies no retries of its own.
type Estimator struct {
	Generator TextGenerator
	Timeout   time.Duration
	Logger    *slog.Logger
	Metrics   Recorder
}

func (e *Estimator) EstimateCalories(ctx context.Context, in nutrition.BiometricInput, locale nutrition.Locale) (calories string, err error) {
	if e == nil || e.Generator == nil {
		return "", policies.ErrAINotConfigured
	}
	locale = locale.OrDefault()
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		if e.Metrics != nil {
			e.Metrics.ObserveAIRequest(time.Since(start), err)
		}
	}()

	reply, err := e.Generator.Generate(ctx, BuildPrompt(in, locale))
	if err != nil {
		if errors.Is(err, policies.ErrAINotConfigured) {
			return "", err
		}
		e.logger().ErrorContext(ctx, "calorie model call failed", "error", err)
		return "", &TransportError{Err: err, Message: transportMessages[locale]}
	}

	calories, err = ParseCalories(reply, locale)
	if err != nil {
		e.logger().WarnContext(ctx, "calorie model reply has no number", "reply", truncate(reply, 200))
		return "", err
	}
	if calories != reply {
		e.logger().DebugContext(ctx, "calorie model reply was not a bare number", "reply", truncate(reply, 200), "calories", calories)
	}
	return calories, nil
}

func (e *Estimator) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

var _ policies.AICaloriePort = (*Estimator)(nil)
