package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"fitryne/internal/app/middleware"
	"fitryne/internal/app/policies"
	"fitryne/internal/domain/nutrition"
	"fitryne/internal/infra/ai"
	"fitryne/internal/infra/validation"
)

var notConfiguredMessages = map[nutrition.Locale]string{
	nutrition.LocaleArabic:  "خدمة الذكاء الاصطناعي غير مهيأة حاليًا. استخدم الحاسبة العادية.",
	nutrition.LocaleEnglish: "The AI calorie service is not configured. Use the standard calculator instead.",
}

type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// writeError maps use-case errors to HTTP statuses.
func writeError(c *gin.Context, locale nutrition.Locale, err error) {
	_ = c.Error(err)

	var inputErr *nutrition.InputError
	var validationErr *validation.Error
	var transportErr *ai.TransportError
	var userMsg policies.UserMessage

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: inputErr.Error(), Field: inputErr.Field})
	case errors.As(err, &validationErr):
		resp := errorResponse{Error: validationErr.Error()}
		if len(validationErr.Fields) > 0 {
			resp.Field = validationErr.Fields[0].Field
		}
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, nutrition.ErrTraineeRequired):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, middleware.ErrIdempotencyConflict):
		c.JSON(http.StatusConflict, errorResponse{Error: middleware.ErrIdempotencyConflict.Error()})
	case errors.Is(err, policies.ErrAINotConfigured):
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: policies.ErrAINotConfigured.Error(), Message: notConfiguredMessages[locale.OrDefault()]})
	case errors.Is(err, policies.ErrAIMalformedResponse):
		resp := errorResponse{Error: policies.ErrAIMalformedResponse.Error()}
		if errors.As(err, &userMsg) {
			resp.Message = userMsg.UserMessage()
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, nutrition.ErrAICaloriesInvalid):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: policies.ErrAIMalformedResponse.Error(), Message: ai.MalformedMessage(locale)})
	case errors.As(err, &transportErr):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "ai: upstream failure", Message: transportErr.UserMessage()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
