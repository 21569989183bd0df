package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"fitryne/internal/app/commands"
	"fitryne/internal/app/dto"
	estimatesapp "fitryne/internal/app/handlers/estimates"
	"fitryne/internal/domain/nutrition"
)

type EstimateHandler struct {
	Commands commands.Bus
}

// estimateJSON is the JSON body. Enum values go through the same lenient
// parsers as form input.
type estimateJSON struct {
	TraineeID     string  `json:"trainee_id"`
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	WeightKg      float64 `json:"weight_kg"`
	HeightCm      float64 `json:"height_cm"`
	ActivityLevel string  `json:"activity_level"`
	Goal          string  `json:"goal"`
}

type estimateForm struct {
	nutrition.FormInput
	TraineeID string `form:"trainee_id"`
}

func (h EstimateHandler) Compute(c *gin.Context) {
	locale := requestLocale(c)
	traineeID, in, ok := bindEstimate(c, locale)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := estimatesapp.ComputeEstimateCommand{
		CommandID:       generateCommandID(),
		TraineeID:       traineeID,
		Input:           in,
		Locale:          locale,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[estimatesapp.ComputeEstimateCommand, dto.Estimate](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h EstimateHandler) AskAI(c *gin.Context) {
	locale := requestLocale(c)
	traineeID, in, ok := bindEstimate(c, locale)
	if !ok {
		return
	}
	if h.Commands == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "commands unavailable"})
		return
	}
	cmd := estimatesapp.AIEstimateCommand{
		CommandID:       generateCommandID(),
		TraineeID:       traineeID,
		Input:           in,
		Locale:          locale,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[estimatesapp.AIEstimateCommand, dto.Estimate](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		writeError(c, locale, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// bindEstimate accepts either a JSON body or form fields and writes the
// error response itself when the request cannot be parsed.
func bindEstimate(c *gin.Context, locale nutrition.Locale) (string, nutrition.BiometricInput, bool) {
	if c.ContentType() == binding.MIMEJSON {
		var req estimateJSON
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return "", nutrition.BiometricInput{}, false
		}
		in, err := req.toInput()
		if err != nil {
			writeError(c, locale, err)
			return "", nutrition.BiometricInput{}, false
		}
		return req.TraineeID, in, true
	}

	var form estimateForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return "", nutrition.BiometricInput{}, false
	}
	in, err := nutrition.ParseForm(form.FormInput)
	if err != nil {
		writeError(c, locale, err)
		return "", nutrition.BiometricInput{}, false
	}
	return form.TraineeID, in, true
}

// toInput reports the first bad field in form order, whether the failure is
// an unknown enum or an out-of-range number.
func (r estimateJSON) toInput() (nutrition.BiometricInput, error) {
	in := nutrition.BiometricInput{
		Age:           r.Age,
		Gender:        nutrition.Gender(r.Gender),
		WeightKg:      r.WeightKg,
		HeightCm:      r.HeightCm,
		ActivityLevel: nutrition.ActivityLevel(r.ActivityLevel),
		Goal:          nutrition.Goal(r.Goal),
	}
	if g, err := nutrition.ParseGender(r.Gender); err == nil {
		in.Gender = g
	}
	if level, err := nutrition.ParseActivityLevel(r.ActivityLevel); err == nil {
		in.ActivityLevel = level
	}
	if goal, err := nutrition.ParseGoal(r.Goal); err == nil {
		in.Goal = goal
	}
	return in, in.Validate()
}

func generateCommandID() string {
	return uuid.NewString()
}

var _ EstimateHTTP = EstimateHandler{}
