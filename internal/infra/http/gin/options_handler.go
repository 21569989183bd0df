package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"fitryne/internal/app/dto"
)

// OptionsHandler serves the calculator's choices and bounds so clients can
// render the form in either language.
type OptionsHandler struct{}

func (OptionsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MapOptions(requestLocale(c)))
}

var _ OptionsHTTP = OptionsHandler{}
