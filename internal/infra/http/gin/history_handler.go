package ginserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	gin "github.com/gin-gonic/gin"

	"fitryne/internal/app/dto"
	estimatesapp "fitryne/internal/app/handlers/estimates"
	"fitryne/internal/app/queries"
	"fitryne/internal/infra/export/excel"
)

type HistoryHandler struct {
	Queries queries.Bus
}

func (h HistoryHandler) List(c *gin.Context) {
	history, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, history)
}

// Export streams the history as an xlsx workbook.
func (h HistoryHandler) Export(c *gin.Context) {
	history, ok := h.load(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteHistory(&buf, history); err != nil {
		writeError(c, requestLocale(c), err)
		return
	}
	filename := fmt.Sprintf("estimates-%s-%s.xlsx", safeFilename(history.TraineeID), time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, excel.ContentType, buf.Bytes())
}

func (h HistoryHandler) load(c *gin.Context) (dto.EstimateHistory, bool) {
	locale := requestLocale(c)
	if h.Queries == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queries unavailable"})
		return dto.EstimateHistory{}, false
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer", Field: "limit"})
			return dto.EstimateHistory{}, false
		}
		limit = n
	}
	q := estimatesapp.ListHistoryQuery{TraineeID: c.Param("id"), Limit: limit, Locale: locale}
	history, err := queries.Ask[estimatesapp.ListHistoryQuery, dto.EstimateHistory](c.Request.Context(), h.Queries, q)
	if err != nil {
		writeError(c, locale, err)
		return dto.EstimateHistory{}, false
	}
	return history, true
}

func safeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

var _ HistoryHTTP = HistoryHandler{}
