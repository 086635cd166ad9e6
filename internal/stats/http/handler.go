package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/wellness-booking-backend/internal/stats"
)

type Handler struct {
	service stats.Service
}

func NewHandler(service stats.Service) *Handler {
	return &Handler{service: service}
}

//
// GET /v1/admin/stats?from&to
//

func (h *Handler) Statistics(c *gin.Context) {
	var q StatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, to, err := q.Bounds()
	if err != nil {
		response.BadRequest(c, "invalid date range", err)
		return
	}

	s, err := h.service.Statistics(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStatsResponse(s))
}

//
// GET /v1/admin/reports/monthly?from=YYYY-MM&to=YYYY-MM
//

func (h *Handler) MonthlyPivot(c *gin.Context) {
	var q PivotQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, err := calendar.ParseMonth(q.From)
	if err != nil {
		response.BadRequest(c, "invalid month", err)
		return
	}
	to, err := calendar.ParseMonth(q.To)
	if err != nil {
		response.BadRequest(c, "invalid month", err)
		return
	}

	p, err := h.service.MonthlyPivot(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPivotResponse(p))
}
