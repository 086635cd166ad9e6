package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/response"
)

type Handler struct {
	repo event.Repository
}

func NewHandler(repo event.Repository) *Handler {
	return &Handler{repo: repo}
}

//
// GET /v1/admin/events?page&page_size | ?from&to
//

func (h *Handler) List(c *gin.Context) {
	var req ListEventsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	ctx := c.Request.Context()

	if req.HasRange() {
		from, to, err := req.Bounds()
		if err != nil {
			response.BadRequest(c, "invalid date range", err)
			return
		}
		if from != nil && to != nil && from.After(*to) {
			response.Error(c, apperror.Validation("invalid_input", calendar.ErrInvalidRange.Error()))
			return
		}
		list, err := h.repo.ListByDateRange(ctx, event.RangeFilter{From: from, To: to})
		if err != nil {
			response.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, response.NewListResponse(newEventResponses(list)))
		return
	}

	req.Normalize()
	list, total, err := h.repo.List(ctx, req.PageSize, req.Offset())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewPageResponse(newEventResponses(list), req.Page, req.PageSize, total))
}
