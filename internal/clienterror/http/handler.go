package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/clienterror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/identity"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/response"
)

const defaultListLimit = 50

type Handler struct {
	repo clienterror.Repository
}

func NewHandler(repo clienterror.Repository) *Handler {
	return &Handler{repo: repo}
}

//
// POST /v1/client-errors
//

// Report stores an error raised in a browser. Clients may report before login,
// so the route is public and the user code is whatever the client sent.
func (h *Handler) Report(c *gin.Context) {
	var body ReportBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	if body.Type == "" {
		body.Type = "Error"
	}
	if body.UserCode != nil {
		code := identity.Normalize(*body.UserCode)
		body.UserCode = &code
	}
	if body.UserAgent == nil {
		if ua := c.Request.UserAgent(); ua != "" {
			body.UserAgent = &ua
		}
	}

	e := &clienterror.ClientError{
		Type:      body.Type,
		Message:   body.Message,
		Stack:     body.Stack,
		UserCode:  body.UserCode,
		PageURL:   body.PageURL,
		UserAgent: body.UserAgent,
		Extra:     body.Extra,
	}
	if err := h.repo.Append(c.Request.Context(), e); err != nil {
		response.Error(c, err)
		return
	}
	log.Printf("[client] %s: %s", e.Type, e.Message)
	c.Status(http.StatusAccepted)
}

//
// GET /v1/admin/client-errors?limit
//

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultListLimit
	}

	list, err := h.repo.List(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]ClientErrorResponse, len(list))
	for i, e := range list {
		items[i] = NewClientErrorResponse(e)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}
