package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/identity"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func bindID(c *gin.Context) (string, bool) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, "invalid id", err)
		return "", false
	}
	return req.ID, true
}

//
// GET /v1/slots?date=YYYY-MM-DD
//

func (h *Handler) Slots(c *gin.Context) {
	var q SlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	date, err := calendar.ParseDate(q.Date)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	views, err := h.service.Availability(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}

	caller, isAdmin := auth.GetIdentity(c), auth.IsAdmin(c)
	slots := make([]SlotResponse, len(views))
	for i, v := range views {
		slots[i] = NewSlotResponse(v, caller, isAdmin)
	}
	c.JSON(http.StatusOK, SlotsResponse{Date: q.Date, Slots: slots})
}

//
// GET /v1/reservations/mine
//

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), auth.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newReservationResponses(list)))
}

//
// POST /v1/reservations
//

func (h *Handler) Reserve(c *gin.Context) {
	var body ReserveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	r, err := h.service.Reserve(c.Request.Context(), auth.GetIdentity(c), date, *body.Hour)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

//
// DELETE /v1/reservations/:id
//

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.service.Cancel(c.Request.Context(), id, auth.GetIdentity(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// GET /v1/admin/reservations?from&to
//

func (h *Handler) AdminList(c *gin.Context) {
	var q ListReservationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, to, err := q.Bounds()
	if err != nil {
		response.BadRequest(c, "invalid date range", err)
		return
	}

	ctx := c.Request.Context()
	var items []ReservationResponse
	if from == nil && to == nil {
		list, err := h.service.ListActive(ctx)
		if err != nil {
			response.Error(c, err)
			return
		}
		items = newReservationResponses(list)
	} else {
		list, err := h.service.ListByRange(ctx, from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		items = newReservationResponses(list)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

//
// POST /v1/admin/reservations
//

func (h *Handler) AdminReserve(c *gin.Context) {
	var body AdminReserveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	r, err := h.service.AdminReserve(c.Request.Context(), booking.AdminReserveRequest{
		Tenant: identity.Normalize(body.Tenant),
		Date:   date,
		Hour:   *body.Hour,
		Admin:  auth.GetIdentity(c),
		Note:   body.Note,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewReservationResponse(r))
}

//
// DELETE /v1/admin/reservations/:id
//

func (h *Handler) AdminCancel(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.service.AdminCancel(c.Request.Context(), id, auth.GetIdentity(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// PATCH /v1/admin/reservations/:id/note
//

func (h *Handler) SetNote(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var body NoteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	r, err := h.service.SetNote(c.Request.Context(), id, body.Note, auth.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewReservationResponse(r))
}

//
// GET /v1/admin/blocked-slots?from&to
//

func (h *Handler) ListBlocked(c *gin.Context) {
	var q request.DateRangeParams
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	from, to, err := q.Bounds()
	if err != nil {
		response.BadRequest(c, "invalid date range", err)
		return
	}

	list, err := h.service.ListBlocked(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]BlockedSlotResponse, len(list))
	for i, b := range list {
		items[i] = NewBlockedSlotResponse(b)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

//
// POST /v1/admin/blocked-slots
//

func (h *Handler) Block(c *gin.Context) {
	var body BlockBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	b, err := h.service.Block(c.Request.Context(), booking.BlockRequest{
		Date:   date,
		Hour:   *body.Hour,
		Reason: body.Reason,
		Admin:  auth.GetIdentity(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBlockedSlotResponse(b))
}

//
// DELETE /v1/admin/blocked-slots/:id
//

func (h *Handler) Unblock(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	if err := h.service.Unblock(c.Request.Context(), id, auth.GetIdentity(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// GET /v1/admin/reminders/due
//

func (h *Handler) DueReminders(c *gin.Context) {
	list, err := h.service.DueReminders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.NewListResponse(newReservationResponses(list)))
}

//
// POST /v1/admin/reminders/:id/sent
//

func (h *Handler) MarkReminderSent(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		return
	}
	var body ReminderSentBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}
	if err := h.service.MarkReminderSent(c.Request.Context(), id, body.SentAt); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

//
// POST /v1/admin/reminders/run
//

func (h *Handler) RunReminders(c *gin.Context) {
	sent, err := h.service.SendDueReminders(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, ReminderRunResponse{Sent: sent})
}
