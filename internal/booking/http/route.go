package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Authenticated Routes ===
	authed := g.Group("", authMiddleware)
	{
		authed.GET("/slots", h.Slots)
		authed.GET("/reservations/mine", h.ListMine)
		authed.POST("/reservations", h.Reserve)
		authed.DELETE("/reservations/:id", h.Cancel)
	}

	// === Administrator Routes ===
	admin := g.Group("/admin", authMiddleware, adminMiddleware)
	{
		admin.GET("/reservations", h.AdminList)
		admin.POST("/reservations", h.AdminReserve)
		admin.DELETE("/reservations/:id", h.AdminCancel)
		admin.PATCH("/reservations/:id/note", h.SetNote)

		admin.GET("/blocked-slots", h.ListBlocked)
		admin.POST("/blocked-slots", h.Block)
		admin.DELETE("/blocked-slots/:id", h.Unblock)

		admin.GET("/reminders/due", h.DueReminders)
		admin.POST("/reminders/:id/sent", h.MarkReminderSent)
		admin.POST("/reminders/run", h.RunReminders)
	}
}
