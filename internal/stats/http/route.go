package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/admin", authMiddleware, adminMiddleware)
	{
		group.GET("/stats", h.Statistics)
		group.GET("/reports/monthly", h.MonthlyPivot)
	}
}
