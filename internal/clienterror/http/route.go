package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	g.POST("/client-errors", h.Report)

	admin := g.Group("/admin/client-errors", authMiddleware, adminMiddleware)
	admin.GET("", h.List)
}
