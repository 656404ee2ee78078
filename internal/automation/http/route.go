package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers automation routes under the zones group.
// Reads are open to authenticated users; writes are checked against zone
// management in the service layer.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/zones/:id/automation")
	group.Use(authMiddleware)
	{
		group.GET("", h.GetSettings)
		group.PUT("/:type", h.UpdateSetting)
	}
}
