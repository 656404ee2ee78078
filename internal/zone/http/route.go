package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers zone routes. Create and delete are system admin
// operations; update and member management are checked per-zone in the handler.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/zones")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", adminMiddleware, h.Create)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", adminMiddleware, h.Delete)

		group.GET("/:id/members", h.ListMembers)
		group.POST("/:id/members", h.AddMember)
		group.PATCH("/:id/members/:userID", h.UpdateMember)
		group.DELETE("/:id/members/:userID", h.RemoveMember)
	}
}
