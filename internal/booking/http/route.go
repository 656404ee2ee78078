package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes, plus the availability and chain
// reads that hang off the equipment resource. Permission checks live in the
// service layer.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.POST("", h.Create)
		bookings.GET("", h.List)
		bookings.GET("/:id", h.Get)
		bookings.GET("/:id/handover", h.GetHandover)

		bookings.POST("/:id/approve", h.Approve)
		bookings.POST("/:id/reject", h.Reject)
		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/confirm", h.Confirm)
		bookings.POST("/:id/pickup", h.MarkPickedUp)
		bookings.POST("/:id/activate", h.MarkInUse)
	}

	equipment := g.Group("/equipment")
	equipment.Use(authMiddleware)
	{
		equipment.GET("/:id/availability", h.CheckAvailability)
		equipment.GET("/:id/chain", h.GetChain)
	}
}
