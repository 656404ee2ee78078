package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers equipment routes. Listing and reading are open to
// any authenticated user; mutations are checked against zone management in
// the service layer.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/equipment")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.PATCH("/:id", h.Update)
		group.DELETE("/:id", h.Delete)

		group.GET("/:id/images", h.ListImages)
		group.POST("/:id/images", h.UploadImage)
		group.GET("/:id/images/:imageID", h.DownloadImage)
		group.GET("/:id/images/:imageID/thumbnail", h.DownloadThumbnail)
		group.DELETE("/:id/images/:imageID", h.DeleteImage)
	}
}
