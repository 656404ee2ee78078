package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/equipment"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/response"
)

const maxImageSize = 10 << 20 // 10 MB

type Handler struct {
	service      equipment.Service
	imageService equipment.ImageService
}

func NewHandler(service equipment.Service, imageService equipment.ImageService) *Handler {
	return &Handler{
		service:      service,
		imageService: imageService,
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.service.Create(c.Request.Context(), equipment.CreateRequest{
		ZoneID:          req.ZoneID,
		Name:            req.Name,
		Category:        req.Category,
		Quantity:        req.Quantity,
		DailyRateCents:  req.DailyRateCents,
		BondCents:       req.BondCents,
		RequiresTrailer: req.RequiresTrailer,
		StorageLocation: req.StorageLocation,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewItemResponse(item))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	item, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(item))
}

func (h *Handler) List(c *gin.Context) {
	var req ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	items, total, err := h.service.List(c.Request.Context(), equipment.Filter{
		ZoneID:   req.ZoneID,
		Category: req.Category,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]ItemResponse, len(items))
	for i, item := range items {
		resp[i] = NewItemResponse(item)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(resp, req.Page, req.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.service.Update(c.Request.Context(), id, equipment.UpdateRequest{
		Name:            req.Name,
		Category:        req.Category,
		Quantity:        req.Quantity,
		DailyRateCents:  req.DailyRateCents,
		BondCents:       req.BondCents,
		RequiresTrailer: req.RequiresTrailer,
		StorageLocation: req.StorageLocation,
		IsActive:        req.IsActive,
	}, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewItemResponse(item))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UploadImage(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	if header.Size > maxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	img, err := h.imageService.Upload(c.Request.Context(), id, header, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewImageResponse(img))
}

func (h *Handler) ListImages(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	images, err := h.imageService.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]ImageResponse, len(images))
	for i, img := range images {
		resp[i] = NewImageResponse(img)
	}

	c.JSON(http.StatusOK, gin.H{"images": resp})
}

func (h *Handler) DownloadImage(c *gin.Context) {
	h.serveImage(c, false)
}

func (h *Handler) DownloadThumbnail(c *gin.Context) {
	h.serveImage(c, true)
}

func (h *Handler) serveImage(c *gin.Context, thumbnail bool) {
	imageID := c.Param("imageID")
	if _, err := uuid.Parse(imageID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var (
		stream io.ReadCloser
		img    *equipment.Image
		err    error
	)
	if thumbnail {
		stream, img, err = h.imageService.DownloadThumbnail(c.Request.Context(), imageID)
	} else {
		stream, img, err = h.imageService.Download(c.Request.Context(), imageID)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	contentType := img.ContentType
	if thumbnail {
		contentType = "image/jpeg"
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", img.Filename))
	c.DataFromReader(http.StatusOK, -1, contentType, stream, nil)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	imageID := c.Param("imageID")
	if _, err := uuid.Parse(imageID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.imageService.Delete(c.Request.Context(), imageID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
