package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clubworks/equipment-booking-backend/internal/auth"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/response"
	"github.com/clubworks/equipment-booking-backend/internal/user"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

type Handler struct {
	service     zone.Service
	userService user.Service
}

func NewHandler(service zone.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

// checkIsSysAdmin helper checks if the current user is a system admin
func (h *Handler) checkIsSysAdmin(c *gin.Context, userID string) bool {
	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		return false
	}
	return u.IsSystemAdmin
}

// canManageZone reports whether the caller is a zone manager or a system admin.
func (h *Handler) canManageZone(c *gin.Context, zoneID string) bool {
	userID := auth.GetUserID(c)
	if h.checkIsSysAdmin(c, userID) {
		return true
	}
	ok, err := h.service.IsZoneManager(c.Request.Context(), zoneID, userID)
	return err == nil && ok
}

func (h *Handler) List(c *gin.Context) {
	var req ListZonesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	req.Normalize()

	zones, total, err := h.service.List(c.Request.Context(), zone.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list zones"})
		return
	}

	items := make([]ZoneResponse, len(zones))
	for i, z := range zones {
		items[i] = NewZoneResponse(z)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	z, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewZoneResponse(z))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateZoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	z, err := h.service.Create(c.Request.Context(), zone.CreateRequest{
		Name:   body.Name,
		Region: body.Region,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewZoneResponse(z))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if !h.canManageZone(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var body UpdateZoneRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	z, err := h.service.Update(c.Request.Context(), id, zone.UpdateRequest{
		Name:     body.Name,
		Region:   body.Region,
		IsActive: body.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewZoneResponse(z))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListMembers(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if !h.canManageZone(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	members, total, err := h.service.ListMembers(c.Request.Context(), id, zone.MemberFilter{Page: 1, PageSize: 100})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = NewMemberResponse(m)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, 1, 100, total))
}

func (h *Handler) AddMember(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if !h.canManageZone(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var body AddMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.service.AddMember(c.Request.Context(), id, zone.AddMemberRequest{
		UserID: body.UserID,
		Role:   body.Role,
	}); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

func (h *Handler) UpdateMember(c *gin.Context) {
	id := c.Param("id")
	userID := c.Param("userID")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if !h.canManageZone(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	var body UpdateMemberRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.service.UpdateMemberRole(c.Request.Context(), id, userID, body.Role); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveMember(c *gin.Context) {
	id := c.Param("id")
	userID := c.Param("userID")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if !h.canManageZone(c, id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	if err := h.service.RemoveMember(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
