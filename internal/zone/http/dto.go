package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/request"
	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

// ZoneTag is a brief representation of a zone for embedding in other responses.
type ZoneTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ZoneResponse is the full zone representation.
type ZoneResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewZoneResponse(z *zone.Zone) ZoneResponse {
	return ZoneResponse{
		ID:        z.ID,
		Name:      z.Name,
		Region:    z.Region,
		IsActive:  z.IsActive,
		CreatedAt: z.CreatedAt,
	}
}

// CreateZoneRequest is the payload for POST /v1/zones.
type CreateZoneRequest struct {
	Name   string `json:"name" binding:"required"`
	Region string `json:"region"`
}

// UpdateZoneRequest is the payload for PATCH /v1/zones/:id.
type UpdateZoneRequest struct {
	Name     *string `json:"name"`
	Region   *string `json:"region"`
	IsActive *bool   `json:"is_active"`
}

// ListZonesRequest defines query parameters for listing zones.
type ListZonesRequest struct {
	request.ListParams
}

// MemberResponse is one zone membership row.
type MemberResponse struct {
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	DisplayName *string `json:"display_name"`
	Role        string  `json:"role"`
}

func NewMemberResponse(m *zone.Member) MemberResponse {
	return MemberResponse{
		UserID:      m.UserID,
		Email:       m.Email,
		DisplayName: m.DisplayName,
		Role:        m.Role,
	}
}

// AddMemberRequest is the payload for POST /v1/zones/:id/members.
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role" binding:"required,oneof=manager member"`
}

// UpdateMemberRequest is the payload for PATCH /v1/zones/:id/members/:userID.
type UpdateMemberRequest struct {
	Role string `json:"role" binding:"required,oneof=manager member"`
}
