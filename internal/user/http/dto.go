package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/request"
	"github.com/clubworks/equipment-booking-backend/internal/user"
)

// ListUsersRequest defines query parameters for listing users.
type ListUsersRequest struct {
	request.ListParams
	Email       string `form:"email"`
	DisplayName string `form:"display_name"`
	IsActive    *bool  `form:"is_active"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=email created_at"`
}

// UserResponse is the shape of user data returned in API responses.
type UserResponse struct {
	ID            string               `json:"id"`
	Email         string               `json:"email"`
	DisplayName   *string              `json:"display_name"`
	CreatedAt     time.Time            `json:"created_at"`
	LastLoginAt   *time.Time           `json:"last_login_at"`
	IsActive      bool                 `json:"is_active"`
	IsSystemAdmin bool                 `json:"is_system_admin"`
	Zones         []user.UserZoneBrief `json:"zones"`
}

// UserTag is a brief representation of a user.
type UserTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UpdateUserRequest is the payload for PATCH /v1/users/:id.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name"`
	IsActive    *bool   `json:"is_active"`
}

// NewUserResponse converts domain user.User to UserResponse used by the API.
func NewUserResponse(u *user.User) UserResponse {
	zones := u.Zones
	if zones == nil {
		zones = make([]user.UserZoneBrief, 0)
	}

	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
		IsActive:      u.IsActive,
		IsSystemAdmin: u.IsSystemAdmin,
		Zones:         zones,
	}
}
