package api

import (
	userHttp "github.com/clubworks/equipment-booking-backend/internal/user/http"
)

// RegisterRequest is the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
}

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterResponse is the response for POST /v1/auth/register.
type RegisterResponse struct {
	User userHttp.UserResponse `json:"user"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string                `json:"access_token"`
	User        userHttp.UserResponse `json:"user"`
}

// MeResponse is the response for GET /v1/users/me.
type MeResponse struct {
	User userHttp.UserResponse `json:"user"`
}
