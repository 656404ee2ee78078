package http

import (
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/equipment"
	"github.com/clubworks/equipment-booking-backend/internal/pkg/request"
)

// ItemTag is a brief representation of an equipment item for embedding in
// other responses.
type ItemTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemResponse is the full equipment item representation.
type ItemResponse struct {
	ID              string    `json:"id"`
	ZoneID          string    `json:"zone_id"`
	ZoneName        string    `json:"zone_name"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Quantity        int       `json:"quantity"`
	DailyRateCents  int       `json:"daily_rate_cents"`
	BondCents       int       `json:"bond_cents"`
	RequiresTrailer bool      `json:"requires_trailer"`
	StorageLocation string    `json:"storage_location"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func NewItemResponse(item *equipment.Item) ItemResponse {
	return ItemResponse{
		ID:              item.ID,
		ZoneID:          item.ZoneID,
		ZoneName:        item.ZoneName,
		Name:            item.Name,
		Category:        item.Category,
		Quantity:        item.Quantity,
		DailyRateCents:  item.DailyRateCents,
		BondCents:       item.BondCents,
		RequiresTrailer: item.RequiresTrailer,
		StorageLocation: item.StorageLocation,
		IsActive:        item.IsActive,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// CreateItemRequest is the payload for POST /v1/equipment.
type CreateItemRequest struct {
	ZoneID          string `json:"zone_id" binding:"required,uuid"`
	Name            string `json:"name" binding:"required"`
	Category        string `json:"category" binding:"required"`
	Quantity        int    `json:"quantity"`
	DailyRateCents  int    `json:"daily_rate_cents"`
	BondCents       int    `json:"bond_cents"`
	RequiresTrailer bool   `json:"requires_trailer"`
	StorageLocation string `json:"storage_location"`
}

// UpdateItemRequest is the payload for PATCH /v1/equipment/:id.
type UpdateItemRequest struct {
	Name            *string `json:"name"`
	Category        *string `json:"category"`
	Quantity        *int    `json:"quantity"`
	DailyRateCents  *int    `json:"daily_rate_cents"`
	BondCents       *int    `json:"bond_cents"`
	RequiresTrailer *bool   `json:"requires_trailer"`
	StorageLocation *string `json:"storage_location"`
	IsActive        *bool   `json:"is_active"`
}

// ListItemsRequest defines query parameters for listing equipment.
type ListItemsRequest struct {
	request.ListParams
	ZoneID   string `form:"zone_id"`
	Category string `form:"category"`
	IsActive *bool  `form:"is_active"`
}

// ImageResponse is one equipment photo row.
type ImageResponse struct {
	ID          string    `json:"id"`
	EquipmentID string    `json:"equipment_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewImageResponse(img *equipment.Image) ImageResponse {
	return ImageResponse{
		ID:          img.ID,
		EquipmentID: img.EquipmentID,
		Filename:    img.Filename,
		ContentType: img.ContentType,
		Size:        img.Size,
		CreatedAt:   img.CreatedAt,
	}
}
