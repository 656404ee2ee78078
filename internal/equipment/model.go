package equipment

import (
	"net/http"
	"time"

	"github.com/clubworks/equipment-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "equipment not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "equipment name is required")
	ErrInvalidZone      = apperror.New(http.StatusBadRequest, "invalid zone_id")
	ErrInvalidQuantity  = apperror.New(http.StatusBadRequest, "quantity must be at least 1")
	ErrInvalidCategory  = apperror.New(http.StatusBadRequest, "invalid equipment category")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrImageNotFound    = apperror.New(http.StatusNotFound, "equipment image not found")
	ErrNotAnImage       = apperror.New(http.StatusBadRequest, "uploaded file is not an image")
)

// Categories of shared equipment a zone can own.
const (
	CategoryTrailer = "trailer"
	CategoryJumps   = "jumps"
	CategoryGates   = "gates"
	CategoryTiming  = "timing"
	CategoryOther   = "other"
)

// ValidCategories lists the accepted category values.
var ValidCategories = []string{
	CategoryTrailer, CategoryJumps, CategoryGates, CategoryTiming, CategoryOther,
}

// Item represents a piece of shared physical equipment owned by a zone.
// Quantity and pricing are read-only inputs to the booking scheduler.
type Item struct {
	ID              string // UUID
	ZoneID          string
	ZoneName        string
	Name            string
	Category        string
	Quantity        int
	DailyRateCents  int
	BondCents       int
	RequiresTrailer bool
	StorageLocation string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Filter defines parameters for listing equipment.
type Filter struct {
	ZoneID   string
	Category string
	IsActive *bool
	Page     int
	PageSize int
}

// Image is a photo attached to an equipment item.
type Image struct {
	ID            string    `json:"id"`
	EquipmentID   string    `json:"equipment_id"`
	UploadedBy    string    `json:"uploaded_by"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"-"`
	ThumbnailPath *string   `json:"-"`
	ContentType   string    `json:"content_type"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"created_at"`
}
