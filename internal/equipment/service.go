package equipment

import (
	"context"
	"strings"

	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

type CreateRequest struct {
	ZoneID          string
	Name            string
	Category        string
	Quantity        int
	DailyRateCents  int
	BondCents       int
	RequiresTrailer bool
	StorageLocation string
}

type UpdateRequest struct {
	Name            *string
	Category        *string
	Quantity        *int
	DailyRateCents  *int
	BondCents       *int
	RequiresTrailer *bool
	StorageLocation *string
	IsActive        *bool
}

// Service defines business logic for equipment items.
// Mutations require the caller to manage the owning zone.
type Service interface {
	Create(ctx context.Context, req CreateRequest, callerID string) (*Item, error)
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, filter Filter) ([]*Item, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, callerID string) (*Item, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type service struct {
	repo        Repository
	zoneService zone.Service
}

func NewService(repo Repository, zoneService zone.Service) Service {
	return &service{
		repo:        repo,
		zoneService: zoneService,
	}
}

func validCategory(category string) bool {
	for _, c := range ValidCategories {
		if category == c {
			return true
		}
	}
	return false
}

// requireZoneManager fails with ErrPermissionDenied unless callerID manages zoneID.
func (s *service) requireZoneManager(ctx context.Context, zoneID, callerID string) error {
	ok, err := s.zoneService.IsZoneManager(ctx, zoneID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest, callerID string) (*Item, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.ZoneID == "" {
		return nil, ErrInvalidZone
	}
	if !validCategory(req.Category) {
		return nil, ErrInvalidCategory
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	// Validation: zone must exist before the permission check.
	if _, err := s.zoneService.GetByID(ctx, req.ZoneID); err != nil {
		return nil, ErrInvalidZone
	}
	if err := s.requireZoneManager(ctx, req.ZoneID, callerID); err != nil {
		return nil, err
	}

	item := &Item{
		ZoneID:          req.ZoneID,
		Name:            strings.TrimSpace(req.Name),
		Category:        req.Category,
		Quantity:        req.Quantity,
		DailyRateCents:  req.DailyRateCents,
		BondCents:       req.BondCents,
		RequiresTrailer: req.RequiresTrailer,
		StorageLocation: strings.TrimSpace(req.StorageLocation),
		IsActive:        true,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Item, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Item, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, callerID string) (*Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireZoneManager(ctx, item.ZoneID, callerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		item.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		if !validCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		item.Category = *req.Category
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		item.Quantity = *req.Quantity
	}
	if req.DailyRateCents != nil {
		item.DailyRateCents = *req.DailyRateCents
	}
	if req.BondCents != nil {
		item.BondCents = *req.BondCents
	}
	if req.RequiresTrailer != nil {
		item.RequiresTrailer = *req.RequiresTrailer
	}
	if req.StorageLocation != nil {
		item.StorageLocation = strings.TrimSpace(*req.StorageLocation)
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) Delete(ctx context.Context, id string, callerID string) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireZoneManager(ctx, item.ZoneID, callerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
