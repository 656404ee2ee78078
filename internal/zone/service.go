package zone

import (
	"context"
	"errors"
	"strings"

	"github.com/clubworks/equipment-booking-backend/internal/user"
)

// CreateRequest defines fields for creating a zone.
type CreateRequest struct {
	Name   string
	Region string
}

// UpdateRequest defines the fields that can be updated.
type UpdateRequest struct {
	Name     *string
	Region   *string
	IsActive *bool
}

// AddMemberRequest defines fields for adding a member.
type AddMemberRequest struct {
	UserID string
	Role   string
}

// Service defines business logic for zones and zone membership.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Zone, error)
	GetByID(ctx context.Context, id string) (*Zone, error)
	List(ctx context.Context, filter Filter) ([]*Zone, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Zone, error)
	Delete(ctx context.Context, id string) error

	GetMember(ctx context.Context, zoneID, userID string) (*Member, error)
	AddMember(ctx context.Context, zoneID string, req AddMemberRequest) error
	RemoveMember(ctx context.Context, zoneID, userID string) error
	UpdateMemberRole(ctx context.Context, zoneID, userID, role string) error
	ListMembers(ctx context.Context, zoneID string, filter MemberFilter) ([]*Member, int, error)

	// IsZoneManager reports whether userID holds the manager role in the
	// zone. It is the authorization check consumed by the booking scheduler.
	IsZoneManager(ctx context.Context, zoneID, userID string) (bool, error)
	ListManagerIDs(ctx context.Context, zoneID string) ([]string, error)
}

type service struct {
	repo        Repository
	userService user.Service
}

// NewService creates a new zone service.
func NewService(repo Repository, userService user.Service) Service {
	return &service{repo: repo, userService: userService}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Zone, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	z := &Zone{
		Name:     name,
		Region:   strings.TrimSpace(req.Region),
		IsActive: true,
	}

	if err := s.repo.Create(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Zone, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Zone, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Zone, error) {
	z, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		newName := strings.TrimSpace(*req.Name)
		if newName == "" {
			return nil, ErrNameRequired
		}
		z.Name = newName
	}
	if req.Region != nil {
		z.Region = strings.TrimSpace(*req.Region)
	}
	if req.IsActive != nil {
		z.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, z); err != nil {
		return nil, err
	}
	return z, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *service) GetMember(ctx context.Context, zoneID, userID string) (*Member, error) {
	return s.repo.GetMember(ctx, zoneID, userID)
}

func (s *service) AddMember(ctx context.Context, zoneID string, req AddMemberRequest) error {
	if req.Role != RoleManager && req.Role != RoleMember {
		return ErrInvalidRole
	}

	// Zone and user must both exist.
	if _, err := s.repo.GetByID(ctx, zoneID); err != nil {
		return err
	}
	if _, err := s.userService.GetByID(ctx, req.UserID); err != nil {
		return err
	}

	return s.repo.AddMember(ctx, zoneID, req.UserID, req.Role)
}

func (s *service) RemoveMember(ctx context.Context, zoneID, userID string) error {
	return s.repo.RemoveMember(ctx, zoneID, userID)
}

func (s *service) UpdateMemberRole(ctx context.Context, zoneID, userID, role string) error {
	if role != RoleManager && role != RoleMember {
		return ErrInvalidRole
	}
	return s.repo.UpdateMemberRole(ctx, zoneID, userID, role)
}

func (s *service) ListMembers(ctx context.Context, zoneID string, filter MemberFilter) ([]*Member, int, error) {
	return s.repo.ListMembers(ctx, zoneID, filter)
}

func (s *service) IsZoneManager(ctx context.Context, zoneID, userID string) (bool, error) {
	m, err := s.repo.GetMember(ctx, zoneID, userID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return false, nil
		}
		return false, err
	}
	return m.Role == RoleManager, nil
}

func (s *service) ListManagerIDs(ctx context.Context, zoneID string) ([]string, error) {
	return s.repo.ListManagerIDs(ctx, zoneID)
}
