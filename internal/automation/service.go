package automation

import (
	"context"

	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

// Service resolves and mutates per-zone automation settings.
// Every toggle defaults to disabled until a manager stores a value.
type Service interface {
	GetSettings(ctx context.Context, zoneID string) (Settings, error)
	SetSetting(ctx context.Context, zoneID string, settingType SettingType, enabled bool, callerID string) (*Setting, error)
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

func (s *service) GetSettings(ctx context.Context, zoneID string) (Settings, error) {
	if _, err := s.zoneService.GetByID(ctx, zoneID); err != nil {
		return Settings{}, err
	}

	stored, err := s.repo.ListByZone(ctx, zoneID)
	if err != nil {
		return Settings{}, err
	}

	var resolved Settings
	for _, row := range stored {
		switch row.Type {
		case SettingAutoApproval:
			resolved.AutoApproval = row.Enabled
		case SettingAutoEmail:
			resolved.AutoEmail = row.Enabled
		}
	}
	return resolved, nil
}

func (s *service) SetSetting(ctx context.Context, zoneID string, settingType SettingType, enabled bool, callerID string) (*Setting, error) {
	if !settingType.Valid() {
		return nil, ErrInvalidSettingType
	}
	if _, err := s.zoneService.GetByID(ctx, zoneID); err != nil {
		return nil, err
	}

	ok, err := s.zoneService.IsZoneManager(ctx, zoneID, callerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPermissionDenied
	}

	setting := &Setting{
		ZoneID:    zoneID,
		Type:      settingType,
		Enabled:   enabled,
		UpdatedBy: callerID,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
