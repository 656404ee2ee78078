package automation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

type fakeRepo struct {
	rows map[string][]*Setting // zoneID -> settings
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[string][]*Setting)}
}

func (r *fakeRepo) ListByZone(_ context.Context, zoneID string) ([]*Setting, error) {
	return r.rows[zoneID], nil
}

func (r *fakeRepo) Upsert(_ context.Context, s *Setting) error {
	for _, existing := range r.rows[s.ZoneID] {
		if existing.Type == s.Type {
			existing.Enabled = s.Enabled
			existing.UpdatedBy = s.UpdatedBy
			return nil
		}
	}
	copied := *s
	r.rows[s.ZoneID] = append(r.rows[s.ZoneID], &copied)
	return nil
}

type fakeZoneService struct {
	zone.Service
	managers map[string]bool
}

func (f *fakeZoneService) GetByID(_ context.Context, id string) (*zone.Zone, error) {
	if id == "missing" {
		return nil, zone.ErrNotFound
	}
	return &zone.Zone{ID: id, Name: "North Zone"}, nil
}

func (f *fakeZoneService) IsZoneManager(_ context.Context, _, userID string) (bool, error) {
	return f.managers[userID], nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	zones := &fakeZoneService{managers: map[string]bool{"manager": true}}
	return NewService(repo, zones), repo
}

func TestGetSettings(t *testing.T) {
	t.Run("defaults to disabled when nothing stored", func(t *testing.T) {
		svc, _ := newTestService()

		settings, err := svc.GetSettings(context.Background(), "zone-1")
		require.NoError(t, err)

		assert.False(t, settings.AutoApproval)
		assert.False(t, settings.AutoEmail)
	})

	t.Run("resolves stored toggles", func(t *testing.T) {
		svc, repo := newTestService()
		repo.rows["zone-1"] = []*Setting{
			{ZoneID: "zone-1", Type: SettingAutoApproval, Enabled: true},
		}

		settings, err := svc.GetSettings(context.Background(), "zone-1")
		require.NoError(t, err)

		assert.True(t, settings.AutoApproval)
		assert.False(t, settings.AutoEmail)
	})

	t.Run("unknown zone", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.GetSettings(context.Background(), "missing")

		assert.ErrorIs(t, err, zone.ErrNotFound)
	})
}

func TestSetSetting(t *testing.T) {
	t.Run("manager toggles a setting", func(t *testing.T) {
		svc, _ := newTestService()
		ctx := context.Background()

		setting, err := svc.SetSetting(ctx, "zone-1", SettingAutoEmail, true, "manager")
		require.NoError(t, err)

		assert.Equal(t, SettingAutoEmail, setting.Type)
		assert.True(t, setting.Enabled)
		assert.Equal(t, "manager", setting.UpdatedBy)

		settings, err := svc.GetSettings(ctx, "zone-1")
		require.NoError(t, err)
		assert.True(t, settings.AutoEmail)
	})

	t.Run("non-manager is denied", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.SetSetting(context.Background(), "zone-1", SettingAutoApproval, true, "alice")

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("unknown setting type", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.SetSetting(context.Background(), "zone-1", SettingType("auto_everything"), true, "manager")

		assert.ErrorIs(t, err, ErrInvalidSettingType)
	})
}
