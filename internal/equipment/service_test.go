package equipment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubworks/equipment-booking-backend/internal/zone"
)

type fakeRepo struct {
	mu     sync.Mutex
	items  map[string]*Item
	images map[string]*Image
	seq    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string]*Item{}, images: map[string]*Image{}}
}

func (r *fakeRepo) Create(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	item.ID = "item-" + string(rune('0'+r.seq))
	item.CreatedAt = time.Now().UTC()
	item.UpdatedAt = item.CreatedAt
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, filter Filter) ([]*Item, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Item, 0, len(r.items))
	for _, item := range r.items {
		if filter.ZoneID != "" && item.ZoneID != filter.ZoneID {
			continue
		}
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		copied := *item
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeRepo) Update(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[item.ID]; !ok {
		return ErrNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeRepo) CreateImage(_ context.Context, img *Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	img.ID = "img-" + string(rune('0'+r.seq))
	copied := *img
	r.images[img.ID] = &copied
	return nil
}

func (r *fakeRepo) GetImage(_ context.Context, id string) (*Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	img, ok := r.images[id]
	if !ok {
		return nil, ErrImageNotFound
	}
	copied := *img
	return &copied, nil
}

func (r *fakeRepo) ListImages(_ context.Context, equipmentID string) ([]*Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Image
	for _, img := range r.images {
		if img.EquipmentID == equipmentID {
			copied := *img
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRepo) DeleteImage(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.images[id]; !ok {
		return ErrImageNotFound
	}
	delete(r.images, id)
	return nil
}

// fakeZoneService knows one zone with one manager.
type fakeZoneService struct {
	zone.Service
	zoneID    string
	managerID string
}

func (f *fakeZoneService) GetByID(_ context.Context, id string) (*zone.Zone, error) {
	if id != f.zoneID {
		return nil, zone.ErrNotFound
	}
	return &zone.Zone{ID: id, Name: "North", IsActive: true}, nil
}

func (f *fakeZoneService) IsZoneManager(_ context.Context, zoneID, userID string) (bool, error) {
	return zoneID == f.zoneID && userID == f.managerID, nil
}

func newService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	zones := &fakeZoneService{zoneID: "zone-1", managerID: "manager"}
	return NewService(repo, zones), repo
}

func validCreate() CreateRequest {
	return CreateRequest{
		ZoneID:          "zone-1",
		Name:            "Box trailer",
		Category:        CategoryTrailer,
		Quantity:        1,
		DailyRateCents:  2500,
		BondCents:       10000,
		StorageLocation: "Shed A",
	}
}

func TestServiceCreate(t *testing.T) {
	t.Run("manager creates an active item", func(t *testing.T) {
		svc, _ := newService(t)

		item, err := svc.Create(context.Background(), validCreate(), "manager")
		require.NoError(t, err)

		assert.True(t, item.IsActive)
		assert.Equal(t, "Box trailer", item.Name)
		assert.Equal(t, CategoryTrailer, item.Category)
	})

	t.Run("non-manager is denied", func(t *testing.T) {
		svc, _ := newService(t)

		_, err := svc.Create(context.Background(), validCreate(), "member")

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(*CreateRequest)
			wantErr error
		}{
			{"blank name", func(r *CreateRequest) { r.Name = "  " }, ErrNameRequired},
			{"missing zone", func(r *CreateRequest) { r.ZoneID = "" }, ErrInvalidZone},
			{"unknown zone", func(r *CreateRequest) { r.ZoneID = "zone-9" }, ErrInvalidZone},
			{"bad category", func(r *CreateRequest) { r.Category = "boat" }, ErrInvalidCategory},
			{"zero quantity", func(r *CreateRequest) { r.Quantity = 0 }, ErrInvalidQuantity},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, _ := newService(t)
				req := validCreate()
				tt.mutate(&req)

				_, err := svc.Create(context.Background(), req, "manager")

				assert.ErrorIs(t, err, tt.wantErr)
			})
		}
	})
}

func TestServiceUpdate(t *testing.T) {
	t.Run("manager deactivates an item", func(t *testing.T) {
		svc, _ := newService(t)
		item, err := svc.Create(context.Background(), validCreate(), "manager")
		require.NoError(t, err)

		inactive := false
		updated, err := svc.Update(context.Background(), item.ID, UpdateRequest{IsActive: &inactive}, "manager")
		require.NoError(t, err)

		assert.False(t, updated.IsActive)
	})

	t.Run("quantity cannot drop below one", func(t *testing.T) {
		svc, _ := newService(t)
		item, err := svc.Create(context.Background(), validCreate(), "manager")
		require.NoError(t, err)

		zero := 0
		_, err = svc.Update(context.Background(), item.ID, UpdateRequest{Quantity: &zero}, "manager")

		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("non-manager is denied", func(t *testing.T) {
		svc, _ := newService(t)
		item, err := svc.Create(context.Background(), validCreate(), "manager")
		require.NoError(t, err)

		name := "Renamed"
		_, err = svc.Update(context.Background(), item.ID, UpdateRequest{Name: &name}, "member")

		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestServiceDelete(t *testing.T) {
	t.Run("manager deletes", func(t *testing.T) {
		svc, _ := newService(t)
		item, err := svc.Create(context.Background(), validCreate(), "manager")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(context.Background(), item.ID, "manager"))

		_, err = svc.GetByID(context.Background(), item.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown item", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.Delete(context.Background(), "missing", "manager")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestServiceList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, validCreate(), "manager")
	require.NoError(t, err)
	jumps := validCreate()
	jumps.Name = "Jump set"
	jumps.Category = CategoryJumps
	_, err = svc.Create(ctx, jumps, "manager")
	require.NoError(t, err)

	items, total, err := svc.List(ctx, Filter{Category: CategoryJumps})
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Jump set", items[0].Name)
}
