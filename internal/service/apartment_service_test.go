package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

func setupApartmentService(t *testing.T) (ApartmentService, *fixture, *fakeCache) {
	t.Helper()
	f := newFixture()
	f.floors.rows["floor-1"] = &model.Floor{FloorID: "floor-1", FloorNumber: 1, Status: model.StatusActive}
	f.floors.rows["floor-2"] = &model.Floor{FloorID: "floor-2", FloorNumber: 2, Status: model.StatusInactive}
	cache := newFakeCache()
	return NewApartmentService(f.repo, cache, time.Minute, zap.NewNop()), f, cache
}

func TestApartmentService_Create_InsertsOnceAndInvalidates(t *testing.T) {
	svc, f, cache := setupApartmentService(t)

	msg, err := svc.Create(context.Background(), adminCaller, &dto.CreateApartmentRequest{
		FloorID: "floor-1",
		Room:    "101",
		Area:    72.5,
		Limit:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Tạo căn hộ mới thành công", msg)
	assert.Equal(t, 1, f.apartments.creates)
	assert.Equal(t, []string{apartmentCachePrefix}, cache.invalidations)

	for _, apt := range f.apartments.rows {
		assert.Equal(t, model.StatusActive, apt.Status)
		require.NotNil(t, apt.CreatedBy)
		assert.Equal(t, adminCaller.UserID, *apt.CreatedBy)
	}
}

func TestApartmentService_Create_Rejected(t *testing.T) {
	tests := []struct {
		name      string
		floorID   string
		roomTaken bool
		want      error
	}{
		{name: "missing floor", floorID: "floor-x", want: ErrFloorNotFound},
		{name: "inactive floor", floorID: "floor-2", want: ErrFloorInactive},
		{name: "room taken", floorID: "floor-1", roomTaken: true, want: ErrApartmentRoomExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, cache := setupApartmentService(t)
			f.apartments.roomTaken = tt.roomTaken

			_, err := svc.Create(context.Background(), adminCaller, &dto.CreateApartmentRequest{FloorID: tt.floorID, Room: "101"})
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, f.apartments.creates)
			assert.Empty(t, cache.invalidations)
		})
	}
}

func TestApartmentService_GetByID_ServedFromCache(t *testing.T) {
	svc, f, _ := setupApartmentService(t)
	f.apartments.rows["apt-1"] = &model.Apartment{ApartmentID: "apt-1", FloorID: "floor-1", Room: "202", Status: model.StatusActive}

	first, err := svc.GetByID(context.Background(), "apt-1")
	require.NoError(t, err)

	delete(f.apartments.rows, "apt-1")
	second, err := svc.GetByID(context.Background(), "apt-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestApartmentService_GetByID_NotFound(t *testing.T) {
	svc, _, _ := setupApartmentService(t)

	_, err := svc.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrApartmentNotFound)
}

func TestApartmentService_StatusToggles_NotIdempotent(t *testing.T) {
	svc, f, _ := setupApartmentService(t)
	f.apartments.rows["apt-1"] = &model.Apartment{ApartmentID: "apt-1", FloorID: "floor-1", Room: "101", Status: model.StatusActive}
	ctx := context.Background()

	msg, err := svc.Deactivate(ctx, adminCaller, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "Ngừng hoạt động căn hộ thành công", msg)
	_, err = svc.Deactivate(ctx, adminCaller, "apt-1")
	require.ErrorIs(t, err, ErrApartmentAlreadyInactive)

	msg, err = svc.Activate(ctx, adminCaller, "apt-1")
	require.NoError(t, err)
	assert.Equal(t, "Kích hoạt căn hộ thành công", msg)
	_, err = svc.Activate(ctx, adminCaller, "apt-1")
	require.ErrorIs(t, err, ErrApartmentAlreadyActive)

	assert.Equal(t, 2, f.apartments.updates)
}

func TestApartmentService_Deactivate_Blocked(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		wantErr error
	}{
		{"residents still living there", func(f *fixture) { f.residents.active["resident-1:apt-1"] = true }, ErrApartmentHasResidents},
		{"open repair requests", func(f *fixture) { f.requests.open["apt-1"] = 1 }, ErrApartmentHasOpenRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, _ := setupApartmentService(t)
			f.apartments.rows["apt-1"] = &model.Apartment{ApartmentID: "apt-1", FloorID: "floor-1", Room: "101", Status: model.StatusActive}
			tt.prepare(f)

			_, err := svc.Deactivate(context.Background(), adminCaller, "apt-1")
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, model.StatusActive, f.apartments.rows["apt-1"].Status)
			assert.Zero(t, f.apartments.updates)
		})
	}
}

func TestApartmentService_Activate_OnInactiveFloor(t *testing.T) {
	svc, f, _ := setupApartmentService(t)
	f.apartments.rows["apt-2"] = &model.Apartment{ApartmentID: "apt-2", FloorID: "floor-2", Room: "201", Status: model.StatusInactive}

	_, err := svc.Activate(context.Background(), adminCaller, "apt-2")
	require.ErrorIs(t, err, ErrFloorInactive)
	assert.Equal(t, model.StatusInactive, f.apartments.rows["apt-2"].Status)
}
