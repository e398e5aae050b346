package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/model"
)

func setupObjectDeactivate(t *testing.T) (CommonAreaObjectService, *fixture) {
	t.Helper()
	f := newFixture()
	f.objects.rows["obj-1"] = &model.CommonAreaObject{CommonAreaObjectID: "obj-1", Name: "Máy bơm B1", Status: model.StatusActive}
	f.schedules.rows["sched-1"] = &model.MaintenanceSchedule{
		MaintenanceScheduleID: "sched-1",
		CommonAreaObjectID:    "obj-1",
		FrequencyInDays:       90,
		NextScheduledDate:     time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:                model.StatusActive,
	}
	return NewCommonAreaObjectService(f.repo, zap.NewNop()), f
}

func TestCommonAreaObjectService_Deactivate_StopsSchedule(t *testing.T) {
	svc, f := setupObjectDeactivate(t)

	msg, err := svc.Deactivate(context.Background(), managerCaller, "obj-1")
	require.NoError(t, err)
	assert.Equal(t, "Ngừng hoạt động thiết bị thành công", msg)
	assert.Equal(t, 1, f.tx.commits)

	assert.Equal(t, model.StatusInactive, f.objects.rows["obj-1"].Status)
	assert.Equal(t, model.StatusInactive, f.schedules.rows["sched-1"].Status)
	require.Len(t, f.schedules.trackings, 1)
	assert.Equal(t, "Status", f.schedules.trackings[0].FieldName)
	assert.Equal(t, "Active", f.schedules.trackings[0].OldValue)
	assert.Equal(t, "Inactive", f.schedules.trackings[0].NewValue)
}

func TestCommonAreaObjectService_Deactivate_WithoutSchedule(t *testing.T) {
	svc, f := setupObjectDeactivate(t)
	delete(f.schedules.rows, "sched-1")

	_, err := svc.Deactivate(context.Background(), managerCaller, "obj-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, f.objects.rows["obj-1"].Status)
	assert.Empty(t, f.schedules.trackings)
}

func TestCommonAreaObjectService_Deactivate_NotIdempotent(t *testing.T) {
	svc, f := setupObjectDeactivate(t)
	ctx := context.Background()

	_, err := svc.Deactivate(ctx, managerCaller, "obj-1")
	require.NoError(t, err)
	_, err = svc.Deactivate(ctx, managerCaller, "obj-1")
	require.ErrorIs(t, err, ErrObjectAlreadyInactive)
	assert.Equal(t, 1, f.tx.begun)
	assert.Len(t, f.schedules.trackings, 1)
}
