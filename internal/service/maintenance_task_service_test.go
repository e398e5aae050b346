package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

func setupMaintenanceTask(t *testing.T) (MaintenanceTaskService, *fixture) {
	t.Helper()
	f := newFixture()
	f.objectTypes.rows["type-1"] = &model.CommonAreaObjectType{CommonAreaObjectTypeID: "type-1", Status: model.StatusActive}
	f.objectTypes.rows["type-2"] = &model.CommonAreaObjectType{CommonAreaObjectTypeID: "type-2", Status: model.StatusActive}
	f.objectTypes.rows["type-off"] = &model.CommonAreaObjectType{CommonAreaObjectTypeID: "type-off", Status: model.StatusInactive}
	f.tasks.byType["type-1"] = []model.MaintenanceTask{
		{MaintenanceTaskID: "task-1", CommonAreaObjectTypeID: "type-1", TaskName: "Kiểm tra cáp", DisplayOrder: 1, EstimatedDurationMinutes: 30},
		{MaintenanceTaskID: "task-2", CommonAreaObjectTypeID: "type-1", TaskName: "Tra dầu", DisplayOrder: 2, EstimatedDurationMinutes: 15},
	}
	return NewMaintenanceTaskService(f.repo, zap.NewNop()), f
}

func taskRequest(typeID, name string, order int) *dto.MaintenanceTaskRequest {
	return &dto.MaintenanceTaskRequest{TypeID: typeID, TaskName: name, DisplayOrder: order, EstimatedDurationMinutes: 20}
}

func TestMaintenanceTaskService_Create(t *testing.T) {
	svc, f := setupMaintenanceTask(t)

	msg, err := svc.Create(context.Background(), managerCaller, taskRequest("type-1", "  Vệ sinh cabin ", 3))
	require.NoError(t, err)
	assert.Equal(t, "Tạo công việc bảo trì mới thành công", msg)

	tasks := f.tasks.byType["type-1"]
	require.Len(t, tasks, 3)
	assert.Equal(t, "Vệ sinh cabin", tasks[2].TaskName)
	assert.Equal(t, model.StatusActive, tasks[2].Status)
}

func TestMaintenanceTaskService_Create_Uniqueness(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.MaintenanceTaskRequest
		wantErr error
	}{
		{"name taken in type", taskRequest("type-1", "kiểm tra cáp", 5), ErrTaskNameExists},
		{"display order taken in type", taskRequest("type-1", "Thay đèn", 2), ErrTaskOrderExists},
		{"inactive type", taskRequest("type-off", "Thay đèn", 1), ErrObjectTypeInactive},
		{"unknown type", taskRequest("type-x", "Thay đèn", 1), ErrObjectTypeNotFound},
		{"non-positive duration", &dto.MaintenanceTaskRequest{TypeID: "type-1", TaskName: "Thay đèn", DisplayOrder: 9}, ErrTaskInvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f := setupMaintenanceTask(t)
			_, err := svc.Create(context.Background(), managerCaller, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.tasks.byType["type-1"], 2)
		})
	}
}

func TestMaintenanceTaskService_Create_SameValuesOtherType(t *testing.T) {
	svc, f := setupMaintenanceTask(t)

	_, err := svc.Create(context.Background(), managerCaller, taskRequest("type-2", "Kiểm tra cáp", 1))
	require.NoError(t, err)
	assert.Len(t, f.tasks.byType["type-2"], 1)
}

func TestMaintenanceTaskService_Update_KeepsOwnNameAndOrder(t *testing.T) {
	svc, f := setupMaintenanceTask(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, managerCaller, "task-1", taskRequest("type-1", "Kiểm tra cáp", 1))
	require.NoError(t, err)

	_, err = svc.Update(ctx, managerCaller, "task-1", taskRequest("type-1", "Kiểm tra cáp", 2))
	require.ErrorIs(t, err, ErrTaskOrderExists)

	got, err := f.tasks.GetByID(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.DisplayOrder)
}
