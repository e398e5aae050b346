package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/model"
)

func TestObjectTypeService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture)
		wantErr error
	}{
		{"unused type", nil, nil},
		{"referenced by an object", func(f *fixture) {
			f.objects.rows["obj-1"] = &model.CommonAreaObject{CommonAreaObjectID: "obj-1", CommonAreaObjectTypeID: "type-1"}
		}, ErrObjectTypeInUse},
		{"referenced by a task", func(f *fixture) {
			f.tasks.byType["type-1"] = []model.MaintenanceTask{{MaintenanceTaskID: "task-1", CommonAreaObjectTypeID: "type-1"}}
		}, ErrObjectTypeInUse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.objectTypes.rows["type-1"] = &model.CommonAreaObjectType{CommonAreaObjectTypeID: "type-1", TypeName: "Thang máy", Status: model.StatusActive}
			if tt.prepare != nil {
				tt.prepare(f)
			}
			svc := NewObjectTypeService(f.repo, zap.NewNop())

			msg, err := svc.Delete(context.Background(), managerCaller, "type-1")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.objectTypes.deleted)
				assert.Contains(t, f.objectTypes.rows, "type-1")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Xóa loại thiết bị thành công", msg)
			assert.Equal(t, []string{"type-1"}, f.objectTypes.deleted)
		})
	}
}

func TestObjectTypeService_Delete_NotFound(t *testing.T) {
	f := newFixture()
	svc := NewObjectTypeService(f.repo, zap.NewNop())

	_, err := svc.Delete(context.Background(), managerCaller, "missing")
	assert.ErrorIs(t, err, ErrObjectTypeNotFound)
}
