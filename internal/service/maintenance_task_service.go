package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrTaskNotFound        = apperr.NotFound("Công việc bảo trì không tồn tại")
	ErrTaskNameExists      = apperr.Conflict("Tên công việc đã tồn tại trong loại thiết bị")
	ErrTaskOrderExists     = apperr.Conflict("Thứ tự hiển thị đã được sử dụng trong loại thiết bị")
	ErrTaskInvalidDuration = apperr.Validation("Thời gian thực hiện phải lớn hơn 0 phút")
)

// MaintenanceTaskService checklist steps of an equipment type
type MaintenanceTaskService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.MaintenanceTaskRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.MaintenanceTaskRequest) (string, error)
	Delete(ctx context.Context, caller dto.Caller, id string) (string, error)
	GetByID(ctx context.Context, id string) (*dto.MaintenanceTaskResponse, error)
	ListByType(ctx context.Context, typeID string) ([]dto.MaintenanceTaskResponse, error)
}

type maintenanceTaskService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMaintenanceTaskService creates a MaintenanceTaskService
func NewMaintenanceTaskService(repo *repository.Repository, logger *zap.Logger) MaintenanceTaskService {
	return &maintenanceTaskService{repo: repo, logger: logger}
}

func (s *maintenanceTaskService) Create(ctx context.Context, caller dto.Caller, req *dto.MaintenanceTaskRequest) (string, error) {
	name := strings.TrimSpace(req.TaskName)
	if err := s.check(ctx, req, name, ""); err != nil {
		return "", err
	}

	t := &model.MaintenanceTask{
		CommonAreaObjectTypeID:   req.TypeID,
		TaskName:                 name,
		TaskDescription:          req.TaskDescription,
		RequiredTools:            req.RequiredTools,
		DisplayOrder:             req.DisplayOrder,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		Status:                   model.StatusActive,
	}
	t.Stamp(caller.UserID)
	if err := s.repo.MaintenanceTask.Create(ctx, t); err != nil {
		s.logger.Error("create task failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return "Tạo công việc bảo trì mới thành công", nil
}

func (s *maintenanceTaskService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.MaintenanceTaskRequest) (string, error) {
	t, err := get(ctx, s.logger, s.repo.MaintenanceTask.GetByID, id, ErrTaskNotFound)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.TaskName)
	if err := s.check(ctx, req, name, id); err != nil {
		return "", err
	}

	t.CommonAreaObjectTypeID = req.TypeID
	t.TaskName = name
	t.TaskDescription = req.TaskDescription
	t.RequiredTools = req.RequiredTools
	t.DisplayOrder = req.DisplayOrder
	t.EstimatedDurationMinutes = req.EstimatedDurationMinutes
	t.Stamp(caller.UserID)
	if err := s.repo.MaintenanceTask.Update(ctx, t); err != nil {
		s.logger.Error("update task failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Cập nhật công việc bảo trì thành công", nil
}

func (s *maintenanceTaskService) check(ctx context.Context, req *dto.MaintenanceTaskRequest, name, excludeID string) error {
	if req.EstimatedDurationMinutes <= 0 {
		return ErrTaskInvalidDuration
	}
	t, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, req.TypeID, ErrObjectTypeNotFound)
	if err != nil {
		return err
	}
	if t.Status != model.StatusActive {
		return ErrObjectTypeInactive
	}

	exists, err := s.repo.MaintenanceTask.ExistsName(ctx, req.TypeID, name, excludeID)
	if err != nil {
		s.logger.Error("check task name failed", zap.String("name", name), zap.Error(err))
		return err
	}
	if exists {
		return ErrTaskNameExists
	}
	exists, err = s.repo.MaintenanceTask.ExistsDisplayOrder(ctx, req.TypeID, req.DisplayOrder, excludeID)
	if err != nil {
		s.logger.Error("check task order failed", zap.Int("order", req.DisplayOrder), zap.Error(err))
		return err
	}
	if exists {
		return ErrTaskOrderExists
	}
	return nil
}

func (s *maintenanceTaskService) Delete(ctx context.Context, caller dto.Caller, id string) (string, error) {
	if _, err := get(ctx, s.logger, s.repo.MaintenanceTask.GetByID, id, ErrTaskNotFound); err != nil {
		return "", err
	}
	if err := s.repo.MaintenanceTask.Delete(ctx, id); err != nil {
		s.logger.Error("delete task failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	s.logger.Info("maintenance task deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return "Xóa công việc bảo trì thành công", nil
}

func (s *maintenanceTaskService) GetByID(ctx context.Context, id string) (*dto.MaintenanceTaskResponse, error) {
	t, err := get(ctx, s.logger, s.repo.MaintenanceTask.GetByID, id, ErrTaskNotFound)
	if err != nil {
		return nil, err
	}
	return toMaintenanceTaskResponse(t), nil
}

func (s *maintenanceTaskService) ListByType(ctx context.Context, typeID string) ([]dto.MaintenanceTaskResponse, error) {
	if _, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, typeID, ErrObjectTypeNotFound); err != nil {
		return nil, err
	}
	tasks, err := s.repo.MaintenanceTask.ListByType(ctx, typeID)
	if err != nil {
		s.logger.Error("list tasks failed", zap.String("type_id", typeID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.MaintenanceTaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, *toMaintenanceTaskResponse(&tasks[i]))
	}
	return result, nil
}

func toMaintenanceTaskResponse(t *model.MaintenanceTask) *dto.MaintenanceTaskResponse {
	return &dto.MaintenanceTaskResponse{
		ID:                       t.MaintenanceTaskID,
		TypeID:                   t.CommonAreaObjectTypeID,
		TaskName:                 t.TaskName,
		TaskDescription:          t.TaskDescription,
		RequiredTools:            t.RequiredTools,
		DisplayOrder:             t.DisplayOrder,
		EstimatedDurationMinutes: t.EstimatedDurationMinutes,
		Status:                   string(t.Status),
	}
}
