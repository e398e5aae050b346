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
	ErrObjectTypeNotFound        = apperr.NotFound("Loại thiết bị không tồn tại")
	ErrObjectTypeNameExists      = apperr.Conflict("Tên loại thiết bị đã tồn tại")
	ErrObjectTypeInactive        = apperr.Validation("Loại thiết bị đã ngừng hoạt động")
	ErrObjectTypeInUse           = apperr.Validation("Loại thiết bị đang được sử dụng, không thể xóa")
	ErrObjectTypeAlreadyActive   = apperr.Validation("Loại thiết bị đang hoạt động")
	ErrObjectTypeAlreadyInactive = apperr.Validation("Loại thiết bị đã ngừng hoạt động")
)

// ObjectTypeService equipment categories and their checklists
type ObjectTypeService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.ObjectTypeRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.ObjectTypeRequest) (string, error)
	Delete(ctx context.Context, caller dto.Caller, id string) (string, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)
	GetByID(ctx context.Context, id string) (*dto.ObjectTypeResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.ObjectTypeResponse, int64, error)
}

type objectTypeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewObjectTypeService creates an ObjectTypeService
func NewObjectTypeService(repo *repository.Repository, logger *zap.Logger) ObjectTypeService {
	return &objectTypeService{repo: repo, logger: logger}
}

func (s *objectTypeService) Create(ctx context.Context, caller dto.Caller, req *dto.ObjectTypeRequest) (string, error) {
	name := strings.TrimSpace(req.TypeName)
	if err := s.checkName(ctx, name, ""); err != nil {
		return "", err
	}

	t := &model.CommonAreaObjectType{TypeName: name, Description: req.Description, Status: model.StatusActive}
	t.Stamp(caller.UserID)
	if err := s.repo.ObjectType.Create(ctx, t); err != nil {
		s.logger.Error("create object type failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return "Tạo loại thiết bị mới thành công", nil
}

func (s *objectTypeService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.ObjectTypeRequest) (string, error) {
	t, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, id, ErrObjectTypeNotFound)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.TypeName)
	if err := s.checkName(ctx, name, id); err != nil {
		return "", err
	}

	t.TypeName = name
	t.Description = req.Description
	t.Stamp(caller.UserID)
	if err := s.repo.ObjectType.Update(ctx, t); err != nil {
		s.logger.Error("update object type failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Cập nhật loại thiết bị thành công", nil
}

func (s *objectTypeService) checkName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ObjectType.ExistsName(ctx, name, excludeID)
	if err != nil {
		s.logger.Error("check object type name failed", zap.String("name", name), zap.Error(err))
		return err
	}
	if exists {
		return ErrObjectTypeNameExists
	}
	return nil
}

func (s *objectTypeService) Delete(ctx context.Context, caller dto.Caller, id string) (string, error) {
	if _, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, id, ErrObjectTypeNotFound); err != nil {
		return "", err
	}

	objects, err := s.repo.CommonAreaObject.CountByType(ctx, id)
	if err != nil {
		s.logger.Error("count objects failed", zap.String("type_id", id), zap.Error(err))
		return "", err
	}
	tasks, err := s.repo.MaintenanceTask.CountByType(ctx, id)
	if err != nil {
		s.logger.Error("count tasks failed", zap.String("type_id", id), zap.Error(err))
		return "", err
	}
	if objects > 0 || tasks > 0 {
		return "", ErrObjectTypeInUse
	}

	if err := s.repo.ObjectType.Delete(ctx, id); err != nil {
		s.logger.Error("delete object type failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	s.logger.Info("object type deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return "Xóa loại thiết bị thành công", nil
}

func (s *objectTypeService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	return s.setStatus(ctx, caller, id, model.StatusActive, ErrObjectTypeAlreadyActive, "Kích hoạt loại thiết bị thành công")
}

func (s *objectTypeService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	return s.setStatus(ctx, caller, id, model.StatusInactive, ErrObjectTypeAlreadyInactive, "Ngừng hoạt động loại thiết bị thành công")
}

func (s *objectTypeService) setStatus(ctx context.Context, caller dto.Caller, id string, status model.ActiveStatus, already error, msg string) (string, error) {
	t, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, id, ErrObjectTypeNotFound)
	if err != nil {
		return "", err
	}
	if t.Status == status {
		return "", already
	}
	t.Status = status
	t.Stamp(caller.UserID)
	if err := s.repo.ObjectType.Update(ctx, t); err != nil {
		s.logger.Error("update object type status failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return msg, nil
}

func (s *objectTypeService) GetByID(ctx context.Context, id string) (*dto.ObjectTypeResponse, error) {
	t, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, id, ErrObjectTypeNotFound)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.MaintenanceTask.CountByType(ctx, id)
	if err != nil {
		s.logger.Error("count tasks failed", zap.String("type_id", id), zap.Error(err))
		return nil, err
	}
	return toObjectTypeResponse(t, n), nil
}

func (s *objectTypeService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.ObjectTypeResponse, int64, error) {
	types, total, err := s.repo.ObjectType.List(ctx, repository.CatalogFilter{
		Keyword: req.Keyword,
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list object types failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ObjectTypeResponse, 0, len(types))
	for i := range types {
		n, err := s.repo.MaintenanceTask.CountByType(ctx, types[i].CommonAreaObjectTypeID)
		if err != nil {
			s.logger.Error("count tasks failed", zap.String("type_id", types[i].CommonAreaObjectTypeID), zap.Error(err))
			return nil, 0, err
		}
		result = append(result, *toObjectTypeResponse(&types[i], n))
	}
	return result, total, nil
}

func toObjectTypeResponse(t *model.CommonAreaObjectType, taskCount int64) *dto.ObjectTypeResponse {
	return &dto.ObjectTypeResponse{
		ID:          t.CommonAreaObjectTypeID,
		TypeName:    t.TypeName,
		Description: t.Description,
		Status:      string(t.Status),
		TaskCount:   taskCount,
	}
}
