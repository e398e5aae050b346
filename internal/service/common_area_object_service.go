package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrObjectNotFound        = apperr.NotFound("Thiết bị không tồn tại")
	ErrObjectNameExists      = apperr.Conflict("Tên thiết bị đã tồn tại trong khu vực")
	ErrObjectInactive        = apperr.Validation("Thiết bị đã ngừng hoạt động")
	ErrObjectAlreadyActive   = apperr.Validation("Thiết bị đang hoạt động")
	ErrObjectAlreadyInactive = apperr.Validation("Thiết bị đã ngừng hoạt động")
)

// CommonAreaObjectService equipment placed in common areas
type CommonAreaObjectService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CommonAreaObjectRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.CommonAreaObjectRequest) (string, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	// Deactivate also stops the object's maintenance schedule
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)
	GetByID(ctx context.Context, id string) (*dto.CommonAreaObjectResponse, error)
	List(ctx context.Context, req *dto.CommonAreaObjectListRequest) ([]dto.CommonAreaObjectResponse, int64, error)
}

type commonAreaObjectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommonAreaObjectService creates a CommonAreaObjectService
func NewCommonAreaObjectService(repo *repository.Repository, logger *zap.Logger) CommonAreaObjectService {
	return &commonAreaObjectService{repo: repo, logger: logger}
}

func (s *commonAreaObjectService) Create(ctx context.Context, caller dto.Caller, req *dto.CommonAreaObjectRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkParents(ctx, req.CommonAreaID, req.TypeID); err != nil {
		return "", err
	}
	if err := s.checkName(ctx, req.CommonAreaID, name, ""); err != nil {
		return "", err
	}

	obj := &model.CommonAreaObject{
		CommonAreaID:           req.CommonAreaID,
		CommonAreaObjectTypeID: req.TypeID,
		Name:                   name,
		Description:            req.Description,
		Status:                 model.StatusActive,
	}
	obj.Stamp(caller.UserID)
	if err := s.repo.CommonAreaObject.Create(ctx, obj); err != nil {
		s.logger.Error("create object failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return "Tạo thiết bị mới thành công", nil
}

func (s *commonAreaObjectService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.CommonAreaObjectRequest) (string, error) {
	obj, err := get(ctx, s.logger, s.repo.CommonAreaObject.GetByID, id, ErrObjectNotFound)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)

	// only a moved or retyped object re-checks its parents
	if req.CommonAreaID != obj.CommonAreaID || req.TypeID != obj.CommonAreaObjectTypeID {
		if err := s.checkParents(ctx, req.CommonAreaID, req.TypeID); err != nil {
			return "", err
		}
	}
	if err := s.checkName(ctx, req.CommonAreaID, name, id); err != nil {
		return "", err
	}

	obj.CommonAreaID = req.CommonAreaID
	obj.CommonAreaObjectTypeID = req.TypeID
	obj.Name = name
	obj.Description = req.Description
	obj.Stamp(caller.UserID)
	if err := s.repo.CommonAreaObject.Update(ctx, obj); err != nil {
		s.logger.Error("update object failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Cập nhật thiết bị thành công", nil
}

func (s *commonAreaObjectService) checkParents(ctx context.Context, areaID, typeID string) error {
	area, err := get(ctx, s.logger, s.repo.CommonArea.GetByID, areaID, ErrCommonAreaNotFound)
	if err != nil {
		return err
	}
	if area.Status != model.StatusActive {
		return ErrCommonAreaInactive
	}
	t, err := get(ctx, s.logger, s.repo.ObjectType.GetByID, typeID, ErrObjectTypeNotFound)
	if err != nil {
		return err
	}
	if t.Status != model.StatusActive {
		return ErrObjectTypeInactive
	}
	return nil
}

func (s *commonAreaObjectService) checkName(ctx context.Context, areaID, name, excludeID string) error {
	exists, err := s.repo.CommonAreaObject.ExistsName(ctx, areaID, name, excludeID)
	if err != nil {
		s.logger.Error("check object name failed", zap.String("name", name), zap.Error(err))
		return err
	}
	if exists {
		return ErrObjectNameExists
	}
	return nil
}

func (s *commonAreaObjectService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	obj, err := get(ctx, s.logger, s.repo.CommonAreaObject.GetByID, id, ErrObjectNotFound)
	if err != nil {
		return "", err
	}
	if obj.Status == model.StatusActive {
		return "", ErrObjectAlreadyActive
	}
	if err := s.checkParents(ctx, obj.CommonAreaID, obj.CommonAreaObjectTypeID); err != nil {
		return "", err
	}

	obj.Status = model.StatusActive
	obj.Stamp(caller.UserID)
	if err := s.repo.CommonAreaObject.Update(ctx, obj); err != nil {
		s.logger.Error("activate object failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Kích hoạt thiết bị thành công", nil
}

func (s *commonAreaObjectService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	obj, err := get(ctx, s.logger, s.repo.CommonAreaObject.GetByID, id, ErrObjectNotFound)
	if err != nil {
		return "", err
	}
	if obj.Status == model.StatusInactive {
		return "", ErrObjectAlreadyInactive
	}

	obj.Status = model.StatusInactive
	obj.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "deactivate object", func(tx *repository.Repository) error {
		if err := tx.CommonAreaObject.Update(ctx, obj); err != nil {
			return err
		}
		schedule, err := tx.Schedule.GetByObject(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if schedule.Status == model.StatusInactive {
			return nil
		}
		schedule.Status = model.StatusInactive
		schedule.Stamp(caller.UserID)
		if err := tx.Schedule.Update(ctx, schedule); err != nil {
			return err
		}
		return tx.Schedule.AddTrackings(ctx, []model.MaintenanceScheduleTracking{
			scheduleChange(schedule.MaintenanceScheduleID, "Status", string(model.StatusActive), string(model.StatusInactive), caller.UserID, time.Now()),
		})
	})
	if err != nil {
		return "", err
	}
	s.logger.Info("object deactivated", zap.String("id", id))
	return "Ngừng hoạt động thiết bị thành công", nil
}

func (s *commonAreaObjectService) GetByID(ctx context.Context, id string) (*dto.CommonAreaObjectResponse, error) {
	obj, err := get(ctx, s.logger, s.repo.CommonAreaObject.GetByID, id, ErrObjectNotFound)
	if err != nil {
		return nil, err
	}
	return toCommonAreaObjectResponse(obj), nil
}

func (s *commonAreaObjectService) List(ctx context.Context, req *dto.CommonAreaObjectListRequest) ([]dto.CommonAreaObjectResponse, int64, error) {
	objects, total, err := s.repo.CommonAreaObject.List(ctx, repository.CommonAreaObjectFilter{
		CatalogFilter: repository.CatalogFilter{
			Keyword: req.Keyword,
			Status:  model.ActiveStatus(req.Status),
			Page:    toPage(req.PaginationRequest),
		},
		CommonAreaID: req.CommonAreaID,
		TypeID:       req.TypeID,
	})
	if err != nil {
		s.logger.Error("list objects failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CommonAreaObjectResponse, 0, len(objects))
	for i := range objects {
		result = append(result, *toCommonAreaObjectResponse(&objects[i]))
	}
	return result, total, nil
}

func toCommonAreaObjectResponse(o *model.CommonAreaObject) *dto.CommonAreaObjectResponse {
	resp := &dto.CommonAreaObjectResponse{
		ID:           o.CommonAreaObjectID,
		CommonAreaID: o.CommonAreaID,
		TypeID:       o.CommonAreaObjectTypeID,
		Name:         o.Name,
		Description:  o.Description,
		Status:       string(o.Status),
	}
	if o.CommonArea != nil {
		resp.CommonAreaName = o.CommonArea.Name
	}
	if o.ObjectType != nil {
		resp.TypeName = o.ObjectType.TypeName
	}
	return resp
}
