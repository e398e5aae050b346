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
	ErrCommonAreaNotFound        = apperr.NotFound("Khu vực chung không tồn tại")
	ErrCommonAreaNameExists      = apperr.Conflict("Tên khu vực chung đã tồn tại")
	ErrCommonAreaInactive        = apperr.Validation("Khu vực chung đã ngừng hoạt động")
	ErrCommonAreaHasObjects      = apperr.Validation("Khu vực chung còn thiết bị đang hoạt động")
	ErrCommonAreaAlreadyActive   = apperr.Validation("Khu vực chung đang hoạt động")
	ErrCommonAreaAlreadyInactive = apperr.Validation("Khu vực chung đã ngừng hoạt động")
)

// CommonAreaService shared spaces of the building
type CommonAreaService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CommonAreaRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.CommonAreaRequest) (string, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)
	GetByID(ctx context.Context, id string) (*dto.CommonAreaResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.CommonAreaResponse, int64, error)
}

type commonAreaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommonAreaService creates a CommonAreaService
func NewCommonAreaService(repo *repository.Repository, logger *zap.Logger) CommonAreaService {
	return &commonAreaService{repo: repo, logger: logger}
}

func (s *commonAreaService) Create(ctx context.Context, caller dto.Caller, req *dto.CommonAreaRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.check(ctx, name, req.FloorID, ""); err != nil {
		return "", err
	}

	area := &model.CommonArea{
		FloorID:     req.FloorID,
		Name:        name,
		Location:    req.Location,
		Description: req.Description,
		Status:      model.StatusActive,
	}
	area.Stamp(caller.UserID)
	if err := s.repo.CommonArea.Create(ctx, area); err != nil {
		s.logger.Error("create common area failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return "Tạo khu vực chung mới thành công", nil
}

func (s *commonAreaService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.CommonAreaRequest) (string, error) {
	area, err := get(ctx, s.logger, s.repo.CommonArea.GetByID, id, ErrCommonAreaNotFound)
	if err != nil {
		return "", err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.check(ctx, name, req.FloorID, id); err != nil {
		return "", err
	}

	area.FloorID = req.FloorID
	area.Name = name
	area.Location = req.Location
	area.Description = req.Description
	area.Stamp(caller.UserID)
	if err := s.repo.CommonArea.Update(ctx, area); err != nil {
		s.logger.Error("update common area failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Cập nhật khu vực chung thành công", nil
}

func (s *commonAreaService) check(ctx context.Context, name string, floorID *string, excludeID string) error {
	if floorID != nil {
		if _, err := get(ctx, s.logger, s.repo.Floor.GetByID, *floorID, ErrFloorNotFound); err != nil {
			return err
		}
	}
	exists, err := s.repo.CommonArea.ExistsName(ctx, name, excludeID)
	if err != nil {
		s.logger.Error("check common area name failed", zap.String("name", name), zap.Error(err))
		return err
	}
	if exists {
		return ErrCommonAreaNameExists
	}
	return nil
}

func (s *commonAreaService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	area, err := get(ctx, s.logger, s.repo.CommonArea.GetByID, id, ErrCommonAreaNotFound)
	if err != nil {
		return "", err
	}
	if area.Status == model.StatusActive {
		return "", ErrCommonAreaAlreadyActive
	}
	return s.setStatus(ctx, caller, area, model.StatusActive, "Kích hoạt khu vực chung thành công")
}

func (s *commonAreaService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	area, err := get(ctx, s.logger, s.repo.CommonArea.GetByID, id, ErrCommonAreaNotFound)
	if err != nil {
		return "", err
	}
	if area.Status == model.StatusInactive {
		return "", ErrCommonAreaAlreadyInactive
	}
	n, err := s.repo.CommonAreaObject.CountActiveByArea(ctx, id)
	if err != nil {
		s.logger.Error("count area objects failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	if n > 0 {
		return "", ErrCommonAreaHasObjects
	}
	return s.setStatus(ctx, caller, area, model.StatusInactive, "Ngừng hoạt động khu vực chung thành công")
}

func (s *commonAreaService) setStatus(ctx context.Context, caller dto.Caller, area *model.CommonArea, status model.ActiveStatus, msg string) (string, error) {
	area.Status = status
	area.Stamp(caller.UserID)
	if err := s.repo.CommonArea.Update(ctx, area); err != nil {
		s.logger.Error("update common area status failed", zap.String("id", area.CommonAreaID), zap.Error(err))
		return "", err
	}
	return msg, nil
}

func (s *commonAreaService) GetByID(ctx context.Context, id string) (*dto.CommonAreaResponse, error) {
	area, err := get(ctx, s.logger, s.repo.CommonArea.GetByID, id, ErrCommonAreaNotFound)
	if err != nil {
		return nil, err
	}
	return toCommonAreaResponse(area), nil
}

func (s *commonAreaService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.CommonAreaResponse, int64, error) {
	areas, total, err := s.repo.CommonArea.List(ctx, repository.CatalogFilter{
		Keyword: req.Keyword,
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list common areas failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CommonAreaResponse, 0, len(areas))
	for i := range areas {
		result = append(result, *toCommonAreaResponse(&areas[i]))
	}
	return result, total, nil
}

func toCommonAreaResponse(a *model.CommonArea) *dto.CommonAreaResponse {
	return &dto.CommonAreaResponse{
		ID:          a.CommonAreaID,
		FloorID:     a.FloorID,
		Name:        a.Name,
		Location:    a.Location,
		Description: a.Description,
		Status:      string(a.Status),
	}
}
