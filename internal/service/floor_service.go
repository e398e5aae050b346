package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const floorCachePrefix = "floor"

var (
	ErrFloorNotFound        = apperr.NotFound("Tầng không tồn tại")
	ErrFloorInactive        = apperr.Validation("Tầng đang ngừng hoạt động")
	ErrFloorNumberExists    = apperr.Conflict("Số tầng đã tồn tại")
	ErrFloorAlreadyActive   = apperr.Validation("Tầng đã ở trạng thái hoạt động")
	ErrFloorAlreadyInactive = apperr.Validation("Tầng đã ở trạng thái ngừng hoạt động")
	ErrFloorHasApartments   = apperr.Validation("Không thể ngừng hoạt động tầng khi vẫn còn căn hộ đang hoạt động")
)

// FloorService floor management
type FloorService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateFloorRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateFloorRequest) (string, error)
	GetByID(ctx context.Context, id string) (*dto.FloorResponse, error)
	List(ctx context.Context, req *dto.FloorListRequest) ([]dto.FloorResponse, int64, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)
}

type floorService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewFloorService creates a FloorService
func NewFloorService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) FloorService {
	return &floorService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *floorService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateFloorRequest) (string, error) {
	exists, err := s.repo.Floor.ExistsActiveNumber(ctx, req.FloorNumber, "")
	if err != nil {
		s.logger.Error("check floor number failed", zap.Int("floor_number", req.FloorNumber), zap.Error(err))
		return "", err
	}
	if exists {
		return "", ErrFloorNumberExists
	}

	floor := &model.Floor{
		FloorNumber: req.FloorNumber,
		Description: req.Description,
		Status:      model.StatusActive,
	}
	floor.Stamp(caller.UserID)

	if err := s.repo.Floor.Create(ctx, floor); err != nil {
		s.logger.Error("create floor failed", zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, floorCachePrefix)
	return "Tạo tầng mới thành công", nil
}

// ────────────────────── Update ──────────────────────

func (s *floorService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateFloorRequest) (string, error) {
	floor, err := get(ctx, s.logger, s.repo.Floor.GetByID, id, ErrFloorNotFound)
	if err != nil {
		return "", err
	}

	if req.FloorNumber != nil && *req.FloorNumber != floor.FloorNumber {
		exists, err := s.repo.Floor.ExistsActiveNumber(ctx, *req.FloorNumber, id)
		if err != nil {
			s.logger.Error("check floor number failed", zap.String("id", id), zap.Error(err))
			return "", err
		}
		if exists {
			return "", ErrFloorNumberExists
		}
		floor.FloorNumber = *req.FloorNumber
	}
	if req.Description != nil {
		floor.Description = *req.Description
	}
	floor.Stamp(caller.UserID)

	if err := s.repo.Floor.Update(ctx, floor); err != nil {
		s.logger.Error("update floor failed", zap.String("id", id), zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, floorCachePrefix)
	return "Cập nhật tầng thành công", nil
}

// ────────────────────── Query ──────────────────────

func (s *floorService) GetByID(ctx context.Context, id string) (*dto.FloorResponse, error) {
	return cached(ctx, s.cache, s.logger, cacheKey(floorCachePrefix, id), s.ttl, func() (*dto.FloorResponse, error) {
		floor, err := get(ctx, s.logger, s.repo.Floor.GetByID, id, ErrFloorNotFound)
		if err != nil {
			return nil, err
		}
		return toFloorResponse(floor), nil
	})
}

func (s *floorService) List(ctx context.Context, req *dto.FloorListRequest) ([]dto.FloorResponse, int64, error) {
	floors, total, err := s.repo.Floor.List(ctx, repository.FloorFilter{
		Keyword: req.Keyword,
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list floors failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.FloorResponse, 0, len(floors))
	for i := range floors {
		result = append(result, *toFloorResponse(&floors[i]))
	}
	return result, total, nil
}

// ────────────────────── Status ──────────────────────

func (s *floorService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	floor, err := get(ctx, s.logger, s.repo.Floor.GetByID, id, ErrFloorNotFound)
	if err != nil {
		return "", err
	}
	if floor.Status == model.StatusActive {
		return "", ErrFloorAlreadyActive
	}

	exists, err := s.repo.Floor.ExistsActiveNumber(ctx, floor.FloorNumber, id)
	if err != nil {
		s.logger.Error("check floor number failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	if exists {
		return "", ErrFloorNumberExists
	}

	return s.setStatus(ctx, caller, floor, model.StatusActive, "Kích hoạt tầng thành công")
}

func (s *floorService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	floor, err := get(ctx, s.logger, s.repo.Floor.GetByID, id, ErrFloorNotFound)
	if err != nil {
		return "", err
	}
	if floor.Status == model.StatusInactive {
		return "", ErrFloorAlreadyInactive
	}

	n, err := s.repo.Apartment.CountActiveByFloor(ctx, id)
	if err != nil {
		s.logger.Error("count apartments failed", zap.String("floor_id", id), zap.Error(err))
		return "", err
	}
	if n > 0 {
		return "", ErrFloorHasApartments
	}

	return s.setStatus(ctx, caller, floor, model.StatusInactive, "Ngừng hoạt động tầng thành công")
}

func (s *floorService) setStatus(ctx context.Context, caller dto.Caller, floor *model.Floor, status model.ActiveStatus, msg string) (string, error) {
	floor.Status = status
	floor.Stamp(caller.UserID)
	if err := s.repo.Floor.Update(ctx, floor); err != nil {
		s.logger.Error("update floor status failed", zap.String("id", floor.FloorID), zap.Error(err))
		return "", err
	}
	invalidate(ctx, s.cache, s.logger, floorCachePrefix)
	return msg, nil
}

func toFloorResponse(f *model.Floor) *dto.FloorResponse {
	return &dto.FloorResponse{
		ID:          f.FloorID,
		FloorNumber: f.FloorNumber,
		Description: f.Description,
		Status:      string(f.Status),
		CreatedAt:   formatTime(f.CreatedAt),
	}
}
