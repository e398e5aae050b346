package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const apartmentCachePrefix = "apartment"

var (
	ErrApartmentNotFound          = apperr.NotFound("Căn hộ không tồn tại")
	ErrApartmentInactive          = apperr.Validation("Căn hộ đang ngừng hoạt động")
	ErrApartmentRoomExists        = apperr.Conflict("Phòng đã tồn tại trên tầng này")
	ErrApartmentAlreadyActive     = apperr.Validation("Căn hộ đã ở trạng thái hoạt động")
	ErrApartmentAlreadyInactive   = apperr.Validation("Căn hộ đã ở trạng thái ngừng hoạt động")
	ErrApartmentHasResidents      = apperr.Validation("Không thể ngừng hoạt động căn hộ khi vẫn còn cư dân")
	ErrApartmentHasOpenRequests   = apperr.Validation("Không thể ngừng hoạt động căn hộ khi vẫn còn yêu cầu sửa chữa chưa hoàn tất")
	ErrApartmentFull              = apperr.Validation("Căn hộ đã đủ số lượng cư dân")
	ErrResidentAlreadyInApartment = apperr.Conflict("Cư dân đã thuộc căn hộ này")
	ErrResidentNotInApartment     = apperr.NotFound("Cư dân không thuộc căn hộ này")
	ErrUserNotResident            = apperr.Validation("Người dùng không phải là cư dân")
)

// ApartmentService apartment and residency management
type ApartmentService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateApartmentRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateApartmentRequest) (string, error)
	GetByID(ctx context.Context, id string) (*dto.ApartmentResponse, error)
	List(ctx context.Context, req *dto.ApartmentListRequest) ([]dto.ApartmentResponse, int64, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)

	AddResident(ctx context.Context, caller dto.Caller, apartmentID string, req *dto.AddResidentRequest) (string, error)
	RemoveResident(ctx context.Context, caller dto.Caller, apartmentID, userID string) (string, error)
	ListResidents(ctx context.Context, apartmentID string) ([]dto.ResidentResponse, error)
}

type apartmentService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewApartmentService creates an ApartmentService
func NewApartmentService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) ApartmentService {
	return &apartmentService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *apartmentService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateApartmentRequest) (string, error) {
	if err := s.checkPlacement(ctx, req.FloorID, req.Room, ""); err != nil {
		return "", err
	}

	apt := &model.Apartment{
		FloorID:     req.FloorID,
		Room:        req.Room,
		Type:        req.Type,
		Description: req.Description,
		Area:        req.Area,
		Limit:       req.Limit,
		Status:      model.StatusActive,
	}
	apt.Stamp(caller.UserID)

	if err := s.repo.Apartment.Create(ctx, apt); err != nil {
		s.logger.Error("create apartment failed", zap.String("room", req.Room), zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, apartmentCachePrefix)
	return "Tạo căn hộ mới thành công", nil
}

// ────────────────────── Update ──────────────────────

func (s *apartmentService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateApartmentRequest) (string, error) {
	apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, id, ErrApartmentNotFound)
	if err != nil {
		return "", err
	}

	floorID, room := apt.FloorID, apt.Room
	if req.FloorID != nil {
		floorID = *req.FloorID
	}
	if req.Room != nil {
		room = *req.Room
	}
	if floorID != apt.FloorID || room != apt.Room {
		if err := s.checkPlacement(ctx, floorID, room, id); err != nil {
			return "", err
		}
		apt.FloorID, apt.Room = floorID, room
	}

	if req.Type != nil {
		apt.Type = *req.Type
	}
	if req.Description != nil {
		apt.Description = *req.Description
	}
	if req.Area != nil {
		apt.Area = *req.Area
	}
	if req.Limit != nil {
		apt.Limit = *req.Limit
	}
	apt.Stamp(caller.UserID)

	if err := s.repo.Apartment.Update(ctx, apt); err != nil {
		s.logger.Error("update apartment failed", zap.String("id", id), zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, apartmentCachePrefix)
	return "Cập nhật căn hộ thành công", nil
}

// checkPlacement floor exists and is active, and room is free on it
func (s *apartmentService) checkPlacement(ctx context.Context, floorID, room, excludeID string) error {
	floor, err := get(ctx, s.logger, s.repo.Floor.GetByID, floorID, ErrFloorNotFound)
	if err != nil {
		return err
	}
	if floor.Status != model.StatusActive {
		return ErrFloorInactive
	}

	exists, err := s.repo.Apartment.ExistsActiveRoom(ctx, floorID, room, excludeID)
	if err != nil {
		s.logger.Error("check apartment room failed", zap.String("floor_id", floorID), zap.String("room", room), zap.Error(err))
		return err
	}
	if exists {
		return ErrApartmentRoomExists
	}
	return nil
}

// ────────────────────── Query ──────────────────────

func (s *apartmentService) GetByID(ctx context.Context, id string) (*dto.ApartmentResponse, error) {
	return cached(ctx, s.cache, s.logger, cacheKey(apartmentCachePrefix, id), s.ttl, func() (*dto.ApartmentResponse, error) {
		apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, id, ErrApartmentNotFound)
		if err != nil {
			return nil, err
		}
		return toApartmentResponse(apt), nil
	})
}

type apartmentPage struct {
	Items []dto.ApartmentResponse `json:"items"`
	Total int64                   `json:"total"`
}

func (s *apartmentService) List(ctx context.Context, req *dto.ApartmentListRequest) ([]dto.ApartmentResponse, int64, error) {
	key := cacheKey(apartmentCachePrefix, "list", req.Keyword, req.FloorID, req.Status, req.GetPage(), req.GetPageSize())
	page, err := cached(ctx, s.cache, s.logger, key, s.ttl, func() (apartmentPage, error) {
		apts, total, err := s.repo.Apartment.List(ctx, repository.ApartmentFilter{
			Keyword: req.Keyword,
			FloorID: req.FloorID,
			Status:  model.ActiveStatus(req.Status),
			Page:    toPage(req.PaginationRequest),
		})
		if err != nil {
			s.logger.Error("list apartments failed", zap.Error(err))
			return apartmentPage{}, err
		}
		items := make([]dto.ApartmentResponse, 0, len(apts))
		for i := range apts {
			items = append(items, *toApartmentResponse(&apts[i]))
		}
		return apartmentPage{Items: items, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// ────────────────────── Status ──────────────────────

func (s *apartmentService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, id, ErrApartmentNotFound)
	if err != nil {
		return "", err
	}
	if apt.Status == model.StatusActive {
		return "", ErrApartmentAlreadyActive
	}
	if err := s.checkPlacement(ctx, apt.FloorID, apt.Room, id); err != nil {
		return "", err
	}
	return s.setStatus(ctx, caller, apt, model.StatusActive, "Kích hoạt căn hộ thành công")
}

func (s *apartmentService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, id, ErrApartmentNotFound)
	if err != nil {
		return "", err
	}
	if apt.Status == model.StatusInactive {
		return "", ErrApartmentAlreadyInactive
	}

	residents, err := s.repo.UserApartment.ListActiveByApartment(ctx, id)
	if err != nil {
		s.logger.Error("list residents failed", zap.String("apartment_id", id), zap.Error(err))
		return "", err
	}
	if len(residents) > 0 {
		return "", ErrApartmentHasResidents
	}

	open, err := s.repo.RepairRequest.CountOpenByApartment(ctx, id)
	if err != nil {
		s.logger.Error("count open requests failed", zap.String("apartment_id", id), zap.Error(err))
		return "", err
	}
	if open > 0 {
		return "", ErrApartmentHasOpenRequests
	}

	return s.setStatus(ctx, caller, apt, model.StatusInactive, "Ngừng hoạt động căn hộ thành công")
}

func (s *apartmentService) setStatus(ctx context.Context, caller dto.Caller, apt *model.Apartment, status model.ActiveStatus, msg string) (string, error) {
	apt.Status = status
	apt.Stamp(caller.UserID)
	if err := s.repo.Apartment.Update(ctx, apt); err != nil {
		s.logger.Error("update apartment status failed", zap.String("id", apt.ApartmentID), zap.Error(err))
		return "", err
	}
	invalidate(ctx, s.cache, s.logger, apartmentCachePrefix)
	return msg, nil
}

// ────────────────────── Residents ──────────────────────

func (s *apartmentService) AddResident(ctx context.Context, caller dto.Caller, apartmentID string, req *dto.AddResidentRequest) (string, error) {
	apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, apartmentID, ErrApartmentNotFound)
	if err != nil {
		return "", err
	}
	if apt.Status != model.StatusActive {
		return "", ErrApartmentInactive
	}

	user, err := get(ctx, s.logger, s.repo.User.GetByID, req.UserID, ErrUserNotFound)
	if err != nil {
		return "", err
	}
	if user.Role != model.RoleResident {
		return "", ErrUserNotResident
	}
	if user.Status != model.StatusActive {
		return "", ErrUserInactive
	}

	_, err = s.repo.UserApartment.GetActive(ctx, req.UserID, apartmentID)
	switch {
	case err == nil:
		return "", ErrResidentAlreadyInApartment
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("check residency failed", zap.String("apartment_id", apartmentID), zap.Error(err))
		return "", err
	}

	if apt.Limit > 0 {
		residents, err := s.repo.UserApartment.ListActiveByApartment(ctx, apartmentID)
		if err != nil {
			s.logger.Error("list residents failed", zap.String("apartment_id", apartmentID), zap.Error(err))
			return "", err
		}
		if len(residents) >= apt.Limit {
			return "", ErrApartmentFull
		}
	}

	ua := &model.UserApartment{
		UserID:          req.UserID,
		ApartmentID:     apartmentID,
		RoleInApartment: model.ApartmentMemberRole(req.RoleInApartment),
		Status:          model.StatusActive,
	}
	ua.Stamp(caller.UserID)
	if err := s.repo.UserApartment.Create(ctx, ua); err != nil {
		s.logger.Error("add resident failed", zap.String("apartment_id", apartmentID), zap.Error(err))
		return "", err
	}
	return "Thêm cư dân vào căn hộ thành công", nil
}

func (s *apartmentService) RemoveResident(ctx context.Context, caller dto.Caller, apartmentID, userID string) (string, error) {
	ua, err := s.repo.UserApartment.GetActive(ctx, userID, apartmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrResidentNotInApartment
		}
		s.logger.Error("load residency failed", zap.String("apartment_id", apartmentID), zap.Error(err))
		return "", err
	}

	ua.Status = model.StatusInactive
	ua.Stamp(caller.UserID)
	if err := s.repo.UserApartment.Update(ctx, ua); err != nil {
		s.logger.Error("remove resident failed", zap.String("apartment_id", apartmentID), zap.Error(err))
		return "", err
	}
	return "Xóa cư dân khỏi căn hộ thành công", nil
}

func (s *apartmentService) ListResidents(ctx context.Context, apartmentID string) ([]dto.ResidentResponse, error) {
	if _, err := get(ctx, s.logger, s.repo.Apartment.GetByID, apartmentID, ErrApartmentNotFound); err != nil {
		return nil, err
	}

	rows, err := s.repo.UserApartment.ListActiveByApartment(ctx, apartmentID)
	if err != nil {
		s.logger.Error("list residents failed", zap.String("apartment_id", apartmentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ResidentResponse, 0, len(rows))
	for _, ua := range rows {
		r := dto.ResidentResponse{UserID: ua.UserID, RoleInApartment: string(ua.RoleInApartment)}
		if ua.User != nil {
			r.FullName = ua.User.FullName()
			r.PhoneNumber = ua.User.PhoneNumber
		}
		result = append(result, r)
	}
	return result, nil
}

func toApartmentResponse(a *model.Apartment) *dto.ApartmentResponse {
	resp := &dto.ApartmentResponse{
		ID:          a.ApartmentID,
		FloorID:     a.FloorID,
		Room:        a.Room,
		Type:        a.Type,
		Description: a.Description,
		Area:        a.Area,
		Limit:       a.Limit,
		Status:      string(a.Status),
		CreatedAt:   formatTime(a.CreatedAt),
	}
	if a.Floor != nil {
		resp.Floor = toFloorResponse(a.Floor)
	}
	return resp
}
