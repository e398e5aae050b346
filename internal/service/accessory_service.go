package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrAccessoryNotFound   = apperr.NotFound("Phụ kiện không tồn tại")
	ErrAccessoryNameExists = apperr.Conflict("Tên phụ kiện đã tồn tại")
	ErrAccessoryPrice      = apperr.Validation("Giá phụ kiện không được âm")
	ErrAccessoryQuantity   = apperr.Validation("Số lượng phụ kiện không được âm")
)

// AccessoryService spare part stock
type AccessoryService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.AccessoryRequest) (*dto.AccessoryResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.AccessoryRequest) (*dto.AccessoryResponse, error)
	Delete(ctx context.Context, caller dto.Caller, id string) error
	// GetByID yields an empty response, not an error, for an unknown id
	GetByID(ctx context.Context, id string) (*dto.AccessoryResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.AccessoryResponse, int64, error)
}

type accessoryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAccessoryService creates an AccessoryService
func NewAccessoryService(repo *repository.Repository, logger *zap.Logger) AccessoryService {
	return &accessoryService{repo: repo, logger: logger}
}

func (s *accessoryService) Create(ctx context.Context, caller dto.Caller, req *dto.AccessoryRequest) (*dto.AccessoryResponse, error) {
	if err := validateStock(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, ""); err != nil {
		return nil, err
	}

	a := &model.Accessory{
		Name:        name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      model.StatusActive,
	}
	a.Stamp(caller.UserID)
	if err := s.repo.Accessory.Create(ctx, a); err != nil {
		s.logger.Error("create accessory failed", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	return toAccessoryResponse(a), nil
}

func (s *accessoryService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.AccessoryRequest) (*dto.AccessoryResponse, error) {
	if err := validateStock(req); err != nil {
		return nil, err
	}
	a, err := get(ctx, s.logger, s.repo.Accessory.GetByID, id, ErrAccessoryNotFound)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, a.Name) {
		if err := s.checkName(ctx, name, id); err != nil {
			return nil, err
		}
	}

	a.Name = name
	a.Description = req.Description
	a.Price = req.Price
	a.Quantity = req.Quantity
	a.Stamp(caller.UserID)
	if err := s.repo.Accessory.Update(ctx, a); err != nil {
		s.logger.Error("update accessory failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAccessoryResponse(a), nil
}

func (s *accessoryService) Delete(ctx context.Context, caller dto.Caller, id string) error {
	if _, err := get(ctx, s.logger, s.repo.Accessory.GetByID, id, ErrAccessoryNotFound); err != nil {
		return err
	}
	if err := s.repo.Accessory.Delete(ctx, id); err != nil {
		s.logger.Error("delete accessory failed", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("accessory deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return nil
}

func (s *accessoryService) GetByID(ctx context.Context, id string) (*dto.AccessoryResponse, error) {
	a, err := s.repo.Accessory.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.AccessoryResponse{}, nil
		}
		s.logger.Error("load accessory failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAccessoryResponse(a), nil
}

func (s *accessoryService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.AccessoryResponse, int64, error) {
	items, total, err := s.repo.Accessory.List(ctx, repository.CatalogFilter{
		Keyword: req.Keyword,
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list accessories failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AccessoryResponse, 0, len(items))
	for i := range items {
		result = append(result, *toAccessoryResponse(&items[i]))
	}
	return result, total, nil
}

func (s *accessoryService) checkName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.Accessory.ExistsName(ctx, name, excludeID)
	if err != nil {
		s.logger.Error("check accessory name failed", zap.Error(err))
		return err
	}
	if exists {
		return ErrAccessoryNameExists
	}
	return nil
}

func validateStock(req *dto.AccessoryRequest) error {
	if req.Price < 0 {
		return ErrAccessoryPrice
	}
	if req.Quantity < 0 {
		return ErrAccessoryQuantity
	}
	return nil
}

func toAccessoryResponse(a *model.Accessory) *dto.AccessoryResponse {
	return &dto.AccessoryResponse{
		ID:          a.AccessoryID,
		Name:        a.Name,
		Description: a.Description,
		Price:       a.Price,
		Quantity:    a.Quantity,
		Status:      string(a.Status),
	}
}
