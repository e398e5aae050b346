package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const issueCachePrefix = "issue"

var (
	ErrIssueNotFound           = apperr.NotFound("Loại sự cố không tồn tại")
	ErrIssueInactive           = apperr.Validation("Loại sự cố đang ngừng hoạt động")
	ErrIssueNameExists         = apperr.Conflict("Tên sự cố đã tồn tại trong kỹ thuật này")
	ErrIssueInvalidDuration    = apperr.Validation("Thời gian ước tính phải lớn hơn 0")
	ErrIssueInvalidTechnicians = apperr.Validation("Số kỹ thuật viên cần thiết phải lớn hơn 0")
	ErrIssueAlreadyActive      = apperr.Validation("Loại sự cố đã ở trạng thái hoạt động")
	ErrIssueAlreadyInactive    = apperr.Validation("Loại sự cố đã ở trạng thái ngừng hoạt động")
)

// IssueService issue type catalog
type IssueService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateIssueRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateIssueRequest) (string, error)
	GetByID(ctx context.Context, id string) (*dto.IssueResponse, error)
	List(ctx context.Context, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (string, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error)
}

type issueService struct {
	repo   *repository.Repository
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewIssueService creates an IssueService
func NewIssueService(repo *repository.Repository, cache Cache, ttl time.Duration, logger *zap.Logger) IssueService {
	return &issueService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *issueService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateIssueRequest) (string, error) {
	if req.EstimatedDuration <= 0 {
		return "", ErrIssueInvalidDuration
	}
	if req.RequiredTechnician <= 0 {
		return "", ErrIssueInvalidTechnicians
	}

	name := strings.TrimSpace(req.Name)
	if err := s.checkTechnique(ctx, req.TechniqueID); err != nil {
		return "", err
	}
	if err := s.checkName(ctx, req.TechniqueID, name, ""); err != nil {
		return "", err
	}

	issue := &model.Issue{
		TechniqueID:        req.TechniqueID,
		Name:               name,
		Description:        req.Description,
		EstimatedDuration:  req.EstimatedDuration,
		RequiredTechnician: req.RequiredTechnician,
		IsEmergency:        req.IsEmergency,
		Status:             model.StatusActive,
	}
	issue.Stamp(caller.UserID)

	if err := s.repo.Issue.Create(ctx, issue); err != nil {
		s.logger.Error("create issue failed", zap.String("name", name), zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, issueCachePrefix)
	return "Tạo loại sự cố mới thành công", nil
}

// ────────────────────── Update ──────────────────────

func (s *issueService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateIssueRequest) (string, error) {
	issue, err := get(ctx, s.logger, s.repo.Issue.GetByID, id, ErrIssueNotFound)
	if err != nil {
		return "", err
	}

	if req.EstimatedDuration != nil {
		if *req.EstimatedDuration <= 0 {
			return "", ErrIssueInvalidDuration
		}
		issue.EstimatedDuration = *req.EstimatedDuration
	}
	if req.RequiredTechnician != nil {
		if *req.RequiredTechnician <= 0 {
			return "", ErrIssueInvalidTechnicians
		}
		issue.RequiredTechnician = *req.RequiredTechnician
	}

	techniqueID, name := issue.TechniqueID, issue.Name
	if req.TechniqueID != nil && *req.TechniqueID != techniqueID {
		if err := s.checkTechnique(ctx, *req.TechniqueID); err != nil {
			return "", err
		}
		techniqueID = *req.TechniqueID
	}
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if techniqueID != issue.TechniqueID || !strings.EqualFold(name, issue.Name) {
		if err := s.checkName(ctx, techniqueID, name, id); err != nil {
			return "", err
		}
	}
	issue.TechniqueID, issue.Name = techniqueID, name

	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.IsEmergency != nil {
		issue.IsEmergency = *req.IsEmergency
	}
	issue.Stamp(caller.UserID)

	if err := s.repo.Issue.Update(ctx, issue); err != nil {
		s.logger.Error("update issue failed", zap.String("id", id), zap.Error(err))
		return "", err
	}

	invalidate(ctx, s.cache, s.logger, issueCachePrefix)
	return "Cập nhật loại sự cố thành công", nil
}

func (s *issueService) checkTechnique(ctx context.Context, id string) error {
	t, err := get(ctx, s.logger, s.repo.Technique.GetByID, id, ErrTechniqueNotFound)
	if err != nil {
		return err
	}
	if t.Status != model.StatusActive {
		return ErrTechniqueInactive
	}
	return nil
}

func (s *issueService) checkName(ctx context.Context, techniqueID, name, excludeID string) error {
	exists, err := s.repo.Issue.ExistsName(ctx, techniqueID, name, excludeID)
	if err != nil {
		s.logger.Error("check issue name failed", zap.Error(err))
		return err
	}
	if exists {
		return ErrIssueNameExists
	}
	return nil
}

// ────────────────────── Query ──────────────────────

func (s *issueService) GetByID(ctx context.Context, id string) (*dto.IssueResponse, error) {
	return cached(ctx, s.cache, s.logger, cacheKey(issueCachePrefix, id), s.ttl, func() (*dto.IssueResponse, error) {
		issue, err := get(ctx, s.logger, s.repo.Issue.GetByID, id, ErrIssueNotFound)
		if err != nil {
			return nil, err
		}
		return toIssueResponse(issue), nil
	})
}

type issuePage struct {
	Items []dto.IssueResponse `json:"items"`
	Total int64               `json:"total"`
}

func (s *issueService) List(ctx context.Context, req *dto.IssueListRequest) ([]dto.IssueResponse, int64, error) {
	emergency := "any"
	if req.Emergency != nil {
		emergency = boolString(*req.Emergency)
	}
	key := cacheKey(issueCachePrefix, "list", req.Keyword, req.Status, req.TechniqueID, emergency, req.GetPage(), req.GetPageSize())

	page, err := cached(ctx, s.cache, s.logger, key, s.ttl, func() (issuePage, error) {
		items, total, err := s.repo.Issue.List(ctx, repository.IssueFilter{
			CatalogFilter: repository.CatalogFilter{
				Keyword: req.Keyword,
				Status:  model.ActiveStatus(req.Status),
				Page:    toPage(req.PaginationRequest),
			},
			TechniqueID: req.TechniqueID,
			Emergency:   req.Emergency,
		})
		if err != nil {
			s.logger.Error("list issues failed", zap.Error(err))
			return issuePage{}, err
		}
		out := make([]dto.IssueResponse, 0, len(items))
		for i := range items {
			out = append(out, *toIssueResponse(&items[i]))
		}
		return issuePage{Items: out, Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// ────────────────────── Status ──────────────────────

func (s *issueService) Activate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	issue, err := get(ctx, s.logger, s.repo.Issue.GetByID, id, ErrIssueNotFound)
	if err != nil {
		return "", err
	}
	if issue.Status == model.StatusActive {
		return "", ErrIssueAlreadyActive
	}
	if err := s.checkTechnique(ctx, issue.TechniqueID); err != nil {
		return "", err
	}
	return s.setStatus(ctx, caller, issue, model.StatusActive, "Kích hoạt loại sự cố thành công")
}

func (s *issueService) Deactivate(ctx context.Context, caller dto.Caller, id string) (string, error) {
	issue, err := get(ctx, s.logger, s.repo.Issue.GetByID, id, ErrIssueNotFound)
	if err != nil {
		return "", err
	}
	if issue.Status == model.StatusInactive {
		return "", ErrIssueAlreadyInactive
	}
	return s.setStatus(ctx, caller, issue, model.StatusInactive, "Ngừng hoạt động loại sự cố thành công")
}

func (s *issueService) setStatus(ctx context.Context, caller dto.Caller, issue *model.Issue, status model.ActiveStatus, msg string) (string, error) {
	issue.Status = status
	issue.Stamp(caller.UserID)
	if err := s.repo.Issue.Update(ctx, issue); err != nil {
		s.logger.Error("update issue status failed", zap.String("id", issue.IssueID), zap.Error(err))
		return "", err
	}
	invalidate(ctx, s.cache, s.logger, issueCachePrefix)
	return msg, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func toIssueResponse(i *model.Issue) *dto.IssueResponse {
	resp := &dto.IssueResponse{
		ID:                 i.IssueID,
		TechniqueID:        i.TechniqueID,
		Name:               i.Name,
		Description:        i.Description,
		EstimatedDuration:  i.EstimatedDuration,
		RequiredTechnician: i.RequiredTechnician,
		IsEmergency:        i.IsEmergency,
		Status:             string(i.Status),
	}
	if i.Technique != nil {
		resp.Technique = toTechniqueResponse(i.Technique)
	}
	return resp
}
