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
	ErrTechniqueNotFound    = apperr.NotFound("Kỹ thuật không tồn tại")
	ErrTechniqueNameExists  = apperr.Conflict("Tên kỹ thuật đã tồn tại")
	ErrTechniqueInUse       = apperr.Validation("Không thể xóa kỹ thuật đang được sử dụng")
	ErrTechniqueInactive    = apperr.Validation("Kỹ thuật đang ngừng hoạt động")
	ErrTechnicianNotFound   = apperr.NotFound("Kỹ thuật viên không tồn tại")
	ErrNotTechnician        = apperr.Validation("Người dùng không phải là kỹ thuật viên")
	ErrDuplicateTechnique   = apperr.Validation("Danh sách kỹ thuật bị trùng lặp")
	ErrTechniqueAlreadyHeld = apperr.Conflict("Kỹ thuật viên đã có kỹ thuật này")
	ErrTechniqueNotHeld     = apperr.NotFound("Kỹ thuật viên không có kỹ thuật này")
)

// TechniqueService technique catalog and technician skills
type TechniqueService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.TechniqueRequest) (string, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.TechniqueRequest) (string, error)
	Delete(ctx context.Context, caller dto.Caller, id string) (string, error)
	GetByID(ctx context.Context, id string) (*dto.TechniqueResponse, error)
	List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.TechniqueResponse, int64, error)

	// AssignToTechnician adds skills to a technician
	AssignToTechnician(ctx context.Context, caller dto.Caller, req *dto.AssignTechniquesRequest) (string, error)
	// UpdateTechnician replaces the whole skill set of a technician
	UpdateTechnician(ctx context.Context, caller dto.Caller, req *dto.AssignTechniquesRequest) (string, error)
	RemoveFromTechnician(ctx context.Context, caller dto.Caller, technicianID, techniqueID string) (string, error)
	ListByTechnician(ctx context.Context, technicianID string) (*dto.TechnicianTechniquesResponse, error)
}

type techniqueService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTechniqueService creates a TechniqueService
func NewTechniqueService(repo *repository.Repository, logger *zap.Logger) TechniqueService {
	return &techniqueService{repo: repo, logger: logger}
}

// ────────────────────── Catalog ──────────────────────

func (s *techniqueService) Create(ctx context.Context, caller dto.Caller, req *dto.TechniqueRequest) (string, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.checkName(ctx, name, ""); err != nil {
		return "", err
	}

	t := &model.Technique{Name: name, Description: req.Description, Status: model.StatusActive}
	t.Stamp(caller.UserID)
	if err := s.repo.Technique.Create(ctx, t); err != nil {
		s.logger.Error("create technique failed", zap.String("name", name), zap.Error(err))
		return "", err
	}
	return "Tạo kỹ thuật mới thành công", nil
}

func (s *techniqueService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.TechniqueRequest) (string, error) {
	t, err := get(ctx, s.logger, s.repo.Technique.GetByID, id, ErrTechniqueNotFound)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, t.Name) {
		if err := s.checkName(ctx, name, id); err != nil {
			return "", err
		}
	}

	t.Name = name
	t.Description = req.Description
	t.Stamp(caller.UserID)
	if err := s.repo.Technique.Update(ctx, t); err != nil {
		s.logger.Error("update technique failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	return "Cập nhật kỹ thuật thành công", nil
}

func (s *techniqueService) checkName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.Technique.ExistsName(ctx, name, excludeID)
	if err != nil {
		s.logger.Error("check technique name failed", zap.Error(err))
		return err
	}
	if exists {
		return ErrTechniqueNameExists
	}
	return nil
}

// Delete removes a technique that no issue type and no technician references
func (s *techniqueService) Delete(ctx context.Context, caller dto.Caller, id string) (string, error) {
	if _, err := get(ctx, s.logger, s.repo.Technique.GetByID, id, ErrTechniqueNotFound); err != nil {
		return "", err
	}

	issues, err := s.repo.Issue.CountByTechnique(ctx, id)
	if err != nil {
		s.logger.Error("count issues failed", zap.String("technique_id", id), zap.Error(err))
		return "", err
	}
	holders, err := s.repo.UserTechnique.CountByTechnique(ctx, id)
	if err != nil {
		s.logger.Error("count technicians failed", zap.String("technique_id", id), zap.Error(err))
		return "", err
	}
	if issues > 0 || holders > 0 {
		return "", ErrTechniqueInUse
	}

	if err := s.repo.Technique.Delete(ctx, id); err != nil {
		s.logger.Error("delete technique failed", zap.String("id", id), zap.Error(err))
		return "", err
	}
	s.logger.Info("technique deleted", zap.String("id", id), zap.String("by", caller.UserID))
	return "Xóa kỹ thuật thành công", nil
}

func (s *techniqueService) GetByID(ctx context.Context, id string) (*dto.TechniqueResponse, error) {
	t, err := get(ctx, s.logger, s.repo.Technique.GetByID, id, ErrTechniqueNotFound)
	if err != nil {
		return nil, err
	}
	return toTechniqueResponse(t), nil
}

func (s *techniqueService) List(ctx context.Context, req *dto.CatalogListRequest) ([]dto.TechniqueResponse, int64, error) {
	items, total, err := s.repo.Technique.List(ctx, repository.CatalogFilter{
		Keyword: req.Keyword,
		Status:  model.ActiveStatus(req.Status),
		Page:    toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list techniques failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TechniqueResponse, 0, len(items))
	for i := range items {
		result = append(result, *toTechniqueResponse(&items[i]))
	}
	return result, total, nil
}

// ────────────────────── Technician skills ──────────────────────

func (s *techniqueService) AssignToTechnician(ctx context.Context, caller dto.Caller, req *dto.AssignTechniquesRequest) (string, error) {
	if err := s.checkSkillSet(ctx, req); err != nil {
		return "", err
	}

	held, err := s.repo.UserTechnique.ListByUser(ctx, req.TechnicianID)
	if err != nil {
		s.logger.Error("list technician skills failed", zap.String("technician_id", req.TechnicianID), zap.Error(err))
		return "", err
	}
	for _, h := range held {
		for _, id := range req.TechniqueIDs {
			if h.TechniqueID == id {
				return "", ErrTechniqueAlreadyHeld
			}
		}
	}

	if err := s.repo.UserTechnique.CreateBatch(ctx, skillRows(caller, req)); err != nil {
		s.logger.Error("assign techniques failed", zap.String("technician_id", req.TechnicianID), zap.Error(err))
		return "", err
	}
	return "Gán kỹ thuật cho kỹ thuật viên thành công", nil
}

// UpdateTechnician every requested id ends up persisted, replacing the previous set
func (s *techniqueService) UpdateTechnician(ctx context.Context, caller dto.Caller, req *dto.AssignTechniquesRequest) (string, error) {
	if err := s.checkSkillSet(ctx, req); err != nil {
		return "", err
	}

	err := withTx(ctx, s.repo, s.logger, "update technician techniques", func(tx *repository.Repository) error {
		if err := tx.UserTechnique.DeleteByUser(ctx, req.TechnicianID); err != nil {
			return err
		}
		return tx.UserTechnique.CreateBatch(ctx, skillRows(caller, req))
	})
	if err != nil {
		return "", err
	}
	return "Cập nhật kỹ thuật của kỹ thuật viên thành công", nil
}

func (s *techniqueService) RemoveFromTechnician(ctx context.Context, caller dto.Caller, technicianID, techniqueID string) (string, error) {
	held, err := s.repo.UserTechnique.ListByUser(ctx, technicianID)
	if err != nil {
		s.logger.Error("list technician skills failed", zap.String("technician_id", technicianID), zap.Error(err))
		return "", err
	}
	found := false
	for _, h := range held {
		if h.TechniqueID == techniqueID {
			found = true
			break
		}
	}
	if !found {
		return "", ErrTechniqueNotHeld
	}

	if err := s.repo.UserTechnique.DeleteByUser(ctx, technicianID, techniqueID); err != nil {
		s.logger.Error("remove technique failed", zap.String("technician_id", technicianID), zap.Error(err))
		return "", err
	}
	s.logger.Info("technique removed from technician",
		zap.String("technician_id", technicianID), zap.String("technique_id", techniqueID), zap.String("by", caller.UserID))
	return "Gỡ kỹ thuật khỏi kỹ thuật viên thành công", nil
}

func (s *techniqueService) ListByTechnician(ctx context.Context, technicianID string) (*dto.TechnicianTechniquesResponse, error) {
	if _, err := s.loadTechnician(ctx, technicianID); err != nil {
		return nil, err
	}

	held, err := s.repo.UserTechnique.ListByUser(ctx, technicianID)
	if err != nil {
		s.logger.Error("list technician skills failed", zap.String("technician_id", technicianID), zap.Error(err))
		return nil, err
	}

	resp := &dto.TechnicianTechniquesResponse{TechnicianID: technicianID, Techniques: make([]dto.TechniqueResponse, 0, len(held))}
	for _, h := range held {
		if h.Technique != nil {
			resp.Techniques = append(resp.Techniques, *toTechniqueResponse(h.Technique))
		}
	}
	return resp, nil
}

func (s *techniqueService) loadTechnician(ctx context.Context, id string) (*model.User, error) {
	user, err := get(ctx, s.logger, s.repo.User.GetByID, id, ErrTechnicianNotFound)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleTechnician && user.Role != model.RoleTechnicianLead {
		return nil, ErrNotTechnician
	}
	return user, nil
}

// checkSkillSet technician is valid, ids are distinct and every technique exists and is active
func (s *techniqueService) checkSkillSet(ctx context.Context, req *dto.AssignTechniquesRequest) error {
	if _, err := s.loadTechnician(ctx, req.TechnicianID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(req.TechniqueIDs))
	for _, id := range req.TechniqueIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateTechnique
		}
		seen[id] = struct{}{}
	}

	techniques, err := s.repo.Technique.ListByIDs(ctx, req.TechniqueIDs)
	if err != nil {
		s.logger.Error("load techniques failed", zap.Error(err))
		return err
	}
	if len(techniques) != len(req.TechniqueIDs) {
		return ErrTechniqueNotFound
	}
	for _, t := range techniques {
		if t.Status != model.StatusActive {
			return apperr.Validationf("Kỹ thuật %s đang ngừng hoạt động", t.Name)
		}
	}
	return nil
}

func skillRows(caller dto.Caller, req *dto.AssignTechniquesRequest) []model.UserTechnique {
	rows := make([]model.UserTechnique, 0, len(req.TechniqueIDs))
	for _, id := range req.TechniqueIDs {
		ut := model.UserTechnique{UserID: req.TechnicianID, TechniqueID: id}
		ut.Stamp(caller.UserID)
		rows = append(rows, ut)
	}
	return rows
}

func toTechniqueResponse(t *model.Technique) *dto.TechniqueResponse {
	return &dto.TechniqueResponse{
		ID:          t.TechniqueID,
		Name:        t.Name,
		Description: t.Description,
		Status:      string(t.Status),
	}
}
