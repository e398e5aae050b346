package repository

import (
	"context"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// CatalogFilter list criteria shared by the small catalog tables
type CatalogFilter struct {
	Keyword string
	Status  model.ActiveStatus
	Page
}

// ── techniques ──

// TechniqueRepository technique data access
type TechniqueRepository interface {
	Create(ctx context.Context, t *model.Technique) error
	Update(ctx context.Context, t *model.Technique) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Technique, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Technique, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, f CatalogFilter) ([]model.Technique, int64, error)
}

type techniqueRepo struct {
	crud[model.Technique]
}

// NewTechniqueRepo creates a TechniqueRepository
func NewTechniqueRepo(db *gorm.DB) TechniqueRepository {
	return &techniqueRepo{crud[model.Technique]{db: db}}
}

func (r *techniqueRepo) Create(ctx context.Context, t *model.Technique) error { return r.create(ctx, t) }
func (r *techniqueRepo) Update(ctx context.Context, t *model.Technique) error { return r.save(ctx, t) }

func (r *techniqueRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, where("technique_id = ?", id))
}

func (r *techniqueRepo) GetByID(ctx context.Context, id string) (*model.Technique, error) {
	return r.first(ctx, where("technique_id = ?", id))
}

func (r *techniqueRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Technique, error) {
	if len(ids) == 0 {
		return []model.Technique{}, nil
	}
	return r.find(ctx, where("technique_id IN ?", ids))
}

func (r *techniqueRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, where("LOWER(name) = LOWER(?)", name), excluding("technique_id", excludeID))
}

func (r *techniqueRepo) List(ctx context.Context, f CatalogFilter) ([]model.Technique, int64, error) {
	return r.page(ctx, f.Page, "name ASC", nil,
		whereIf(f.Keyword != "", "name ILIKE ?", likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── technician skills ──

// UserTechniqueRepository technician skill data access
type UserTechniqueRepository interface {
	CreateBatch(ctx context.Context, items []model.UserTechnique) error
	DeleteByUser(ctx context.Context, userID string, techniqueIDs ...string) error
	ListByUser(ctx context.Context, userID string) ([]model.UserTechnique, error)
	ListUserIDsByTechnique(ctx context.Context, techniqueID string) ([]string, error)
	CountByTechnique(ctx context.Context, techniqueID string) (int64, error)
}

type userTechniqueRepo struct {
	crud[model.UserTechnique]
}

// NewUserTechniqueRepo creates a UserTechniqueRepository
func NewUserTechniqueRepo(db *gorm.DB) UserTechniqueRepository {
	return &userTechniqueRepo{crud[model.UserTechnique]{db: db}}
}

func (r *userTechniqueRepo) CreateBatch(ctx context.Context, items []model.UserTechnique) error {
	return r.createBatch(ctx, items)
}

// DeleteByUser removes the given skills of a user, or all of them when none are given
func (r *userTechniqueRepo) DeleteByUser(ctx context.Context, userID string, techniqueIDs ...string) error {
	return r.delete(ctx,
		where("user_id = ?", userID),
		whereIf(len(techniqueIDs) > 0, "technique_id IN ?", techniqueIDs),
	)
}

func (r *userTechniqueRepo) ListByUser(ctx context.Context, userID string) ([]model.UserTechnique, error) {
	return r.find(ctx, preload("Technique"), where("user_id = ?", userID), orderBy("created_at"))
}

func (r *userTechniqueRepo) ListUserIDsByTechnique(ctx context.Context, techniqueID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.UserTechnique{}).
		Where("technique_id = ?", techniqueID).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *userTechniqueRepo) CountByTechnique(ctx context.Context, techniqueID string) (int64, error) {
	return r.count(ctx, where("technique_id = ?", techniqueID))
}

// ── issues ──

// IssueFilter issue list criteria
type IssueFilter struct {
	CatalogFilter
	TechniqueID string
	Emergency   *bool
}

// IssueRepository issue type data access
type IssueRepository interface {
	Create(ctx context.Context, i *model.Issue) error
	Update(ctx context.Context, i *model.Issue) error
	GetByID(ctx context.Context, id string) (*model.Issue, error)
	ExistsName(ctx context.Context, techniqueID, name, excludeID string) (bool, error)
	CountByTechnique(ctx context.Context, techniqueID string) (int64, error)
	List(ctx context.Context, f IssueFilter) ([]model.Issue, int64, error)
}

type issueRepo struct {
	crud[model.Issue]
}

// NewIssueRepo creates an IssueRepository
func NewIssueRepo(db *gorm.DB) IssueRepository {
	return &issueRepo{crud[model.Issue]{db: db}}
}

func (r *issueRepo) Create(ctx context.Context, i *model.Issue) error { return r.create(ctx, i) }

func (r *issueRepo) Update(ctx context.Context, i *model.Issue) error {
	return r.db.WithContext(ctx).Omit("Technique").Save(i).Error
}

func (r *issueRepo) GetByID(ctx context.Context, id string) (*model.Issue, error) {
	return r.first(ctx, preload("Technique"), where("issue_id = ?", id))
}

func (r *issueRepo) ExistsName(ctx context.Context, techniqueID, name, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("technique_id = ? AND LOWER(name) = LOWER(?)", techniqueID, name),
		excluding("issue_id", excludeID),
	)
}

func (r *issueRepo) CountByTechnique(ctx context.Context, techniqueID string) (int64, error) {
	return r.count(ctx, where("technique_id = ?", techniqueID))
}

func (r *issueRepo) List(ctx context.Context, f IssueFilter) ([]model.Issue, int64, error) {
	return r.page(ctx, f.Page, "name ASC", []string{"Technique"},
		whereIf(f.Keyword != "", "name ILIKE ?", likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
		whereIf(f.TechniqueID != "", "technique_id = ?", f.TechniqueID),
		whereIf(f.Emergency != nil, "is_emergency = ?", f.Emergency != nil && *f.Emergency),
	)
}

// ── accessories ──

// AccessoryRepository accessory data access
type AccessoryRepository interface {
	Create(ctx context.Context, a *model.Accessory) error
	Update(ctx context.Context, a *model.Accessory) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.Accessory, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, f CatalogFilter) ([]model.Accessory, int64, error)
}

type accessoryRepo struct {
	crud[model.Accessory]
}

// NewAccessoryRepo creates an AccessoryRepository
func NewAccessoryRepo(db *gorm.DB) AccessoryRepository {
	return &accessoryRepo{crud[model.Accessory]{db: db}}
}

func (r *accessoryRepo) Create(ctx context.Context, a *model.Accessory) error { return r.create(ctx, a) }
func (r *accessoryRepo) Update(ctx context.Context, a *model.Accessory) error { return r.save(ctx, a) }

func (r *accessoryRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, where("accessory_id = ?", id))
}

func (r *accessoryRepo) GetByID(ctx context.Context, id string) (*model.Accessory, error) {
	return r.first(ctx, where("accessory_id = ?", id))
}

func (r *accessoryRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, where("LOWER(name) = LOWER(?)", name), excluding("accessory_id", excludeID))
}

func (r *accessoryRepo) List(ctx context.Context, f CatalogFilter) ([]model.Accessory, int64, error) {
	return r.page(ctx, f.Page, "name ASC", nil,
		whereIf(f.Keyword != "", "name ILIKE ?", likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}
