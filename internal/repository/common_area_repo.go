package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// ── common areas ──

// CommonAreaRepository common area data access
type CommonAreaRepository interface {
	Create(ctx context.Context, a *model.CommonArea) error
	Update(ctx context.Context, a *model.CommonArea) error
	GetByID(ctx context.Context, id string) (*model.CommonArea, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, f CatalogFilter) ([]model.CommonArea, int64, error)
}

type commonAreaRepo struct {
	crud[model.CommonArea]
}

// NewCommonAreaRepo creates a CommonAreaRepository
func NewCommonAreaRepo(db *gorm.DB) CommonAreaRepository {
	return &commonAreaRepo{crud[model.CommonArea]{db: db}}
}

func (r *commonAreaRepo) Create(ctx context.Context, a *model.CommonArea) error { return r.create(ctx, a) }

func (r *commonAreaRepo) Update(ctx context.Context, a *model.CommonArea) error {
	return r.db.WithContext(ctx).Omit("Floor").Save(a).Error
}

func (r *commonAreaRepo) GetByID(ctx context.Context, id string) (*model.CommonArea, error) {
	return r.first(ctx, where("common_area_id = ?", id))
}

func (r *commonAreaRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, where("LOWER(name) = LOWER(?)", name), excluding("common_area_id", excludeID))
}

func (r *commonAreaRepo) List(ctx context.Context, f CatalogFilter) ([]model.CommonArea, int64, error) {
	return r.page(ctx, f.Page, "name ASC", nil,
		whereIf(f.Keyword != "", "(name ILIKE ? OR location ILIKE ?)", likePattern(f.Keyword), likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── object types ──

// CommonAreaObjectTypeRepository equipment type data access
type CommonAreaObjectTypeRepository interface {
	Create(ctx context.Context, t *model.CommonAreaObjectType) error
	Update(ctx context.Context, t *model.CommonAreaObjectType) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.CommonAreaObjectType, error)
	ExistsName(ctx context.Context, name, excludeID string) (bool, error)
	List(ctx context.Context, f CatalogFilter) ([]model.CommonAreaObjectType, int64, error)
}

type objectTypeRepo struct {
	crud[model.CommonAreaObjectType]
}

// NewCommonAreaObjectTypeRepo creates a CommonAreaObjectTypeRepository
func NewCommonAreaObjectTypeRepo(db *gorm.DB) CommonAreaObjectTypeRepository {
	return &objectTypeRepo{crud[model.CommonAreaObjectType]{db: db}}
}

func (r *objectTypeRepo) Create(ctx context.Context, t *model.CommonAreaObjectType) error {
	return r.create(ctx, t)
}

func (r *objectTypeRepo) Update(ctx context.Context, t *model.CommonAreaObjectType) error {
	return r.save(ctx, t)
}

func (r *objectTypeRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, where("common_area_object_type_id = ?", id))
}

func (r *objectTypeRepo) GetByID(ctx context.Context, id string) (*model.CommonAreaObjectType, error) {
	return r.first(ctx, where("common_area_object_type_id = ?", id))
}

func (r *objectTypeRepo) ExistsName(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, where("LOWER(type_name) = LOWER(?)", name), excluding("common_area_object_type_id", excludeID))
}

func (r *objectTypeRepo) List(ctx context.Context, f CatalogFilter) ([]model.CommonAreaObjectType, int64, error) {
	return r.page(ctx, f.Page, "type_name ASC", nil,
		whereIf(f.Keyword != "", "type_name ILIKE ?", likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── objects ──

// CommonAreaObjectFilter equipment list criteria
type CommonAreaObjectFilter struct {
	CatalogFilter
	CommonAreaID string
	TypeID       string
}

// CommonAreaObjectRepository equipment data access
type CommonAreaObjectRepository interface {
	Create(ctx context.Context, o *model.CommonAreaObject) error
	Update(ctx context.Context, o *model.CommonAreaObject) error
	GetByID(ctx context.Context, id string) (*model.CommonAreaObject, error)
	ExistsName(ctx context.Context, commonAreaID, name, excludeID string) (bool, error)
	CountByType(ctx context.Context, typeID string) (int64, error)
	CountActiveByArea(ctx context.Context, commonAreaID string) (int64, error)
	List(ctx context.Context, f CommonAreaObjectFilter) ([]model.CommonAreaObject, int64, error)
}

type commonAreaObjectRepo struct {
	crud[model.CommonAreaObject]
}

// NewCommonAreaObjectRepo creates a CommonAreaObjectRepository
func NewCommonAreaObjectRepo(db *gorm.DB) CommonAreaObjectRepository {
	return &commonAreaObjectRepo{crud[model.CommonAreaObject]{db: db}}
}

func (r *commonAreaObjectRepo) Create(ctx context.Context, o *model.CommonAreaObject) error {
	return r.create(ctx, o)
}

func (r *commonAreaObjectRepo) Update(ctx context.Context, o *model.CommonAreaObject) error {
	return r.db.WithContext(ctx).Omit("CommonArea", "ObjectType").Save(o).Error
}

func (r *commonAreaObjectRepo) GetByID(ctx context.Context, id string) (*model.CommonAreaObject, error) {
	return r.first(ctx, preload("CommonArea"), preload("ObjectType"), where("common_area_object_id = ?", id))
}

func (r *commonAreaObjectRepo) ExistsName(ctx context.Context, commonAreaID, name, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("common_area_id = ? AND LOWER(name) = LOWER(?)", commonAreaID, name),
		excluding("common_area_object_id", excludeID),
	)
}

func (r *commonAreaObjectRepo) CountByType(ctx context.Context, typeID string) (int64, error) {
	return r.count(ctx, where("common_area_object_type_id = ?", typeID))
}

func (r *commonAreaObjectRepo) CountActiveByArea(ctx context.Context, commonAreaID string) (int64, error) {
	return r.count(ctx, where("common_area_id = ? AND status = ?", commonAreaID, model.StatusActive))
}

func (r *commonAreaObjectRepo) List(ctx context.Context, f CommonAreaObjectFilter) ([]model.CommonAreaObject, int64, error) {
	return r.page(ctx, f.Page, "name ASC", []string{"CommonArea", "ObjectType"},
		whereIf(f.Keyword != "", "name ILIKE ?", likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
		whereIf(f.CommonAreaID != "", "common_area_id = ?", f.CommonAreaID),
		whereIf(f.TypeID != "", "common_area_object_type_id = ?", f.TypeID),
	)
}

// ── maintenance tasks ──

// MaintenanceTaskRepository checklist step data access
type MaintenanceTaskRepository interface {
	Create(ctx context.Context, t *model.MaintenanceTask) error
	Update(ctx context.Context, t *model.MaintenanceTask) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.MaintenanceTask, error)
	ExistsName(ctx context.Context, typeID, name, excludeID string) (bool, error)
	ExistsDisplayOrder(ctx context.Context, typeID string, order int, excludeID string) (bool, error)
	ListByType(ctx context.Context, typeID string) ([]model.MaintenanceTask, error)
	CountByType(ctx context.Context, typeID string) (int64, error)
}

type maintenanceTaskRepo struct {
	crud[model.MaintenanceTask]
}

// NewMaintenanceTaskRepo creates a MaintenanceTaskRepository
func NewMaintenanceTaskRepo(db *gorm.DB) MaintenanceTaskRepository {
	return &maintenanceTaskRepo{crud[model.MaintenanceTask]{db: db}}
}

func (r *maintenanceTaskRepo) Create(ctx context.Context, t *model.MaintenanceTask) error {
	return r.create(ctx, t)
}

func (r *maintenanceTaskRepo) Update(ctx context.Context, t *model.MaintenanceTask) error {
	return r.save(ctx, t)
}

func (r *maintenanceTaskRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, where("maintenance_task_id = ?", id))
}

func (r *maintenanceTaskRepo) GetByID(ctx context.Context, id string) (*model.MaintenanceTask, error) {
	return r.first(ctx, where("maintenance_task_id = ?", id))
}

func (r *maintenanceTaskRepo) ExistsName(ctx context.Context, typeID, name, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("common_area_object_type_id = ? AND LOWER(task_name) = LOWER(?)", typeID, name),
		excluding("maintenance_task_id", excludeID),
	)
}

func (r *maintenanceTaskRepo) ExistsDisplayOrder(ctx context.Context, typeID string, order int, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("common_area_object_type_id = ? AND display_order = ?", typeID, order),
		excluding("maintenance_task_id", excludeID),
	)
}

func (r *maintenanceTaskRepo) ListByType(ctx context.Context, typeID string) ([]model.MaintenanceTask, error) {
	return r.find(ctx, where("common_area_object_type_id = ?", typeID), orderBy("display_order ASC"))
}

func (r *maintenanceTaskRepo) CountByType(ctx context.Context, typeID string) (int64, error) {
	return r.count(ctx, where("common_area_object_type_id = ?", typeID))
}

// ── maintenance schedules ──

// ScheduleFilter maintenance schedule list criteria
type ScheduleFilter struct {
	Status    model.ActiveStatus
	DueBefore *time.Time
	Page
}

// MaintenanceScheduleRepository maintenance plan data access
type MaintenanceScheduleRepository interface {
	Create(ctx context.Context, s *model.MaintenanceSchedule) error
	Update(ctx context.Context, s *model.MaintenanceSchedule) error
	GetByID(ctx context.Context, id string) (*model.MaintenanceSchedule, error)
	GetByObject(ctx context.Context, objectID string) (*model.MaintenanceSchedule, error)
	List(ctx context.Context, f ScheduleFilter) ([]model.MaintenanceSchedule, int64, error)
	AddTrackings(ctx context.Context, rows []model.MaintenanceScheduleTracking) error
	ListTrackings(ctx context.Context, scheduleID string) ([]model.MaintenanceScheduleTracking, error)
}

type maintenanceScheduleRepo struct {
	crud[model.MaintenanceSchedule]
}

// NewMaintenanceScheduleRepo creates a MaintenanceScheduleRepository
func NewMaintenanceScheduleRepo(db *gorm.DB) MaintenanceScheduleRepository {
	return &maintenanceScheduleRepo{crud[model.MaintenanceSchedule]{db: db}}
}

func (r *maintenanceScheduleRepo) Create(ctx context.Context, s *model.MaintenanceSchedule) error {
	return r.create(ctx, s)
}

func (r *maintenanceScheduleRepo) Update(ctx context.Context, s *model.MaintenanceSchedule) error {
	return r.db.WithContext(ctx).Omit("CommonAreaObject", "RequiredTechnique").Save(s).Error
}

func (r *maintenanceScheduleRepo) GetByID(ctx context.Context, id string) (*model.MaintenanceSchedule, error) {
	return r.first(ctx,
		preload("CommonAreaObject.ObjectType"),
		preload("RequiredTechnique"),
		where("maintenance_schedule_id = ?", id),
	)
}

func (r *maintenanceScheduleRepo) GetByObject(ctx context.Context, objectID string) (*model.MaintenanceSchedule, error) {
	return r.first(ctx, where("common_area_object_id = ?", objectID))
}

func (r *maintenanceScheduleRepo) List(ctx context.Context, f ScheduleFilter) ([]model.MaintenanceSchedule, int64, error) {
	return r.page(ctx, f.Page, "next_scheduled_date ASC", []string{"CommonAreaObject", "RequiredTechnique"},
		whereIf(f.Status != "", "status = ?", f.Status),
		whereIf(f.DueBefore != nil, "next_scheduled_date <= ?", f.DueBefore),
	)
}

func (r *maintenanceScheduleRepo) AddTrackings(ctx context.Context, rows []model.MaintenanceScheduleTracking) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *maintenanceScheduleRepo) ListTrackings(ctx context.Context, scheduleID string) ([]model.MaintenanceScheduleTracking, error) {
	var rows []model.MaintenanceScheduleTracking
	err := r.db.WithContext(ctx).
		Where("maintenance_schedule_id = ?", scheduleID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}
