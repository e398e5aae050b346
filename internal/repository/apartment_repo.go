package repository

import (
	"context"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// ── floors ──

// FloorFilter floor list criteria
type FloorFilter struct {
	Keyword string
	Status  model.ActiveStatus
	Page
}

// FloorRepository floor data access
type FloorRepository interface {
	Create(ctx context.Context, f *model.Floor) error
	Update(ctx context.Context, f *model.Floor) error
	GetByID(ctx context.Context, id string) (*model.Floor, error)
	ExistsActiveNumber(ctx context.Context, number int, excludeID string) (bool, error)
	List(ctx context.Context, f FloorFilter) ([]model.Floor, int64, error)
}

type floorRepo struct {
	crud[model.Floor]
}

// NewFloorRepo creates a FloorRepository
func NewFloorRepo(db *gorm.DB) FloorRepository {
	return &floorRepo{crud[model.Floor]{db: db}}
}

func (r *floorRepo) Create(ctx context.Context, f *model.Floor) error { return r.create(ctx, f) }
func (r *floorRepo) Update(ctx context.Context, f *model.Floor) error { return r.save(ctx, f) }

func (r *floorRepo) GetByID(ctx context.Context, id string) (*model.Floor, error) {
	return r.first(ctx, where("floor_id = ?", id))
}

func (r *floorRepo) ExistsActiveNumber(ctx context.Context, number int, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("floor_number = ? AND status = ?", number, model.StatusActive),
		excluding("floor_id", excludeID),
	)
}

func (r *floorRepo) List(ctx context.Context, f FloorFilter) ([]model.Floor, int64, error) {
	return r.page(ctx, f.Page, "floor_number ASC", nil,
		whereIf(f.Keyword != "", "(CAST(floor_number AS TEXT) LIKE ? OR description ILIKE ?)", likePattern(f.Keyword), likePattern(f.Keyword)),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── apartments ──

// ApartmentFilter apartment list criteria
type ApartmentFilter struct {
	Keyword string
	FloorID string
	Status  model.ActiveStatus
	Page
}

// ApartmentRepository apartment data access
type ApartmentRepository interface {
	Create(ctx context.Context, a *model.Apartment) error
	Update(ctx context.Context, a *model.Apartment) error
	GetByID(ctx context.Context, id string) (*model.Apartment, error)
	ExistsActiveRoom(ctx context.Context, floorID, room, excludeID string) (bool, error)
	CountActiveByFloor(ctx context.Context, floorID string) (int64, error)
	List(ctx context.Context, f ApartmentFilter) ([]model.Apartment, int64, error)
}

type apartmentRepo struct {
	crud[model.Apartment]
}

// NewApartmentRepo creates an ApartmentRepository
func NewApartmentRepo(db *gorm.DB) ApartmentRepository {
	return &apartmentRepo{crud[model.Apartment]{db: db}}
}

func (r *apartmentRepo) Create(ctx context.Context, a *model.Apartment) error { return r.create(ctx, a) }

func (r *apartmentRepo) Update(ctx context.Context, a *model.Apartment) error {
	return r.db.WithContext(ctx).Omit("Floor").Save(a).Error
}

func (r *apartmentRepo) GetByID(ctx context.Context, id string) (*model.Apartment, error) {
	return r.first(ctx, preload("Floor"), where("apartment_id = ?", id))
}

func (r *apartmentRepo) ExistsActiveRoom(ctx context.Context, floorID, room, excludeID string) (bool, error) {
	return r.exists(ctx,
		where("floor_id = ? AND LOWER(room) = LOWER(?) AND status = ?", floorID, room, model.StatusActive),
		excluding("apartment_id", excludeID),
	)
}

func (r *apartmentRepo) CountActiveByFloor(ctx context.Context, floorID string) (int64, error) {
	return r.count(ctx, where("floor_id = ? AND status = ?", floorID, model.StatusActive))
}

func (r *apartmentRepo) List(ctx context.Context, f ApartmentFilter) ([]model.Apartment, int64, error) {
	return r.page(ctx, f.Page, "room ASC", []string{"Floor"},
		whereIf(f.Keyword != "", "(room ILIKE ? OR description ILIKE ?)", likePattern(f.Keyword), likePattern(f.Keyword)),
		whereIf(f.FloorID != "", "floor_id = ?", f.FloorID),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

// ── residents ──

// UserApartmentRepository apartment residency data access
type UserApartmentRepository interface {
	Create(ctx context.Context, ua *model.UserApartment) error
	Update(ctx context.Context, ua *model.UserApartment) error
	GetActive(ctx context.Context, userID, apartmentID string) (*model.UserApartment, error)
	ListActiveByApartment(ctx context.Context, apartmentID string) ([]model.UserApartment, error)
	ListActiveApartmentIDsByUser(ctx context.Context, userID string) ([]string, error)
}

type userApartmentRepo struct {
	crud[model.UserApartment]
}

// NewUserApartmentRepo creates a UserApartmentRepository
func NewUserApartmentRepo(db *gorm.DB) UserApartmentRepository {
	return &userApartmentRepo{crud[model.UserApartment]{db: db}}
}

func (r *userApartmentRepo) Create(ctx context.Context, ua *model.UserApartment) error {
	return r.create(ctx, ua)
}

func (r *userApartmentRepo) Update(ctx context.Context, ua *model.UserApartment) error {
	return r.db.WithContext(ctx).Omit("User").Save(ua).Error
}

func (r *userApartmentRepo) GetActive(ctx context.Context, userID, apartmentID string) (*model.UserApartment, error) {
	return r.first(ctx, where("user_id = ? AND apartment_id = ? AND status = ?", userID, apartmentID, model.StatusActive))
}

func (r *userApartmentRepo) ListActiveByApartment(ctx context.Context, apartmentID string) ([]model.UserApartment, error) {
	return r.find(ctx, preload("User"), where("apartment_id = ? AND status = ?", apartmentID, model.StatusActive))
}

func (r *userApartmentRepo) ListActiveApartmentIDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.UserApartment{}).
		Where("user_id = ? AND status = ?", userID, model.StatusActive).
		Pluck("apartment_id", &ids).Error
	return ids, err
}
