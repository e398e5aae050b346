package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// latestRequestStatus correlated subquery yielding the current status of a repair_requests row
const latestRequestStatus = `(SELECT t.status FROM request_trackings t
	WHERE t.repair_request_id = repair_requests.repair_request_id
	ORDER BY t.updated_at DESC LIMIT 1)`

// RequestFilter repair request list criteria
type RequestFilter struct {
	Keyword      string
	ApartmentID  string
	ApartmentIDs []string // resident scoping, nil means unrestricted
	UserID       string
	Status       model.RequestStatus
	Emergency    *bool
	From         *time.Time
	To           *time.Time
	Page
}

// RepairRequestRepository repair request data access
type RepairRequestRepository interface {
	Create(ctx context.Context, r *model.RepairRequest) error
	Update(ctx context.Context, r *model.RepairRequest) error
	GetByID(ctx context.Context, id string) (*model.RepairRequest, error)
	List(ctx context.Context, f RequestFilter) ([]model.RepairRequest, int64, error)
	CountOpenByApartment(ctx context.Context, apartmentID string) (int64, error)

	AddTracking(ctx context.Context, t *model.RequestTracking) error
	ListTrackings(ctx context.Context, requestID string) ([]model.RequestTracking, error)
	LatestTracking(ctx context.Context, requestID string) (*model.RequestTracking, error)
	LatestStatuses(ctx context.Context, requestIDs []string) (map[string]model.RequestStatus, error)
}

type repairRequestRepo struct {
	crud[model.RepairRequest]
}

// NewRepairRequestRepo creates a RepairRequestRepository
func NewRepairRequestRepo(db *gorm.DB) RepairRequestRepository {
	return &repairRequestRepo{crud[model.RepairRequest]{db: db}}
}

func (r *repairRequestRepo) Create(ctx context.Context, req *model.RepairRequest) error {
	return r.create(ctx, req)
}

func (r *repairRequestRepo) Update(ctx context.Context, req *model.RepairRequest) error {
	return r.db.WithContext(ctx).Omit("Apartment", "Issue").Save(req).Error
}

func (r *repairRequestRepo) GetByID(ctx context.Context, id string) (*model.RepairRequest, error) {
	return r.first(ctx,
		preload("Apartment.Floor"),
		preload("Issue.Technique"),
		where("repair_request_id = ?", id),
	)
}

func (r *repairRequestRepo) List(ctx context.Context, f RequestFilter) ([]model.RepairRequest, int64, error) {
	return r.page(ctx, f.Page, "created_at DESC", []string{"Apartment", "Issue"},
		whereIf(f.Keyword != "", "(object ILIKE ? OR description ILIKE ?)", likePattern(f.Keyword), likePattern(f.Keyword)),
		whereIf(f.ApartmentID != "", "apartment_id = ?", f.ApartmentID),
		whereIf(f.ApartmentIDs != nil, "apartment_id IN ?", f.ApartmentIDs),
		whereIf(f.UserID != "", "user_id = ?", f.UserID),
		whereIf(f.Status != "", latestRequestStatus+" = ?", f.Status),
		whereIf(f.Emergency != nil, "is_emergency = ?", f.Emergency != nil && *f.Emergency),
		whereIf(f.From != nil, "created_at >= ?", f.From),
		whereIf(f.To != nil, "created_at <= ?", f.To),
	)
}

func (r *repairRequestRepo) CountOpenByApartment(ctx context.Context, apartmentID string) (int64, error) {
	return r.count(ctx,
		where("apartment_id = ?", apartmentID),
		where(latestRequestStatus+" NOT IN ?", []model.RequestStatus{
			model.RequestRejected, model.RequestCompleted, model.RequestCancelled,
		}),
	)
}

func (r *repairRequestRepo) AddTracking(ctx context.Context, t *model.RequestTracking) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repairRequestRepo) ListTrackings(ctx context.Context, requestID string) ([]model.RequestTracking, error) {
	var rows []model.RequestTracking
	err := r.db.WithContext(ctx).
		Where("repair_request_id = ?", requestID).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repairRequestRepo) LatestTracking(ctx context.Context, requestID string) (*model.RequestTracking, error) {
	var t model.RequestTracking
	err := r.db.WithContext(ctx).
		Where("repair_request_id = ?", requestID).
		Order("updated_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repairRequestRepo) LatestStatuses(ctx context.Context, requestIDs []string) (map[string]model.RequestStatus, error) {
	out := make(map[string]model.RequestStatus, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RepairRequestID string
		Status          model.RequestStatus
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (repair_request_id) repair_request_id, status
		FROM request_trackings
		WHERE repair_request_id IN ?
		ORDER BY repair_request_id, updated_at DESC`, requestIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RepairRequestID] = row.Status
	}
	return out, nil
}
