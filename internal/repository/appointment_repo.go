package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

const latestAppointmentStatus = `(SELECT t.status FROM appointment_trackings t
	WHERE t.appointment_id = appointments.appointment_id
	ORDER BY t.updated_at DESC LIMIT 1)`

// AppointmentFilter appointment list criteria
type AppointmentFilter struct {
	RepairRequestID string
	TechnicianID    string
	Status          model.AppointmentStatus
	From            *time.Time
	To              *time.Time
	Page
}

// AppointmentRepository appointment data access
type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	Update(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	ListByRequest(ctx context.Context, requestID string) ([]model.Appointment, error)
	CountByRequests(ctx context.Context, requestIDs []string) (map[string]int64, error)
	List(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error)

	AddTracking(ctx context.Context, t *model.AppointmentTracking) error
	ListTrackings(ctx context.Context, appointmentID string) ([]model.AppointmentTracking, error)
	LatestTracking(ctx context.Context, appointmentID string) (*model.AppointmentTracking, error)
	LatestStatuses(ctx context.Context, appointmentIDs []string) (map[string]model.AppointmentStatus, error)
}

type appointmentRepo struct {
	crud[model.Appointment]
}

// NewAppointmentRepo creates an AppointmentRepository
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{crud[model.Appointment]{db: db}}
}

func (r *appointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	return r.create(ctx, a)
}

func (r *appointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	return r.db.WithContext(ctx).Omit("RepairRequest").Save(a).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	return r.first(ctx, preload("RepairRequest"), where("appointment_id = ?", id))
}

func (r *appointmentRepo) ListByRequest(ctx context.Context, requestID string) ([]model.Appointment, error) {
	return r.find(ctx, where("repair_request_id = ?", requestID), orderBy("start_time ASC"))
}

func (r *appointmentRepo) CountByRequests(ctx context.Context, requestIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RepairRequestID string
		N               int64
	}
	err := r.db.WithContext(ctx).Model(&model.Appointment{}).
		Select("repair_request_id, COUNT(*) AS n").
		Where("repair_request_id IN ?", requestIDs).
		Group("repair_request_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.RepairRequestID] = row.N
	}
	return out, nil
}

func (r *appointmentRepo) List(ctx context.Context, f AppointmentFilter) ([]model.Appointment, int64, error) {
	return r.page(ctx, f.Page, "start_time DESC", []string{"RepairRequest"},
		whereIf(f.RepairRequestID != "", "repair_request_id = ?", f.RepairRequestID),
		whereIf(f.TechnicianID != "",
			"appointment_id IN (SELECT appointment_id FROM appointment_assigns WHERE technician_id = ?)", f.TechnicianID),
		whereIf(f.Status != "", latestAppointmentStatus+" = ?", f.Status),
		whereIf(f.From != nil, "start_time >= ?", f.From),
		whereIf(f.To != nil, "start_time <= ?", f.To),
	)
}

func (r *appointmentRepo) AddTracking(ctx context.Context, t *model.AppointmentTracking) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *appointmentRepo) ListTrackings(ctx context.Context, appointmentID string) ([]model.AppointmentTracking, error) {
	var rows []model.AppointmentTracking
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("updated_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *appointmentRepo) LatestTracking(ctx context.Context, appointmentID string) (*model.AppointmentTracking, error) {
	var t model.AppointmentTracking
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("updated_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *appointmentRepo) LatestStatuses(ctx context.Context, appointmentIDs []string) (map[string]model.AppointmentStatus, error) {
	out := make(map[string]model.AppointmentStatus, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		AppointmentID string
		Status        model.AppointmentStatus
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT DISTINCT ON (appointment_id) appointment_id, status
		FROM appointment_trackings
		WHERE appointment_id IN ?
		ORDER BY appointment_id, updated_at DESC`, appointmentIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.AppointmentID] = row.Status
	}
	return out, nil
}

// ── assignments ──

// AppointmentAssignRepository technician work order data access
type AppointmentAssignRepository interface {
	Create(ctx context.Context, a *model.AppointmentAssign) error
	Update(ctx context.Context, a *model.AppointmentAssign) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*model.AppointmentAssign, error)
	GetByAppointmentAndTechnician(ctx context.Context, appointmentID, technicianID string) (*model.AppointmentAssign, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]model.AppointmentAssign, error)
	CountByAppointment(ctx context.Context, appointmentID string) (int64, error)
	ListByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]model.AppointmentAssign, error)
	// HasOverlap reports a non-completed work order of the technician intersecting [start, end)
	HasOverlap(ctx context.Context, technicianID string, start, end time.Time, excludeAppointmentID string) (bool, error)
	// Workload counts work orders per technician starting inside [from, to)
	Workload(ctx context.Context, technicianIDs []string, from, to time.Time) (map[string]int64, error)
}

type appointmentAssignRepo struct {
	crud[model.AppointmentAssign]
}

// NewAppointmentAssignRepo creates an AppointmentAssignRepository
func NewAppointmentAssignRepo(db *gorm.DB) AppointmentAssignRepository {
	return &appointmentAssignRepo{crud[model.AppointmentAssign]{db: db}}
}

func (r *appointmentAssignRepo) Create(ctx context.Context, a *model.AppointmentAssign) error {
	return r.create(ctx, a)
}

func (r *appointmentAssignRepo) Update(ctx context.Context, a *model.AppointmentAssign) error {
	return r.db.WithContext(ctx).Omit("Technician").Save(a).Error
}

func (r *appointmentAssignRepo) Delete(ctx context.Context, id string) error {
	return r.delete(ctx, where("appointment_assign_id = ?", id))
}

func (r *appointmentAssignRepo) GetByID(ctx context.Context, id string) (*model.AppointmentAssign, error) {
	return r.first(ctx, preload("Technician"), where("appointment_assign_id = ?", id))
}

func (r *appointmentAssignRepo) GetByAppointmentAndTechnician(ctx context.Context, appointmentID, technicianID string) (*model.AppointmentAssign, error) {
	return r.first(ctx, where("appointment_id = ? AND technician_id = ?", appointmentID, technicianID))
}

func (r *appointmentAssignRepo) ListByAppointment(ctx context.Context, appointmentID string) ([]model.AppointmentAssign, error) {
	return r.find(ctx, preload("Technician"), where("appointment_id = ?", appointmentID), orderBy("created_at ASC"))
}

func (r *appointmentAssignRepo) CountByAppointment(ctx context.Context, appointmentID string) (int64, error) {
	return r.count(ctx, where("appointment_id = ?", appointmentID))
}

func (r *appointmentAssignRepo) ListByTechnician(ctx context.Context, technicianID string, from, to *time.Time) ([]model.AppointmentAssign, error) {
	return r.find(ctx,
		where("technician_id = ?", technicianID),
		whereIf(from != nil, "estimated_end_time >= ?", from),
		whereIf(to != nil, "estimated_start_time <= ?", to),
		orderBy("estimated_start_time ASC"),
	)
}

func (r *appointmentAssignRepo) HasOverlap(ctx context.Context, technicianID string, start, end time.Time, excludeAppointmentID string) (bool, error) {
	return r.exists(ctx,
		where("technician_id = ? AND status <> ?", technicianID, model.WorkOrderCompleted),
		where("estimated_start_time < ? AND estimated_end_time > ?", end, start),
		whereIf(excludeAppointmentID != "", "appointment_id <> ?", excludeAppointmentID),
	)
}

func (r *appointmentAssignRepo) Workload(ctx context.Context, technicianIDs []string, from, to time.Time) (map[string]int64, error) {
	out := make(map[string]int64, len(technicianIDs))
	if len(technicianIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		TechnicianID string
		N            int64
	}
	err := r.db.WithContext(ctx).Model(&model.AppointmentAssign{}).
		Select("technician_id, COUNT(*) AS n").
		Where("technician_id IN ?", technicianIDs).
		Where("estimated_start_time >= ? AND estimated_start_time < ?", from, to).
		Group("technician_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TechnicianID] = row.N
	}
	return out, nil
}
