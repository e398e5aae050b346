package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// ReportFilter report list criteria
type ReportFilter struct {
	AppointmentID string
	UserID        string
	Status        model.ReportStatus
	From          *time.Time
	To            *time.Time
	Page
}

func (f ReportFilter) scopes() []Scope {
	return []Scope{
		whereIf(f.AppointmentID != "", "appointment_id = ?", f.AppointmentID),
		whereIf(f.UserID != "", "user_id = ?", f.UserID),
		whereIf(f.Status != "", "status = ?", f.Status),
		whereIf(f.From != nil, "created_at >= ?", f.From),
		whereIf(f.To != nil, "created_at <= ?", f.To),
	}
}

// ── inspection reports ──

// InspectionReportRepository inspection report data access
type InspectionReportRepository interface {
	Create(ctx context.Context, r *model.InspectionReport) error
	Update(ctx context.Context, r *model.InspectionReport) error
	GetByID(ctx context.Context, id string) (*model.InspectionReport, error)
	ListByAppointments(ctx context.Context, appointmentIDs []string) ([]model.InspectionReport, error)
	List(ctx context.Context, f ReportFilter) ([]model.InspectionReport, int64, error)
}

type inspectionReportRepo struct {
	crud[model.InspectionReport]
}

// NewInspectionReportRepo creates an InspectionReportRepository
func NewInspectionReportRepo(db *gorm.DB) InspectionReportRepository {
	return &inspectionReportRepo{crud[model.InspectionReport]{db: db}}
}

func (r *inspectionReportRepo) Create(ctx context.Context, rep *model.InspectionReport) error {
	return r.create(ctx, rep)
}

func (r *inspectionReportRepo) Update(ctx context.Context, rep *model.InspectionReport) error {
	return r.save(ctx, rep)
}

func (r *inspectionReportRepo) GetByID(ctx context.Context, id string) (*model.InspectionReport, error) {
	return r.first(ctx, where("inspection_report_id = ?", id))
}

func (r *inspectionReportRepo) ListByAppointments(ctx context.Context, appointmentIDs []string) ([]model.InspectionReport, error) {
	if len(appointmentIDs) == 0 {
		return nil, nil
	}
	return r.find(ctx, where("appointment_id IN ?", appointmentIDs), orderBy("created_at DESC"))
}

func (r *inspectionReportRepo) List(ctx context.Context, f ReportFilter) ([]model.InspectionReport, int64, error) {
	return r.page(ctx, f.Page, "created_at DESC", nil, f.scopes()...)
}

// ── repair reports ──

// RepairReportRepository repair report data access
type RepairReportRepository interface {
	Create(ctx context.Context, r *model.RepairReport) error
	Update(ctx context.Context, r *model.RepairReport) error
	GetByID(ctx context.Context, id string) (*model.RepairReport, error)
	GetByAppointment(ctx context.Context, appointmentID string) (*model.RepairReport, error)
	List(ctx context.Context, f ReportFilter) ([]model.RepairReport, int64, error)
}

type repairReportRepo struct {
	crud[model.RepairReport]
}

// NewRepairReportRepo creates a RepairReportRepository
func NewRepairReportRepo(db *gorm.DB) RepairReportRepository {
	return &repairReportRepo{crud[model.RepairReport]{db: db}}
}

func (r *repairReportRepo) Create(ctx context.Context, rep *model.RepairReport) error {
	return r.create(ctx, rep)
}

func (r *repairReportRepo) Update(ctx context.Context, rep *model.RepairReport) error {
	return r.save(ctx, rep)
}

func (r *repairReportRepo) GetByID(ctx context.Context, id string) (*model.RepairReport, error) {
	return r.first(ctx, where("repair_report_id = ?", id))
}

func (r *repairReportRepo) GetByAppointment(ctx context.Context, appointmentID string) (*model.RepairReport, error) {
	return r.first(ctx, where("appointment_id = ?", appointmentID))
}

func (r *repairReportRepo) List(ctx context.Context, f ReportFilter) ([]model.RepairReport, int64, error) {
	return r.page(ctx, f.Page, "created_at DESC", nil, f.scopes()...)
}

// ── approvals ──

// ReportApprovalRepository approval chain data access
type ReportApprovalRepository interface {
	Create(ctx context.Context, a *model.ReportApproval) error
	Update(ctx context.Context, a *model.ReportApproval) error
	ListByReport(ctx context.Context, ref model.ReportRef) ([]model.ReportApproval, error)
	ListPending(ctx context.Context, ref model.ReportRef) ([]model.ReportApproval, error)
}

type reportApprovalRepo struct {
	crud[model.ReportApproval]
}

// NewReportApprovalRepo creates a ReportApprovalRepository
func NewReportApprovalRepo(db *gorm.DB) ReportApprovalRepository {
	return &reportApprovalRepo{crud[model.ReportApproval]{db: db}}
}

func (r *reportApprovalRepo) Create(ctx context.Context, a *model.ReportApproval) error {
	return r.create(ctx, a)
}

func (r *reportApprovalRepo) Update(ctx context.Context, a *model.ReportApproval) error {
	return r.save(ctx, a)
}

func (r *reportApprovalRepo) ListByReport(ctx context.Context, ref model.ReportRef) ([]model.ReportApproval, error) {
	byRef, err := reportScope(ref)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, byRef, orderBy("created_at ASC"))
}

func (r *reportApprovalRepo) ListPending(ctx context.Context, ref model.ReportRef) ([]model.ReportApproval, error) {
	byRef, err := reportScope(ref)
	if err != nil {
		return nil, err
	}
	return r.find(ctx, byRef, where("status = ?", model.ReportPending))
}

func reportScope(ref model.ReportRef) (Scope, error) {
	switch ref := ref.(type) {
	case model.InspectionReportRef:
		return where("inspection_report_id = ?", ref.ReportID()), nil
	case model.RepairReportRef:
		return where("repair_report_id = ?", ref.ReportID()), nil
	default:
		return nil, fmt.Errorf("unknown report reference %T", ref)
	}
}
