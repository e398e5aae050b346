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

const inspectionReportFolder = "inspection-reports"

var (
	ErrInspectionReportNotFound = apperr.NotFound("Báo cáo kiểm tra không tồn tại")
	ErrInspectionReportExists   = apperr.Conflict("Lịch hẹn đã có báo cáo kiểm tra đang chờ duyệt hoặc đã được duyệt")
	ErrReportNotAuthor          = apperr.Forbidden("Chỉ người lập báo cáo mới được chỉnh sửa")
	ErrReportLocked             = apperr.Validation("Báo cáo đã được duyệt, không thể chỉnh sửa")
	ErrAppointmentNotInVisit    = apperr.Validation("Lịch hẹn không ở trạng thái đang kiểm tra")
	ErrWorkNotStarted           = apperr.Validation("Bạn cần check-in trước khi lập báo cáo")
)

// InspectionReportService diagnosis reports written during a visit
type InspectionReportService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateInspectionReportRequest) (*dto.InspectionReportResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateInspectionReportRequest) (*dto.InspectionReportResponse, error)
	// GetByID yields an empty response, not an error, for an unknown id
	GetByID(ctx context.Context, id string) (*dto.InspectionReportResponse, error)
	List(ctx context.Context, req *dto.ReportListRequest) ([]dto.InspectionReportResponse, int64, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]dto.InspectionReportResponse, error)
}

type inspectionReportService struct {
	repo     *repository.Repository
	storage  FileStorage
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewInspectionReportService creates an InspectionReportService
func NewInspectionReportService(repo *repository.Repository, storage FileStorage, notifier Notifier, logger *zap.Logger) InspectionReportService {
	return &inspectionReportService{repo: repo, storage: storage, notifier: notifier, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *inspectionReportService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateInspectionReportRequest) (*dto.InspectionReportResponse, error) {
	if err := workingAssignment(ctx, s.repo, s.logger, caller, req.AppointmentID); err != nil {
		return nil, err
	}

	status, err := currentAppointmentStatus(ctx, s.repo, req.AppointmentID)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", req.AppointmentID), zap.Error(err))
		return nil, err
	}
	if status != model.AppointmentInVisit {
		return nil, ErrAppointmentNotInVisit
	}

	existing, err := s.repo.InspectionReport.ListByAppointments(ctx, []string{req.AppointmentID})
	if err != nil {
		s.logger.Error("list inspection reports failed", zap.String("appointment_id", req.AppointmentID), zap.Error(err))
		return nil, err
	}
	for _, r := range existing {
		if r.Status != model.ReportRejected {
			return nil, ErrInspectionReportExists
		}
	}

	media, err := uploadAll(ctx, s.storage, s.logger, inspectionReportFolder, model.MediaInspectionReport, req.Files, caller.UserID)
	if err != nil {
		return nil, err
	}

	report := &model.InspectionReport{
		AppointmentID: req.AppointmentID,
		UserID:        caller.UserID,
		FaultOwner:    model.FaultOwner(req.FaultOwner),
		SolutionType:  model.SolutionType(req.SolutionType),
		Description:   req.Description,
		Solution:      req.Solution,
		Status:        model.ReportPending,
	}
	report.Stamp(caller.UserID)

	approval := &model.ReportApproval{Role: model.RoleTechnicianLead, Status: model.ReportPending}
	approval.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "create inspection report", func(tx *repository.Repository) error {
		if err := tx.InspectionReport.Create(ctx, report); err != nil {
			return err
		}
		if len(media) > 0 {
			if err := tx.Media.CreateBatch(ctx, attach(media, report.InspectionReportID)); err != nil {
				return err
			}
		}
		if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: req.AppointmentID,
			Status:        model.AppointmentAwaitingIRApproval,
			UpdatedBy:     caller.UserID,
			UpdatedAt:     s.now(),
		}); err != nil {
			return err
		}
		approval.Attach(model.InspectionReportRef(report.InspectionReportID))
		return tx.ReportApproval.Create(ctx, approval)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inspection report created",
		zap.String("id", report.InspectionReportID),
		zap.String("appointment_id", req.AppointmentID),
		zap.String("solution_type", req.SolutionType))

	notifyRole(ctx, s.notifier, s.logger, model.RoleTechnicianLead, dto.NotificationMessage{
		Type:    "inspection_report.pending",
		Title:   "Báo cáo kiểm tra chờ duyệt",
		Content: report.Description,
		Data:    map[string]string{"inspection_report_id": report.InspectionReportID},
	})

	resp := toInspectionReportResponse(report)
	resp.Media = toMediaResponses(media)
	resp.Approvals = []dto.ReportApprovalResponse{*toReportApprovalResponse(approval)}
	return resp, nil
}

// workingAssignment the caller must be checked in on the appointment
func workingAssignment(ctx context.Context, repo *repository.Repository, logger *zap.Logger, caller dto.Caller, appointmentID string) error {
	assign, err := repo.Assign.GetByAppointmentAndTechnician(ctx, appointmentID, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotAssigned
		}
		logger.Error("load assignment failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return err
	}
	if assign.Status != model.WorkOrderWorking {
		return ErrWorkNotStarted
	}
	return nil
}

// ────────────────────── Update ──────────────────────

func (s *inspectionReportService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateInspectionReportRequest) (*dto.InspectionReportResponse, error) {
	report, err := get(ctx, s.logger, s.repo.InspectionReport.GetByID, id, ErrInspectionReportNotFound)
	if err != nil {
		return nil, err
	}
	if report.UserID != caller.UserID {
		return nil, ErrReportNotAuthor
	}
	if report.Status != model.ReportPending {
		return nil, ErrReportLocked
	}

	if req.FaultOwner != nil {
		report.FaultOwner = model.FaultOwner(*req.FaultOwner)
	}
	if req.SolutionType != nil {
		report.SolutionType = model.SolutionType(*req.SolutionType)
	}
	if req.Description != nil {
		report.Description = *req.Description
	}
	if req.Solution != nil {
		report.Solution = *req.Solution
	}
	report.Stamp(caller.UserID)

	if err := s.repo.InspectionReport.Update(ctx, report); err != nil {
		s.logger.Error("update inspection report failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.detail(ctx, report)
}

// ────────────────────── Query ──────────────────────

func (s *inspectionReportService) GetByID(ctx context.Context, id string) (*dto.InspectionReportResponse, error) {
	report, err := s.repo.InspectionReport.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.InspectionReportResponse{}, nil
		}
		s.logger.Error("load inspection report failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.detail(ctx, report)
}

func (s *inspectionReportService) detail(ctx context.Context, report *model.InspectionReport) (*dto.InspectionReportResponse, error) {
	id := report.InspectionReportID
	media, err := s.repo.Media.ListByEntity(ctx, model.MediaInspectionReport, id)
	if err != nil {
		s.logger.Error("list media failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	approvals, err := s.repo.ReportApproval.ListByReport(ctx, model.InspectionReportRef(id))
	if err != nil {
		s.logger.Error("list approvals failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toInspectionReportResponse(report)
	resp.Media = toMediaResponses(media)
	resp.Approvals = toReportApprovalResponses(approvals)
	return resp, nil
}

func (s *inspectionReportService) List(ctx context.Context, req *dto.ReportListRequest) ([]dto.InspectionReportResponse, int64, error) {
	if req.Inverted() {
		return nil, 0, ErrInvalidDateRange
	}
	reports, total, err := s.repo.InspectionReport.List(ctx, repository.ReportFilter{
		AppointmentID: req.AppointmentID,
		Status:        model.ReportStatus(req.Status),
		From:          req.From,
		To:            endOfDay(req.To),
		Page:          toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list inspection reports failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.InspectionReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, *toInspectionReportResponse(&reports[i]))
	}
	return result, total, nil
}

func (s *inspectionReportService) ListByAppointment(ctx context.Context, appointmentID string) ([]dto.InspectionReportResponse, error) {
	reports, err := s.repo.InspectionReport.ListByAppointments(ctx, []string{appointmentID})
	if err != nil {
		s.logger.Error("list inspection reports failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.InspectionReportResponse, 0, len(reports))
	for i := range reports {
		r, err := s.detail(ctx, &reports[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	return result, nil
}

func toInspectionReportResponse(r *model.InspectionReport) *dto.InspectionReportResponse {
	return &dto.InspectionReportResponse{
		ID:            r.InspectionReportID,
		AppointmentID: r.AppointmentID,
		UserID:        r.UserID,
		FaultOwner:    string(r.FaultOwner),
		SolutionType:  string(r.SolutionType),
		Description:   r.Description,
		Solution:      r.Solution,
		Status:        string(r.Status),
		CreatedAt:     formatTime(r.CreatedAt),
	}
}
