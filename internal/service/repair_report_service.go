package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const repairReportFolder = "repair-reports"

var (
	ErrRepairReportNotFound   = apperr.NotFound("Báo cáo sửa chữa không tồn tại")
	ErrRepairReportExists     = apperr.Conflict("Lịch hẹn đã có báo cáo sửa chữa")
	ErrAppointmentNotInRepair = apperr.Validation("Lịch hẹn không ở trạng thái đang sửa chữa")
)

// RepairReportService records of completed repair work
type RepairReportService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateRepairReportRequest) (*dto.RepairReportResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateRepairReportRequest) (*dto.RepairReportResponse, error)
	GetByID(ctx context.Context, id string) (*dto.RepairReportResponse, error)
	List(ctx context.Context, req *dto.ReportListRequest) ([]dto.RepairReportResponse, int64, error)
}

type repairReportService struct {
	repo     *repository.Repository
	storage  FileStorage
	notifier Notifier
	logger   *zap.Logger
}

// NewRepairReportService creates a RepairReportService
func NewRepairReportService(repo *repository.Repository, storage FileStorage, notifier Notifier, logger *zap.Logger) RepairReportService {
	return &repairReportService{repo: repo, storage: storage, notifier: notifier, logger: logger}
}

func (s *repairReportService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateRepairReportRequest) (*dto.RepairReportResponse, error) {
	status, err := currentAppointmentStatus(ctx, s.repo, req.AppointmentID)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", req.AppointmentID), zap.Error(err))
		return nil, err
	}
	if status != model.AppointmentInRepair {
		return nil, ErrAppointmentNotInRepair
	}
	if err := workingAssignment(ctx, s.repo, s.logger, caller, req.AppointmentID); err != nil {
		return nil, err
	}

	_, err = s.repo.RepairReport.GetByAppointment(ctx, req.AppointmentID)
	switch {
	case err == nil:
		return nil, ErrRepairReportExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("check repair report failed", zap.String("appointment_id", req.AppointmentID), zap.Error(err))
		return nil, err
	}

	media, err := uploadAll(ctx, s.storage, s.logger, repairReportFolder, model.MediaRepairReport, req.Files, caller.UserID)
	if err != nil {
		return nil, err
	}

	report := &model.RepairReport{
		AppointmentID: req.AppointmentID,
		UserID:        caller.UserID,
		Description:   req.Description,
		Status:        model.ReportPending,
	}
	report.Stamp(caller.UserID)

	approval := &model.ReportApproval{Role: model.RoleTechnicianLead, Status: model.ReportPending}
	approval.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "create repair report", func(tx *repository.Repository) error {
		if err := tx.RepairReport.Create(ctx, report); err != nil {
			return err
		}
		if len(media) > 0 {
			if err := tx.Media.CreateBatch(ctx, attach(media, report.RepairReportID)); err != nil {
				return err
			}
		}
		approval.Attach(model.RepairReportRef(report.RepairReportID))
		return tx.ReportApproval.Create(ctx, approval)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("repair report created", zap.String("id", report.RepairReportID), zap.String("appointment_id", req.AppointmentID))

	notifyRole(ctx, s.notifier, s.logger, model.RoleTechnicianLead, dto.NotificationMessage{
		Type:    "repair_report.pending",
		Title:   "Báo cáo sửa chữa chờ duyệt",
		Content: report.Description,
		Data:    map[string]string{"repair_report_id": report.RepairReportID},
	})

	resp := toRepairReportResponse(report)
	resp.Media = toMediaResponses(media)
	resp.Approvals = []dto.ReportApprovalResponse{*toReportApprovalResponse(approval)}
	return resp, nil
}

func (s *repairReportService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateRepairReportRequest) (*dto.RepairReportResponse, error) {
	report, err := get(ctx, s.logger, s.repo.RepairReport.GetByID, id, ErrRepairReportNotFound)
	if err != nil {
		return nil, err
	}
	if report.UserID != caller.UserID {
		return nil, ErrReportNotAuthor
	}
	if report.Status != model.ReportPending {
		return nil, ErrReportLocked
	}

	report.Description = req.Description
	report.Stamp(caller.UserID)
	if err := s.repo.RepairReport.Update(ctx, report); err != nil {
		s.logger.Error("update repair report failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.detail(ctx, report)
}

func (s *repairReportService) GetByID(ctx context.Context, id string) (*dto.RepairReportResponse, error) {
	report, err := get(ctx, s.logger, s.repo.RepairReport.GetByID, id, ErrRepairReportNotFound)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, report)
}

func (s *repairReportService) detail(ctx context.Context, report *model.RepairReport) (*dto.RepairReportResponse, error) {
	id := report.RepairReportID
	media, err := s.repo.Media.ListByEntity(ctx, model.MediaRepairReport, id)
	if err != nil {
		s.logger.Error("list media failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	approvals, err := s.repo.ReportApproval.ListByReport(ctx, model.RepairReportRef(id))
	if err != nil {
		s.logger.Error("list approvals failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toRepairReportResponse(report)
	resp.Media = toMediaResponses(media)
	resp.Approvals = toReportApprovalResponses(approvals)
	return resp, nil
}

func (s *repairReportService) List(ctx context.Context, req *dto.ReportListRequest) ([]dto.RepairReportResponse, int64, error) {
	if req.Inverted() {
		return nil, 0, ErrInvalidDateRange
	}
	reports, total, err := s.repo.RepairReport.List(ctx, repository.ReportFilter{
		AppointmentID: req.AppointmentID,
		Status:        model.ReportStatus(req.Status),
		From:          req.From,
		To:            endOfDay(req.To),
		Page:          toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list repair reports failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RepairReportResponse, 0, len(reports))
	for i := range reports {
		result = append(result, *toRepairReportResponse(&reports[i]))
	}
	return result, total, nil
}

func toRepairReportResponse(r *model.RepairReport) *dto.RepairReportResponse {
	return &dto.RepairReportResponse{
		ID:            r.RepairReportID,
		AppointmentID: r.AppointmentID,
		UserID:        r.UserID,
		Description:   r.Description,
		Status:        string(r.Status),
		CreatedAt:     formatTime(r.CreatedAt),
	}
}
