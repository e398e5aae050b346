package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrNoPendingApproval       = apperr.Validation("Báo cáo không có bước duyệt nào đang chờ")
	ErrMultiplePendingApproval = apperr.Conflict("Báo cáo có nhiều bước duyệt đang chờ")
	ErrApproverRoleMismatch    = apperr.Forbidden("Bạn không phải người duyệt của bước này")
	ErrCannotEscalate          = apperr.Validation("Không có cấp duyệt cao hơn")
	ErrInvalidReportType       = apperr.Validation("Loại báo cáo không hợp lệ")
)

// ReportApprovalService decides and escalates report approvals
type ReportApprovalService interface {
	Approve(ctx context.Context, caller dto.Caller, req *dto.ApproveReportRequest) (*dto.ReportApprovalResponse, error)
	ListByReport(ctx context.Context, reportType, reportID string) ([]dto.ReportApprovalResponse, error)
}

type reportApprovalService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportApprovalService creates a ReportApprovalService
func NewReportApprovalService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) ReportApprovalService {
	return &reportApprovalService{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// approvedReport the parts of either report kind an approval touches
type approvedReport struct {
	ref           model.ReportRef
	authorID      string
	appointmentID string
	status        model.ReportStatus
}

func reportRef(reportType, reportID string) (model.ReportRef, error) {
	switch model.ReportKind(reportType) {
	case model.ReportKindInspection:
		return model.InspectionReportRef(reportID), nil
	case model.ReportKindRepair:
		return model.RepairReportRef(reportID), nil
	}
	return nil, ErrInvalidReportType
}

func (s *reportApprovalService) loadReport(ctx context.Context, ref model.ReportRef) (*approvedReport, error) {
	switch ref.(type) {
	case model.InspectionReportRef:
		r, err := get(ctx, s.logger, s.repo.InspectionReport.GetByID, ref.ReportID(), ErrInspectionReportNotFound)
		if err != nil {
			return nil, err
		}
		return &approvedReport{ref: ref, authorID: r.UserID, appointmentID: r.AppointmentID, status: r.Status}, nil
	default:
		r, err := get(ctx, s.logger, s.repo.RepairReport.GetByID, ref.ReportID(), ErrRepairReportNotFound)
		if err != nil {
			return nil, err
		}
		return &approvedReport{ref: ref, authorID: r.UserID, appointmentID: r.AppointmentID, status: r.Status}, nil
	}
}

// setReportStatus writes the final decision on the report row
func setReportStatus(ctx context.Context, tx *repository.Repository, ref model.ReportRef, status model.ReportStatus, userID string) error {
	switch ref.(type) {
	case model.InspectionReportRef:
		r, err := tx.InspectionReport.GetByID(ctx, ref.ReportID())
		if err != nil {
			return err
		}
		r.Status = status
		r.Stamp(userID)
		return tx.InspectionReport.Update(ctx, r)
	default:
		r, err := tx.RepairReport.GetByID(ctx, ref.ReportID())
		if err != nil {
			return err
		}
		r.Status = status
		r.Stamp(userID)
		return tx.RepairReport.Update(ctx, r)
	}
}

// ────────────────────── Approve ──────────────────────

func (s *reportApprovalService) Approve(ctx context.Context, caller dto.Caller, req *dto.ApproveReportRequest) (*dto.ReportApprovalResponse, error) {
	ref, err := reportRef(req.ReportType, req.ReportID)
	if err != nil {
		return nil, err
	}
	report, err := s.loadReport(ctx, ref)
	if err != nil {
		return nil, err
	}
	if report.status != model.ReportPending {
		return nil, ErrReportLocked
	}

	pending, err := s.repo.ReportApproval.ListPending(ctx, ref)
	if err != nil {
		s.logger.Error("list pending approvals failed", zap.String("report_id", req.ReportID), zap.Error(err))
		return nil, err
	}
	switch {
	case len(pending) == 0:
		return nil, ErrNoPendingApproval
	case len(pending) > 1:
		s.logger.Error("report has more than one pending approval",
			zap.String("report_id", req.ReportID), zap.Int("count", len(pending)))
		return nil, ErrMultiplePendingApproval
	}
	current := &pending[0]
	if current.Role != caller.Role {
		return nil, ErrApproverRoleMismatch
	}

	var next *model.ReportApproval
	if req.EscalateToHigherLevel {
		role, ok := model.NextApprover(current.Role)
		if !ok {
			return nil, ErrCannotEscalate
		}
		next = &model.ReportApproval{Role: role, Status: model.ReportPending}
		next.Attach(ref)
		next.Stamp(caller.UserID)
	}

	decision := model.ReportStatus(req.Status)
	decidedAt := s.now()
	current.Status = decision
	current.UserID = strPtr(caller.UserID)
	current.Comment = req.Comment
	current.DecidedAt = &decidedAt
	current.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "approve report", func(tx *repository.Repository) error {
		// the decided row leaves Pending before the next one is inserted
		if err := tx.ReportApproval.Update(ctx, current); err != nil {
			return err
		}
		if next != nil {
			return tx.ReportApproval.Create(ctx, next)
		}

		if err := setReportStatus(ctx, tx, ref, decision, caller.UserID); err != nil {
			return err
		}
		if _, ok := ref.(model.InspectionReportRef); ok && decision == model.ReportRejected {
			return tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
				AppointmentID: report.appointmentID,
				Status:        model.AppointmentInVisit,
				Note:          req.Comment,
				UpdatedBy:     caller.UserID,
				UpdatedAt:     decidedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("report_id", req.ReportID),
		zap.String("kind", string(ref.Kind())),
		zap.String("decision", req.Status),
		zap.String("approver", caller.UserID),
	}
	if next != nil {
		s.logger.Info("report approval escalated", append(fields, zap.String("next_role", string(next.Role)))...)
	} else {
		s.logger.Info("report decided", fields...)
	}

	msg := dto.NotificationMessage{
		Type:    "report.decided",
		Title:   "Báo cáo đã được xử lý",
		Content: req.Comment,
		Data:    map[string]string{"report_type": string(ref.Kind()), "report_id": req.ReportID, "status": req.Status},
	}
	if next != nil {
		msg.Type = "report.escalated"
		msg.Title = "Báo cáo đã được chuyển lên cấp cao hơn"
		notifyRole(ctx, s.notifier, s.logger, next.Role, dto.NotificationMessage{
			Type:  "report.pending",
			Title: "Báo cáo chờ duyệt",
			Data:  msg.Data,
		})
	}
	notify(ctx, s.notifier, s.logger, []string{report.authorID}, msg)

	if next != nil {
		return toReportApprovalResponse(next), nil
	}
	return toReportApprovalResponse(current), nil
}

// ────────────────────── Query ──────────────────────

func (s *reportApprovalService) ListByReport(ctx context.Context, reportType, reportID string) ([]dto.ReportApprovalResponse, error) {
	ref, err := reportRef(reportType, reportID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ReportApproval.ListByReport(ctx, ref)
	if err != nil {
		s.logger.Error("list approvals failed", zap.String("report_id", reportID), zap.Error(err))
		return nil, err
	}
	return toReportApprovalResponses(rows), nil
}

func toReportApprovalResponse(a *model.ReportApproval) *dto.ReportApprovalResponse {
	resp := &dto.ReportApprovalResponse{
		ID:        a.ReportApprovalID,
		Role:      string(a.Role),
		UserID:    a.UserID,
		Status:    string(a.Status),
		Comment:   a.Comment,
		DecidedAt: formatTimePtr(a.DecidedAt),
		CreatedAt: formatTime(a.CreatedAt),
	}
	if ref := a.Ref(); ref != nil {
		resp.ReportType = string(ref.Kind())
		resp.ReportID = ref.ReportID()
	}
	return resp
}

func toReportApprovalResponses(rows []model.ReportApproval) []dto.ReportApprovalResponse {
	out := make([]dto.ReportApprovalResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *toReportApprovalResponse(&rows[i]))
	}
	return out
}
