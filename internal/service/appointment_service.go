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

var (
	ErrAppointmentNotFound    = apperr.NotFound("Lịch hẹn không tồn tại")
	ErrAppointmentTimeLocked  = apperr.Validation("Không thể thay đổi thời gian lịch hẹn khi đã phân công")
	ErrAppointmentNotEditable = apperr.Validation("Chỉ có thể cập nhật lịch hẹn trước khi kỹ thuật viên đến")
	ErrAppointmentTimeRange   = apperr.Validation("Thời gian bắt đầu phải trước thời gian kết thúc")
	ErrNextAppointmentTime    = apperr.Validation("Cần cung cấp thời gian cho lịch hẹn tiếp theo")
	ErrUseCompleteAppointment = apperr.Validation("Vui lòng dùng chức năng hoàn thành lịch hẹn")
	ErrAppointmentClosed      = apperr.Validation("Lịch hẹn đã kết thúc, không thể thay đổi trạng thái")
	ErrInvalidApptStatus      = apperr.Validation("Trạng thái lịch hẹn không hợp lệ")
)

// AppointmentService appointment lifecycle
type AppointmentService interface {
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	ToggleStatus(ctx context.Context, caller dto.Caller, id string, req *dto.ToggleAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	// Complete closes a visit, optionally booking a follow-up and completing the request
	Complete(ctx context.Context, caller dto.Caller, id string, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error)
	List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error)
}

type appointmentService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewAppointmentService creates an AppointmentService
func NewAppointmentService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) AppointmentService {
	return &appointmentService{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// ────────────────────── Update ──────────────────────

func (s *appointmentService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, id, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	status, err := currentAppointmentStatus(ctx, s.repo, id)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if status != model.AppointmentPending && status != model.AppointmentAssigned {
		return nil, ErrAppointmentNotEditable
	}

	start, end := appt.StartTime, appt.EndTime
	if req.StartTime != nil {
		start = *req.StartTime
	}
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if !start.Equal(appt.StartTime) || !end.Equal(appt.EndTime) {
		assigned, err := s.repo.Assign.CountByAppointment(ctx, id)
		if err != nil {
			s.logger.Error("count assignments failed", zap.String("id", id), zap.Error(err))
			return nil, err
		}
		if assigned > 0 {
			return nil, ErrAppointmentTimeLocked
		}
		if !start.Before(end) {
			return nil, ErrAppointmentTimeRange
		}
		appt.StartTime, appt.EndTime = start, end
	}
	if req.Note != nil {
		appt.Note = *req.Note
	}
	appt.Stamp(caller.UserID)

	if err := s.repo.Appointment.Update(ctx, appt); err != nil {
		s.logger.Error("update appointment failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAppointmentResponse(appt, status), nil
}

// ────────────────────── Status ──────────────────────

func (s *appointmentService) ToggleStatus(ctx context.Context, caller dto.Caller, id string, req *dto.ToggleAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, id, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	current, err := currentAppointmentStatus(ctx, s.repo, id)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	next := model.AppointmentStatus(req.Status)
	switch {
	case !next.Valid():
		return nil, ErrInvalidApptStatus
	case current.IsTerminal():
		return nil, ErrAppointmentClosed
	case next == model.AppointmentCompleted:
		// work orders and follow-ups are closed by Complete
		return nil, ErrUseCompleteAppointment
	case !current.CanTransitionTo(next):
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", current, next)
	}

	// technicians are collected before cancellation removes their work orders
	assigns, err := s.repo.Assign.ListByAppointment(ctx, id)
	if err != nil {
		s.logger.Error("list assignments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	now := s.now()
	err = withTx(ctx, s.repo, s.logger, "toggle appointment status", func(tx *repository.Repository) error {
		if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: id,
			Status:        next,
			Note:          req.Note,
			UpdatedBy:     caller.UserID,
			UpdatedAt:     now,
		}); err != nil {
			return err
		}
		if next == model.AppointmentCancelled {
			return closeWorkOrders(ctx, tx, id, caller.UserID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment status changed",
		zap.String("id", id), zap.String("from", string(current)), zap.String("to", string(next)))

	technicians := make([]string, 0, len(assigns))
	for _, a := range assigns {
		technicians = append(technicians, a.TechnicianID)
	}
	notify(ctx, s.notifier, s.logger, technicians, dto.NotificationMessage{
		Type:    "appointment.status",
		Title:   "Cập nhật lịch hẹn",
		Content: "Lịch hẹn lúc " + appt.StartTime.Format("15:04 02/01/2006") + " chuyển sang " + string(next),
		Data:    map[string]string{"appointment_id": id, "status": string(next)},
	})
	return s.detail(ctx, appt)
}

// closeWorkOrders releases the technicians of a cancelled appointment.
// Unstarted work orders are removed, started ones are finished at the given time.
func closeWorkOrders(ctx context.Context, tx *repository.Repository, appointmentID, userID string, at time.Time) error {
	assigns, err := tx.Assign.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}
	for i := range assigns {
		a := &assigns[i]
		switch {
		case a.Status.Cancellable():
			if err := tx.Assign.Delete(ctx, a.AppointmentAssignID); err != nil {
				return err
			}
		case a.Status.CanTransitionTo(model.WorkOrderCompleted):
			a.Status = model.WorkOrderCompleted
			end := at
			a.ActualEndTime = &end
			a.Stamp(userID)
			if err := tx.Assign.Update(ctx, a); err != nil {
				return err
			}
		}
	}
	return nil
}

// ────────────────────── Complete ──────────────────────

func (s *appointmentService) Complete(ctx context.Context, caller dto.Caller, id string, req *dto.CompleteAppointmentRequest) (*dto.AppointmentResponse, error) {
	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, id, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	current, err := currentAppointmentStatus(ctx, s.repo, id)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if !current.CanTransitionTo(model.AppointmentCompleted) {
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", current, model.AppointmentCompleted)
	}

	assigns, err := s.repo.Assign.ListByAppointment(ctx, id)
	if err != nil {
		s.logger.Error("list assignments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if caller.HasRole(model.RoleTechnician) && !hasAssignment(assigns, caller.UserID) {
		return nil, ErrNotAssigned
	}

	now := s.now()
	var next *model.Appointment
	if req.CreateNext {
		if req.NextStartTime == nil || req.NextEndTime == nil {
			return nil, ErrNextAppointmentTime
		}
		if !req.NextStartTime.Before(*req.NextEndTime) {
			return nil, ErrAppointmentTimeRange
		}
		if req.NextStartTime.Before(now) {
			return nil, ErrStartTimeInPast
		}
		next = &model.Appointment{
			RepairRequestID: appt.RepairRequestID,
			StartTime:       *req.NextStartTime,
			EndTime:         *req.NextEndTime,
			Note:            req.Note,
		}
		next.Stamp(caller.UserID)
	}

	var request *model.RepairRequest
	var requestStatus model.RequestStatus
	if req.CompleteRequest {
		if request, err = get(ctx, s.logger, s.repo.RepairRequest.GetByID, appt.RepairRequestID, ErrRepairRequestNotFound); err != nil {
			return nil, err
		}
		if requestStatus, err = currentRequestStatus(ctx, s.repo, appt.RepairRequestID); err != nil {
			s.logger.Error("load request status failed", zap.String("id", appt.RepairRequestID), zap.Error(err))
			return nil, err
		}
		if !requestStatus.CanTransitionTo(model.RequestCompleted) {
			return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", requestStatus, model.RequestCompleted)
		}
	}

	err = withTx(ctx, s.repo, s.logger, "complete appointment", func(tx *repository.Repository) error {
		if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: id,
			Status:        model.AppointmentCompleted,
			Note:          req.Note,
			UpdatedBy:     caller.UserID,
			UpdatedAt:     now,
		}); err != nil {
			return err
		}

		for i := range assigns {
			a := &assigns[i]
			if a.Status != model.WorkOrderWorking {
				continue
			}
			a.Status = model.WorkOrderCompleted
			a.ActualEndTime = &now
			a.Stamp(caller.UserID)
			if err := tx.Assign.Update(ctx, a); err != nil {
				return err
			}
		}

		if next != nil {
			if err := tx.Appointment.Create(ctx, next); err != nil {
				return err
			}
			if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
				AppointmentID: next.AppointmentID,
				Status:        model.AppointmentPending,
				Note:          "Lịch hẹn tiếp theo",
				UpdatedBy:     caller.UserID,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}

		if request != nil {
			if err := tx.RepairRequest.AddTracking(ctx, &model.RequestTracking{
				RepairRequestID: request.RepairRequestID,
				Status:          model.RequestCompleted,
				Note:            req.Note,
				UpdatedBy:       caller.UserID,
				UpdatedAt:       now,
			}); err != nil {
				return err
			}
			return markScheduleMaintained(ctx, tx, request, caller.UserID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment completed",
		zap.String("id", id),
		zap.Bool("next_created", next != nil),
		zap.Bool("request_completed", request != nil))

	if request != nil {
		notify(ctx, s.notifier, s.logger, []string{request.UserID}, dto.NotificationMessage{
			Type:    "repair_request.completed",
			Title:   "Yêu cầu sửa chữa đã hoàn tất",
			Content: request.Object,
			Data:    map[string]string{"repair_request_id": request.RepairRequestID},
		})
	}
	return s.detail(ctx, appt)
}

func hasAssignment(assigns []model.AppointmentAssign, technicianID string) bool {
	for _, a := range assigns {
		if a.TechnicianID == technicianID {
			return true
		}
	}
	return false
}

// ────────────────────── Query ──────────────────────

func (s *appointmentService) GetByID(ctx context.Context, id string) (*dto.AppointmentResponse, error) {
	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, id, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, appt)
}

func (s *appointmentService) detail(ctx context.Context, appt *model.Appointment) (*dto.AppointmentResponse, error) {
	id := appt.AppointmentID
	trackings, err := s.repo.Appointment.ListTrackings(ctx, id)
	if err != nil {
		s.logger.Error("list appointment trackings failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	assigns, err := s.repo.Assign.ListByAppointment(ctx, id)
	if err != nil {
		s.logger.Error("list assignments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	status := model.AppointmentPending
	if n := len(trackings); n > 0 {
		status = trackings[n-1].Status
	}
	resp := toAppointmentResponse(appt, status)
	resp.Trackings = make([]dto.TrackingResponse, 0, len(trackings))
	for _, t := range trackings {
		resp.Trackings = append(resp.Trackings, dto.TrackingResponse{
			Status:    string(t.Status),
			Note:      t.Note,
			UpdatedBy: t.UpdatedBy,
			UpdatedAt: formatTime(t.UpdatedAt),
		})
	}
	resp.Assigns = make([]dto.AssignResponse, 0, len(assigns))
	for i := range assigns {
		resp.Assigns = append(resp.Assigns, *toAssignResponse(&assigns[i]))
	}
	return resp, nil
}

func (s *appointmentService) List(ctx context.Context, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	if req.Inverted() {
		return nil, 0, ErrInvalidDateRange
	}

	appts, total, err := s.repo.Appointment.List(ctx, repository.AppointmentFilter{
		RepairRequestID: req.RepairRequestID,
		TechnicianID:    req.TechnicianID,
		Status:          model.AppointmentStatus(req.Status),
		From:            req.From,
		To:              endOfDay(req.To),
		Page:            toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list appointments failed", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.AppointmentID)
	}
	statuses, err := s.repo.Appointment.LatestStatuses(ctx, ids)
	if err != nil {
		s.logger.Error("load appointment statuses failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		result = append(result, *toAppointmentResponse(&appts[i], statuses[appts[i].AppointmentID]))
	}
	return result, total, nil
}

func currentAppointmentStatus(ctx context.Context, repo *repository.Repository, id string) (model.AppointmentStatus, error) {
	t, err := repo.Appointment.LatestTracking(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.AppointmentPending, nil
		}
		return "", err
	}
	return t.Status, nil
}

func toAppointmentResponse(a *model.Appointment, status model.AppointmentStatus) *dto.AppointmentResponse {
	return &dto.AppointmentResponse{
		ID:              a.AppointmentID,
		RepairRequestID: a.RepairRequestID,
		StartTime:       formatTime(a.StartTime),
		EndTime:         formatTime(a.EndTime),
		Note:            a.Note,
		Status:          string(status),
	}
}
