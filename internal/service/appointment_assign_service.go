package service

import (
	"context"
	"errors"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const defaultSuggestionLimit = 5

var (
	ErrAssignNotFound        = apperr.NotFound("Phân công không tồn tại")
	ErrNotAssigned           = apperr.Forbidden("Bạn không được phân công cho lịch hẹn này")
	ErrAlreadyAssigned       = apperr.Conflict("Kỹ thuật viên đã được phân công cho lịch hẹn này")
	ErrTechnicianBusy        = apperr.Conflict("Kỹ thuật viên đã có lịch làm việc trùng thời gian")
	ErrTechnicianInactive    = apperr.Validation("Kỹ thuật viên đang ngừng hoạt động")
	ErrAppointmentNotOpen    = apperr.Validation("Chỉ có thể phân công cho lịch hẹn đang chờ hoặc đã phân công")
	ErrAssignNotCancellable  = apperr.Validation("Chỉ có thể hủy phân công khi kỹ thuật viên chưa bắt đầu làm việc")
	ErrAppointmentNotConfirm = apperr.Validation("Lịch hẹn chưa được xác nhận")
	ErrInspectionNotApproved = apperr.Validation("Báo cáo kiểm tra chưa được duyệt")
	ErrAssignCompleted       = apperr.Validation("Phân công đã hoàn thành")
)

// AppointmentAssignService technician work orders
type AppointmentAssignService interface {
	Assign(ctx context.Context, caller dto.Caller, req *dto.AssignTechnicianRequest) (*dto.AssignResponse, error)
	Cancel(ctx context.Context, caller dto.Caller, assignID string) error
	CheckIn(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error)
	StartRepair(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error)
	FinishWork(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error)
	UpdateWorkTime(ctx context.Context, caller dto.Caller, assignID string, req *dto.UpdateWorkTimeRequest) (*dto.AssignResponse, error)

	SuggestTechnicians(ctx context.Context, req *dto.SuggestTechniciansRequest) ([]dto.TechnicianSuggestion, error)
	ListByTechnician(ctx context.Context, technicianID string, req *dto.WorkScheduleRequest) ([]dto.AssignResponse, error)
	// ExportCalendar renders the technician's work orders as an iCalendar document
	ExportCalendar(ctx context.Context, technicianID string, req *dto.WorkScheduleRequest) ([]byte, error)
}

type appointmentAssignService struct {
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewAppointmentAssignService creates an AppointmentAssignService
func NewAppointmentAssignService(repo *repository.Repository, notifier Notifier, logger *zap.Logger) AppointmentAssignService {
	return &appointmentAssignService{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// ────────────────────── Assign ──────────────────────

func (s *appointmentAssignService) Assign(ctx context.Context, caller dto.Caller, req *dto.AssignTechnicianRequest) (*dto.AssignResponse, error) {
	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, req.AppointmentID, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	status, err := currentAppointmentStatus(ctx, s.repo, appt.AppointmentID)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", appt.AppointmentID), zap.Error(err))
		return nil, err
	}
	if status != model.AppointmentPending && status != model.AppointmentAssigned {
		return nil, ErrAppointmentNotOpen
	}

	tech, err := get(ctx, s.logger, s.repo.User.GetByID, req.TechnicianID, ErrTechnicianNotFound)
	if err != nil {
		return nil, err
	}
	if tech.Role != model.RoleTechnician {
		return nil, ErrNotTechnician
	}
	if tech.Status != model.StatusActive {
		return nil, ErrTechnicianInactive
	}

	_, err = s.repo.Assign.GetByAppointmentAndTechnician(ctx, appt.AppointmentID, tech.UserID)
	switch {
	case err == nil:
		return nil, ErrAlreadyAssigned
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("check assignment failed", zap.Error(err))
		return nil, err
	}

	busy, err := s.repo.Assign.HasOverlap(ctx, tech.UserID, appt.StartTime, appt.EndTime, "")
	if err != nil {
		s.logger.Error("check technician availability failed", zap.String("technician_id", tech.UserID), zap.Error(err))
		return nil, err
	}
	if busy {
		return nil, ErrTechnicianBusy
	}

	assign := &model.AppointmentAssign{
		AppointmentID:      appt.AppointmentID,
		TechnicianID:       tech.UserID,
		EstimatedStartTime: appt.StartTime,
		EstimatedEndTime:   appt.EndTime,
		Status:             model.WorkOrderPending,
	}
	assign.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "assign technician", func(tx *repository.Repository) error {
		if err := tx.Assign.Create(ctx, assign); err != nil {
			return err
		}
		if status != model.AppointmentPending {
			return nil
		}
		return tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: appt.AppointmentID,
			Status:        model.AppointmentAssigned,
			UpdatedBy:     caller.UserID,
			UpdatedAt:     s.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("technician assigned",
		zap.String("appointment_id", appt.AppointmentID), zap.String("technician_id", tech.UserID))

	notify(ctx, s.notifier, s.logger, []string{tech.UserID}, dto.NotificationMessage{
		Type:    "appointment.assigned",
		Title:   "Bạn có lịch làm việc mới",
		Content: "Lịch hẹn lúc " + appt.StartTime.Format("15:04 02/01/2006"),
		Data:    map[string]string{"appointment_id": appt.AppointmentID},
	})

	assign.Technician = tech
	return toAssignResponse(assign), nil
}

// Cancel removes a work order nobody has started. Removing the last one puts the
// appointment back to Pending.
func (s *appointmentAssignService) Cancel(ctx context.Context, caller dto.Caller, assignID string) error {
	assign, err := get(ctx, s.logger, s.repo.Assign.GetByID, assignID, ErrAssignNotFound)
	if err != nil {
		return err
	}
	if !assign.Status.Cancellable() {
		return ErrAssignNotCancellable
	}

	err = withTx(ctx, s.repo, s.logger, "cancel assignment", func(tx *repository.Repository) error {
		if err := tx.Assign.Delete(ctx, assignID); err != nil {
			return err
		}
		left, err := tx.Assign.CountByAppointment(ctx, assign.AppointmentID)
		if err != nil {
			return err
		}
		if left > 0 {
			return nil
		}
		status, err := currentAppointmentStatus(ctx, tx, assign.AppointmentID)
		if err != nil {
			return err
		}
		if status != model.AppointmentAssigned {
			return nil
		}
		return tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: assign.AppointmentID,
			Status:        model.AppointmentPending,
			Note:          "Đã hủy toàn bộ phân công",
			UpdatedBy:     caller.UserID,
			UpdatedAt:     s.now(),
		})
	})
	if err != nil {
		return err
	}

	notify(ctx, s.notifier, s.logger, []string{assign.TechnicianID}, dto.NotificationMessage{
		Type:    "appointment.unassigned",
		Title:   "Lịch làm việc đã bị hủy",
		Content: "Phân công lúc " + assign.EstimatedStartTime.Format("15:04 02/01/2006") + " đã bị hủy",
		Data:    map[string]string{"appointment_id": assign.AppointmentID},
	})
	return nil
}

// ────────────────────── Field work ──────────────────────

// CheckIn starts the caller's work order and puts the appointment in visit
func (s *appointmentAssignService) CheckIn(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error) {
	assign, err := s.ownAssignment(ctx, caller, appointmentID)
	if err != nil {
		return nil, err
	}
	if !assign.Status.CanTransitionTo(model.WorkOrderWorking) {
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", assign.Status, model.WorkOrderWorking)
	}

	status, err := currentAppointmentStatus(ctx, s.repo, appointmentID)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", appointmentID), zap.Error(err))
		return nil, err
	}
	if status != model.AppointmentConfirmed && status != model.AppointmentInVisit {
		return nil, ErrAppointmentNotConfirm
	}

	appt, err := get(ctx, s.logger, s.repo.Appointment.GetByID, appointmentID, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}

	now := s.now()
	assign.Status = model.WorkOrderWorking
	assign.ActualStartTime = &now
	assign.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "check in", func(tx *repository.Repository) error {
		if err := tx.Assign.Update(ctx, assign); err != nil {
			return err
		}
		if status == model.AppointmentConfirmed {
			if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
				AppointmentID: appointmentID,
				Status:        model.AppointmentInVisit,
				UpdatedBy:     caller.UserID,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}

		reqStatus, err := currentRequestStatus(ctx, tx, appt.RepairRequestID)
		if err != nil {
			return err
		}
		if reqStatus != model.RequestApproved {
			return nil
		}
		return tx.RepairRequest.AddTracking(ctx, &model.RequestTracking{
			RepairRequestID: appt.RepairRequestID,
			Status:          model.RequestInProgress,
			Note:            "Kỹ thuật viên đã đến",
			UpdatedBy:       caller.UserID,
			UpdatedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("technician checked in", zap.String("appointment_id", appointmentID), zap.String("technician_id", caller.UserID))
	return toAssignResponse(assign), nil
}

// StartRepair moves the appointment to repair once any inspection report is approved
func (s *appointmentAssignService) StartRepair(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error) {
	assign, err := s.ownAssignment(ctx, caller, appointmentID)
	if err != nil {
		return nil, err
	}
	if assign.Status != model.WorkOrderWorking {
		return nil, apperr.Validation("Bạn cần check-in trước khi bắt đầu sửa chữa")
	}

	status, err := currentAppointmentStatus(ctx, s.repo, appointmentID)
	if err != nil {
		s.logger.Error("load appointment status failed", zap.String("id", appointmentID), zap.Error(err))
		return nil, err
	}
	if status == model.AppointmentInRepair {
		return toAssignResponse(assign), nil
	}
	if !status.CanTransitionTo(model.AppointmentInRepair) {
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", status, model.AppointmentInRepair)
	}

	reports, err := s.repo.InspectionReport.ListByAppointments(ctx, []string{appointmentID})
	if err != nil {
		s.logger.Error("list inspection reports failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}
	for _, r := range reports {
		if r.Status == model.ReportPending {
			return nil, ErrInspectionNotApproved
		}
	}
	if len(reports) > 0 && !anyApproved(reports) {
		return nil, ErrInspectionNotApproved
	}

	if err := s.repo.Appointment.AddTracking(ctx, &model.AppointmentTracking{
		AppointmentID: appointmentID,
		Status:        model.AppointmentInRepair,
		UpdatedBy:     caller.UserID,
		UpdatedAt:     s.now(),
	}); err != nil {
		s.logger.Error("start repair failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}
	return toAssignResponse(assign), nil
}

func anyApproved(reports []model.InspectionReport) bool {
	for _, r := range reports {
		if r.Status == model.ReportApproved {
			return true
		}
	}
	return false
}

func (s *appointmentAssignService) FinishWork(ctx context.Context, caller dto.Caller, appointmentID string) (*dto.AssignResponse, error) {
	assign, err := s.ownAssignment(ctx, caller, appointmentID)
	if err != nil {
		return nil, err
	}
	if !assign.Status.CanTransitionTo(model.WorkOrderCompleted) {
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", assign.Status, model.WorkOrderCompleted)
	}

	now := s.now()
	assign.Status = model.WorkOrderCompleted
	assign.ActualEndTime = &now
	assign.Stamp(caller.UserID)
	if err := s.repo.Assign.Update(ctx, assign); err != nil {
		s.logger.Error("finish work failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}
	return toAssignResponse(assign), nil
}

func (s *appointmentAssignService) UpdateWorkTime(ctx context.Context, caller dto.Caller, assignID string, req *dto.UpdateWorkTimeRequest) (*dto.AssignResponse, error) {
	assign, err := get(ctx, s.logger, s.repo.Assign.GetByID, assignID, ErrAssignNotFound)
	if err != nil {
		return nil, err
	}
	if assign.TechnicianID != caller.UserID {
		return nil, ErrNotAssigned
	}
	if assign.Status == model.WorkOrderCompleted {
		return nil, ErrAssignCompleted
	}
	if !req.EstimatedStartTime.Before(req.EstimatedEndTime) {
		return nil, ErrAppointmentTimeRange
	}

	busy, err := s.repo.Assign.HasOverlap(ctx, caller.UserID, req.EstimatedStartTime, req.EstimatedEndTime, assign.AppointmentID)
	if err != nil {
		s.logger.Error("check technician availability failed", zap.String("technician_id", caller.UserID), zap.Error(err))
		return nil, err
	}
	if busy {
		return nil, ErrTechnicianBusy
	}

	assign.EstimatedStartTime = req.EstimatedStartTime
	assign.EstimatedEndTime = req.EstimatedEndTime
	assign.Stamp(caller.UserID)
	if err := s.repo.Assign.Update(ctx, assign); err != nil {
		s.logger.Error("update work time failed", zap.String("id", assignID), zap.Error(err))
		return nil, err
	}
	return toAssignResponse(assign), nil
}

func (s *appointmentAssignService) ownAssignment(ctx context.Context, caller dto.Caller, appointmentID string) (*model.AppointmentAssign, error) {
	assign, err := s.repo.Assign.GetByAppointmentAndTechnician(ctx, appointmentID, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotAssigned
		}
		s.logger.Error("load assignment failed", zap.String("appointment_id", appointmentID), zap.Error(err))
		return nil, err
	}
	return assign, nil
}

// ────────────────────── Schedule ──────────────────────

func (s *appointmentAssignService) SuggestTechnicians(ctx context.Context, req *dto.SuggestTechniciansRequest) ([]dto.TechnicianSuggestion, error) {
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrAppointmentTimeRange
	}
	if _, err := get(ctx, s.logger, s.repo.Technique.GetByID, req.TechniqueID, ErrTechniqueNotFound); err != nil {
		return nil, err
	}
	result, err := suggestTechnicians(ctx, s.repo, req.TechniqueID, req.StartTime, req.EndTime, req.Limit)
	if err != nil {
		s.logger.Error("suggest technicians failed", zap.String("technique_id", req.TechniqueID), zap.Error(err))
		return nil, err
	}
	return result, nil
}

func (s *appointmentAssignService) ListByTechnician(ctx context.Context, technicianID string, req *dto.WorkScheduleRequest) ([]dto.AssignResponse, error) {
	assigns, err := s.workOrders(ctx, technicianID, req)
	if err != nil {
		return nil, err
	}
	result := make([]dto.AssignResponse, 0, len(assigns))
	for i := range assigns {
		result = append(result, *toAssignResponse(&assigns[i]))
	}
	return result, nil
}

func (s *appointmentAssignService) workOrders(ctx context.Context, technicianID string, req *dto.WorkScheduleRequest) ([]model.AppointmentAssign, error) {
	if req.Inverted() {
		return nil, ErrInvalidDateRange
	}
	if _, err := get(ctx, s.logger, s.repo.User.GetByID, technicianID, ErrTechnicianNotFound); err != nil {
		return nil, err
	}
	assigns, err := s.repo.Assign.ListByTechnician(ctx, technicianID, req.From, endOfDay(req.To))
	if err != nil {
		s.logger.Error("list work orders failed", zap.String("technician_id", technicianID), zap.Error(err))
		return nil, err
	}
	return assigns, nil
}

func (s *appointmentAssignService) ExportCalendar(ctx context.Context, technicianID string, req *dto.WorkScheduleRequest) ([]byte, error) {
	assigns, err := s.workOrders(ctx, technicianID, req)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//AptCare//Technician Schedule//VI")
	cal.SetXWRCalName("AptCare - Lịch làm việc")

	stamp := s.now()
	for _, a := range assigns {
		appt, err := s.repo.Appointment.GetByID(ctx, a.AppointmentID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("load appointment failed", zap.String("id", a.AppointmentID), zap.Error(err))
			return nil, err
		}

		ev := cal.AddEvent(a.AppointmentAssignID + "@aptcare")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(a.EstimatedStartTime)
		ev.SetEndAt(a.EstimatedEndTime)

		summary := "Lịch sửa chữa"
		if appt != nil && appt.RepairRequest != nil {
			summary = appt.RepairRequest.Object
			ev.SetDescription(appt.RepairRequest.Description)
		}
		ev.SetSummary(summary + " (" + string(a.Status) + ")")
		if appt != nil && appt.Note != "" {
			ev.SetLocation(appt.Note)
		}
	}
	return []byte(cal.Serialize()), nil
}

// suggestTechnicians active technicians holding the technique who are free during
// [start, end), least busy that day first
func suggestTechnicians(ctx context.Context, repo *repository.Repository, techniqueID string, start, end time.Time, limit int) ([]dto.TechnicianSuggestion, error) {
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	ids, err := repo.UserTechnique.ListUserIDsByTechnique(ctx, techniqueID)
	if err != nil {
		return nil, err
	}
	users, err := repo.User.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	free := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.Role != model.RoleTechnician || u.Status != model.StatusActive {
			continue
		}
		busy, err := repo.Assign.HasOverlap(ctx, u.UserID, start, end, "")
		if err != nil {
			return nil, err
		}
		if !busy {
			free = append(free, u)
		}
	}

	freeIDs := make([]string, 0, len(free))
	for _, u := range free {
		freeIDs = append(freeIDs, u.UserID)
	}
	day := truncateDay(start)
	load, err := repo.Assign.Workload(ctx, freeIDs, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	result := make([]dto.TechnicianSuggestion, 0, len(free))
	for i := range free {
		result = append(result, dto.TechnicianSuggestion{
			TechnicianID: free[i].UserID,
			FullName:     free[i].FullName(),
			PhoneNumber:  free[i].PhoneNumber,
			Workload:     load[free[i].UserID],
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Workload != result[j].Workload {
			return result[i].Workload < result[j].Workload
		}
		return result[i].FullName < result[j].FullName
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func toAssignResponse(a *model.AppointmentAssign) *dto.AssignResponse {
	resp := &dto.AssignResponse{
		ID:                 a.AppointmentAssignID,
		AppointmentID:      a.AppointmentID,
		TechnicianID:       a.TechnicianID,
		EstimatedStartTime: formatTime(a.EstimatedStartTime),
		EstimatedEndTime:   formatTime(a.EstimatedEndTime),
		ActualStartTime:    formatTimePtr(a.ActualStartTime),
		ActualEndTime:      formatTimePtr(a.ActualEndTime),
		Status:             string(a.Status),
	}
	if a.Technician != nil {
		resp.TechnicianName = a.Technician.FullName()
	}
	return resp
}
