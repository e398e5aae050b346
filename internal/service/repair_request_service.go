package service

import (
	"context"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const repairRequestFolder = "repair-requests"

var (
	ErrRepairRequestNotFound = apperr.NotFound("Yêu cầu sửa chữa không tồn tại")
	ErrNotApartmentResident  = apperr.Forbidden("Bạn không phải là cư dân của căn hộ này")
	ErrStartTimeInPast       = apperr.Validation("Thời gian bắt đầu không được ở trong quá khứ")
	ErrScheduleNotDue        = apperr.Validation("Lịch bảo trì chưa đến hạn")
	ErrResidentCancelOnly    = apperr.Forbidden("Cư dân chỉ có thể hủy yêu cầu đang chờ xử lý của chính mình")
	ErrInvalidRequestStatus  = apperr.Validation("Trạng thái yêu cầu không hợp lệ")
	ErrRepairRequestClosed   = apperr.Validation("Yêu cầu sửa chữa đã kết thúc, không thể thay đổi trạng thái")
)

// RepairRequestService repair request lifecycle
type RepairRequestService interface {
	CreateNormal(ctx context.Context, caller dto.Caller, req *dto.CreateRepairRequest) (*dto.RepairRequestCreatedResponse, error)
	CreateFromSchedule(ctx context.Context, caller dto.Caller, req *dto.CreateScheduledRequestRequest) (*dto.RepairRequestResponse, error)
	ToggleStatus(ctx context.Context, caller dto.Caller, id string, req *dto.ToggleRequestStatusRequest) (*dto.RepairRequestResponse, error)
	GetByID(ctx context.Context, caller dto.Caller, id string) (*dto.RepairRequestResponse, error)
	List(ctx context.Context, caller dto.Caller, req *dto.RepairRequestListRequest) ([]dto.RepairRequestResponse, int64, error)
}

type repairRequestService struct {
	repo     *repository.Repository
	storage  FileStorage
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewRepairRequestService creates a RepairRequestService
func NewRepairRequestService(repo *repository.Repository, storage FileStorage, notifier Notifier, logger *zap.Logger) RepairRequestService {
	return &repairRequestService{repo: repo, storage: storage, notifier: notifier, logger: logger, now: time.Now}
}

// ────────────────────── Create (resident path) ──────────────────────

func (s *repairRequestService) CreateNormal(ctx context.Context, caller dto.Caller, req *dto.CreateRepairRequest) (*dto.RepairRequestCreatedResponse, error) {
	apt, err := get(ctx, s.logger, s.repo.Apartment.GetByID, req.ApartmentID, ErrApartmentNotFound)
	if err != nil {
		return nil, err
	}
	if apt.Status != model.StatusActive {
		return nil, ErrApartmentInactive
	}
	if caller.IsResident() {
		if err := s.checkResidency(ctx, caller.UserID, apt.ApartmentID); err != nil {
			return nil, err
		}
	}

	issue, err := get(ctx, s.logger, s.repo.Issue.GetByID, req.IssueID, ErrIssueNotFound)
	if err != nil {
		return nil, err
	}
	if issue.Status != model.StatusActive {
		return nil, ErrIssueInactive
	}
	if req.StartTime.Before(s.now()) {
		return nil, ErrStartTimeInPast
	}

	// uploads happen before the transaction; a failed upload writes nothing
	media, err := uploadAll(ctx, s.storage, s.logger, repairRequestFolder, model.MediaRepairRequest, req.Images, caller.UserID)
	if err != nil {
		return nil, err
	}

	request := &model.RepairRequest{
		ApartmentID: &apt.ApartmentID,
		IssueID:     &issue.IssueID,
		UserID:      caller.UserID,
		Object:      req.Object,
		Description: req.Description,
		IsEmergency: issue.IsEmergency,
	}
	request.Stamp(caller.UserID)

	appt := &model.Appointment{
		StartTime: req.StartTime,
		EndTime:   req.StartTime.Add(hours(issue.EstimatedDuration)),
	}
	appt.Stamp(caller.UserID)

	// suggestions read inside the same transaction; a failed lookup discards the request
	var suggestions []dto.TechnicianSuggestion
	err = withTx(ctx, s.repo, s.logger, "create repair request", func(tx *repository.Repository) error {
		if err := s.insertRequest(ctx, tx, caller, request, appt, media, ""); err != nil {
			return err
		}
		var err error
		suggestions, err = suggestTechnicians(ctx, tx, issue.TechniqueID, appt.StartTime, appt.EndTime, 0)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("repair request created",
		zap.String("id", request.RepairRequestID),
		zap.String("apartment_id", apt.ApartmentID),
		zap.Bool("emergency", request.IsEmergency),
		zap.Int("suggested_technicians", len(suggestions)))

	title := "Yêu cầu sửa chữa mới"
	if request.IsEmergency {
		title = "Yêu cầu sửa chữa khẩn cấp"
	}
	notifyRole(ctx, s.notifier, s.logger, model.RoleTechnicianLead, dto.NotificationMessage{
		Type:    "repair_request.created",
		Title:   title,
		Content: "Căn hộ " + apt.Room + ": " + issue.Name,
		Data:    map[string]string{"repair_request_id": request.RepairRequestID},
	})

	request.Apartment, request.Issue = apt, issue
	resp := toRepairRequestResponse(request, model.RequestPending)
	resp.Appointments = []dto.AppointmentResponse{*toAppointmentResponse(appt, model.AppointmentPending)}
	resp.Media = toMediaResponses(media)

	return &dto.RepairRequestCreatedResponse{RepairRequestResponse: *resp, SuggestedTechnicians: suggestions}, nil
}

// insertRequest writes a request, its first appointment, both Pending trackings and media
func (s *repairRequestService) insertRequest(ctx context.Context, tx *repository.Repository, caller dto.Caller,
	request *model.RepairRequest, appt *model.Appointment, media []model.Media, note string,
) error {
	if err := tx.RepairRequest.Create(ctx, request); err != nil {
		return err
	}
	now := s.now()
	if err := tx.RepairRequest.AddTracking(ctx, &model.RequestTracking{
		RepairRequestID: request.RepairRequestID,
		Status:          model.RequestPending,
		Note:            note,
		UpdatedBy:       caller.UserID,
		UpdatedAt:       now,
	}); err != nil {
		return err
	}

	appt.RepairRequestID = request.RepairRequestID
	if err := tx.Appointment.Create(ctx, appt); err != nil {
		return err
	}
	if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
		AppointmentID: appt.AppointmentID,
		Status:        model.AppointmentPending,
		UpdatedBy:     caller.UserID,
		UpdatedAt:     now,
	}); err != nil {
		return err
	}

	if len(media) > 0 {
		if err := tx.Media.CreateBatch(ctx, attach(media, request.RepairRequestID)); err != nil {
			return err
		}
	}
	return nil
}

func (s *repairRequestService) checkResidency(ctx context.Context, userID, apartmentID string) error {
	_, err := s.repo.UserApartment.GetActive(ctx, userID, apartmentID)
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotApartmentResident
	}
	s.logger.Error("check residency failed", zap.String("apartment_id", apartmentID), zap.Error(err))
	return err
}

// ────────────────────── Create (maintenance path) ──────────────────────

// CreateFromSchedule opens the request for a due maintenance schedule and moves
// the schedule to its next occurrence.
func (s *repairRequestService) CreateFromSchedule(ctx context.Context, caller dto.Caller, req *dto.CreateScheduledRequestRequest) (*dto.RepairRequestResponse, error) {
	schedule, err := get(ctx, s.logger, s.repo.Schedule.GetByID, req.MaintenanceScheduleID, ErrScheduleNotFound)
	if err != nil {
		return nil, err
	}
	if schedule.Status != model.StatusActive {
		return nil, ErrScheduleInactive
	}

	now := s.now()
	today := truncateDay(now)
	due := truncateDay(schedule.NextScheduledDate)
	if due.After(today) {
		return nil, ErrScheduleNotDue
	}

	start := time.Date(today.Year(), today.Month(), today.Day(), schedule.TimePreference.StartHour(), 0, 0, 0, today.Location())
	if start.Before(now) {
		start = now.Truncate(time.Hour).Add(time.Hour)
	}
	duration := hours(schedule.EstimatedDuration)
	if duration <= 0 {
		duration = time.Hour
	}

	object := "Bảo trì định kỳ"
	if schedule.CommonAreaObject != nil {
		object = schedule.CommonAreaObject.Name
	}
	request := &model.RepairRequest{
		MaintenanceScheduleID: &schedule.MaintenanceScheduleID,
		UserID:                caller.UserID,
		Object:                object,
		Description:           schedule.Description,
	}
	request.Stamp(caller.UserID)

	appt := &model.Appointment{StartTime: start, EndTime: start.Add(duration), Note: req.Note}
	appt.Stamp(caller.UserID)

	oldNext := schedule.NextScheduledDate
	schedule.NextScheduledDate = today.AddDate(0, 0, schedule.FrequencyInDays)
	schedule.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "create scheduled request", func(tx *repository.Repository) error {
		if err := s.insertRequest(ctx, tx, caller, request, appt, nil, req.Note); err != nil {
			return err
		}
		if err := tx.Schedule.Update(ctx, schedule); err != nil {
			return err
		}
		return tx.Schedule.AddTrackings(ctx, []model.MaintenanceScheduleTracking{{
			MaintenanceScheduleID: schedule.MaintenanceScheduleID,
			FieldName:             "NextScheduledDate",
			OldValue:              formatDate(oldNext),
			NewValue:              formatDate(schedule.NextScheduledDate),
			UpdatedBy:             caller.UserID,
			UpdatedAt:             now,
		}})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("maintenance request created",
		zap.String("id", request.RepairRequestID),
		zap.String("schedule_id", schedule.MaintenanceScheduleID))

	notifyRole(ctx, s.notifier, s.logger, model.RoleTechnicianLead, dto.NotificationMessage{
		Type:    "repair_request.maintenance",
		Title:   "Yêu cầu bảo trì định kỳ",
		Content: object,
		Data:    map[string]string{"repair_request_id": request.RepairRequestID},
	})

	resp := toRepairRequestResponse(request, model.RequestPending)
	resp.Appointments = []dto.AppointmentResponse{*toAppointmentResponse(appt, model.AppointmentPending)}
	return resp, nil
}

// ────────────────────── Status ──────────────────────

func (s *repairRequestService) ToggleStatus(ctx context.Context, caller dto.Caller, id string, req *dto.ToggleRequestStatusRequest) (*dto.RepairRequestResponse, error) {
	request, err := get(ctx, s.logger, s.repo.RepairRequest.GetByID, id, ErrRepairRequestNotFound)
	if err != nil {
		return nil, err
	}
	current, err := currentRequestStatus(ctx, s.repo, id)
	if err != nil {
		s.logger.Error("load request status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	next := model.RequestStatus(req.Status)
	if !next.Valid() {
		return nil, ErrInvalidRequestStatus
	}
	if current.IsTerminal() {
		return nil, ErrRepairRequestClosed
	}
	if caller.IsResident() &&
		(next != model.RequestCancelled || current != model.RequestPending || request.UserID != caller.UserID) {
		return nil, ErrResidentCancelOnly
	}
	if !current.CanTransitionTo(next) {
		return nil, apperr.Validationf("Không thể chuyển trạng thái từ %s sang %s", current, next)
	}

	now := s.now()
	err = withTx(ctx, s.repo, s.logger, "toggle request status", func(tx *repository.Repository) error {
		if err := tx.RepairRequest.AddTracking(ctx, &model.RequestTracking{
			RepairRequestID: id,
			Status:          next,
			Note:            req.Note,
			UpdatedBy:       caller.UserID,
			UpdatedAt:       now,
		}); err != nil {
			return err
		}

		switch next {
		case model.RequestCancelled:
			return cancelOpenAppointments(ctx, tx, id, caller.UserID, "Yêu cầu sửa chữa đã bị hủy", now)
		case model.RequestCompleted:
			return markScheduleMaintained(ctx, tx, request, caller.UserID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("repair request status changed",
		zap.String("id", id), zap.String("from", string(current)), zap.String("to", string(next)))

	if request.UserID != caller.UserID {
		notify(ctx, s.notifier, s.logger, []string{request.UserID}, dto.NotificationMessage{
			Type:    "repair_request.status",
			Title:   "Cập nhật yêu cầu sửa chữa",
			Content: "Yêu cầu \"" + request.Object + "\" chuyển sang " + string(next),
			Data:    map[string]string{"repair_request_id": id, "status": string(next)},
		})
	}

	return s.detail(ctx, request)
}

// cancelOpenAppointments cancels every appointment of the request that can still be cancelled
func cancelOpenAppointments(ctx context.Context, tx *repository.Repository, requestID, userID, note string, at time.Time) error {
	appts, err := tx.Appointment.ListByRequest(ctx, requestID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(appts))
	for _, a := range appts {
		ids = append(ids, a.AppointmentID)
	}
	statuses, err := tx.Appointment.LatestStatuses(ctx, ids)
	if err != nil {
		return err
	}
	for _, a := range appts {
		if !statuses[a.AppointmentID].CanTransitionTo(model.AppointmentCancelled) {
			continue
		}
		if err := tx.Appointment.AddTracking(ctx, &model.AppointmentTracking{
			AppointmentID: a.AppointmentID,
			Status:        model.AppointmentCancelled,
			Note:          note,
			UpdatedBy:     userID,
			UpdatedAt:     at,
		}); err != nil {
			return err
		}
		if err := closeWorkOrders(ctx, tx, a.AppointmentID, userID, at); err != nil {
			return err
		}
	}
	return nil
}

// markScheduleMaintained records the maintenance date on the schedule a completed request came from
func markScheduleMaintained(ctx context.Context, tx *repository.Repository, request *model.RepairRequest, userID string, at time.Time) error {
	if request.MaintenanceScheduleID == nil {
		return nil
	}
	schedule, err := tx.Schedule.GetByID(ctx, *request.MaintenanceScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	day := truncateDay(at)
	schedule.LastMaintenanceDate = &day
	schedule.Stamp(userID)
	return tx.Schedule.Update(ctx, schedule)
}

func currentRequestStatus(ctx context.Context, repo *repository.Repository, id string) (model.RequestStatus, error) {
	t, err := repo.RepairRequest.LatestTracking(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.RequestPending, nil
		}
		return "", err
	}
	return t.Status, nil
}

// ────────────────────── Query ──────────────────────

func (s *repairRequestService) GetByID(ctx context.Context, caller dto.Caller, id string) (*dto.RepairRequestResponse, error) {
	request, err := get(ctx, s.logger, s.repo.RepairRequest.GetByID, id, ErrRepairRequestNotFound)
	if err != nil {
		return nil, err
	}
	if caller.IsResident() && request.UserID != caller.UserID {
		if request.ApartmentID == nil {
			return nil, ErrPermissionDenied
		}
		if err := s.checkResidency(ctx, caller.UserID, *request.ApartmentID); err != nil {
			return nil, err
		}
	}
	return s.detail(ctx, request)
}

// detail request with trackings, appointments and media
func (s *repairRequestService) detail(ctx context.Context, request *model.RepairRequest) (*dto.RepairRequestResponse, error) {
	id := request.RepairRequestID

	trackings, err := s.repo.RepairRequest.ListTrackings(ctx, id)
	if err != nil {
		s.logger.Error("list request trackings failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	status := model.RequestPending
	if n := len(trackings); n > 0 {
		status = trackings[n-1].Status
	}

	appts, err := s.repo.Appointment.ListByRequest(ctx, id)
	if err != nil {
		s.logger.Error("list appointments failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	apptIDs := make([]string, 0, len(appts))
	for _, a := range appts {
		apptIDs = append(apptIDs, a.AppointmentID)
	}
	apptStatuses, err := s.repo.Appointment.LatestStatuses(ctx, apptIDs)
	if err != nil {
		s.logger.Error("load appointment statuses failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	media, err := s.repo.Media.ListByEntity(ctx, model.MediaRepairRequest, id)
	if err != nil {
		s.logger.Error("list media failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := toRepairRequestResponse(request, status)
	resp.Trackings = toRequestTrackingResponses(trackings)
	resp.Appointments = make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		resp.Appointments = append(resp.Appointments, *toAppointmentResponse(&appts[i], apptStatuses[appts[i].AppointmentID]))
	}
	resp.Media = toMediaResponses(media)
	return resp, nil
}

func (s *repairRequestService) List(ctx context.Context, caller dto.Caller, req *dto.RepairRequestListRequest) ([]dto.RepairRequestResponse, int64, error) {
	if req.Inverted() {
		return nil, 0, ErrInvalidDateRange
	}

	filter := repository.RequestFilter{
		Keyword:     req.Keyword,
		ApartmentID: req.ApartmentID,
		Status:      model.RequestStatus(req.Status),
		Emergency:   req.Emergency,
		From:        req.From,
		To:          endOfDay(req.To),
		Page:        toPage(req.PaginationRequest),
	}
	if caller.IsResident() {
		ids, err := s.repo.UserApartment.ListActiveApartmentIDsByUser(ctx, caller.UserID)
		if err != nil {
			s.logger.Error("list resident apartments failed", zap.String("user_id", caller.UserID), zap.Error(err))
			return nil, 0, err
		}
		if ids == nil {
			ids = []string{}
		}
		filter.ApartmentIDs = ids
	}

	requests, total, err := s.repo.RepairRequest.List(ctx, filter)
	if err != nil {
		s.logger.Error("list repair requests failed", zap.Error(err))
		return nil, 0, err
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.RepairRequestID)
	}
	statuses, err := s.repo.RepairRequest.LatestStatuses(ctx, ids)
	if err != nil {
		s.logger.Error("load request statuses failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.RepairRequestResponse, 0, len(requests))
	for i := range requests {
		st, ok := statuses[requests[i].RepairRequestID]
		if !ok {
			st = model.RequestPending
		}
		result = append(result, *toRepairRequestResponse(&requests[i], st))
	}
	return result, total, nil
}

// ────────────────────── mapping ──────────────────────

func hours(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}

func toRepairRequestResponse(r *model.RepairRequest, status model.RequestStatus) *dto.RepairRequestResponse {
	resp := &dto.RepairRequestResponse{
		ID:                    r.RepairRequestID,
		ApartmentID:           r.ApartmentID,
		IssueID:               r.IssueID,
		MaintenanceScheduleID: r.MaintenanceScheduleID,
		ParentRequestID:       r.ParentRequestID,
		UserID:                r.UserID,
		Object:                r.Object,
		Description:           r.Description,
		IsEmergency:           r.IsEmergency,
		Status:                string(status),
		CreatedAt:             formatTime(r.CreatedAt),
	}
	if r.Apartment != nil {
		resp.Room = r.Apartment.Room
	}
	if r.Issue != nil {
		resp.IssueName = r.Issue.Name
	}
	return resp
}

func toRequestTrackingResponses(rows []model.RequestTracking) []dto.TrackingResponse {
	out := make([]dto.TrackingResponse, 0, len(rows))
	for _, t := range rows {
		out = append(out, dto.TrackingResponse{
			Status:    string(t.Status),
			Note:      t.Note,
			UpdatedBy: t.UpdatedBy,
			UpdatedAt: formatTime(t.UpdatedAt),
		})
	}
	return out
}
