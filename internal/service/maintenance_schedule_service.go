package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

var (
	ErrScheduleNotFound           = apperr.NotFound("Lịch bảo trì không tồn tại")
	ErrScheduleExists             = apperr.Conflict("Thiết bị đã có lịch bảo trì")
	ErrScheduleInactive           = apperr.Validation("Lịch bảo trì đã ngừng hoạt động")
	ErrScheduleInvalidFrequency   = apperr.Validation("Tần suất bảo trì phải lớn hơn 0 ngày")
	ErrScheduleInvalidTechnicians = apperr.Validation("Số kỹ thuật viên phải lớn hơn 0")
	ErrScheduleDateInPast         = apperr.Validation("Ngày bảo trì tiếp theo không được ở quá khứ")
	ErrScheduleInvalidPreference  = apperr.Validation("Khung giờ ưu tiên không hợp lệ")
	ErrScheduleAlreadyActive      = apperr.Validation("Lịch bảo trì đang hoạt động")
	ErrScheduleAlreadyInactive    = apperr.Validation("Lịch bảo trì đã ngừng hoạt động")
)

// MaintenanceScheduleService recurring maintenance plans with a field-level audit trail
type MaintenanceScheduleService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (*dto.ScheduleResponse, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
}

type maintenanceScheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewMaintenanceScheduleService creates a MaintenanceScheduleService
func NewMaintenanceScheduleService(repo *repository.Repository, logger *zap.Logger) MaintenanceScheduleService {
	return &maintenanceScheduleService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── Create ──────────────────────

func (s *maintenanceScheduleService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	obj, err := get(ctx, s.logger, s.repo.CommonAreaObject.GetByID, req.CommonAreaObjectID, ErrObjectNotFound)
	if err != nil {
		return nil, err
	}
	if obj.Status != model.StatusActive {
		return nil, ErrObjectInactive
	}

	_, err = s.repo.Schedule.GetByObject(ctx, req.CommonAreaObjectID)
	switch {
	case err == nil:
		return nil, ErrScheduleExists
	case !errors.Is(err, gorm.ErrRecordNotFound):
		s.logger.Error("check schedule failed", zap.String("object_id", req.CommonAreaObjectID), zap.Error(err))
		return nil, err
	}

	pref := model.TimePreference(req.TimePreference)
	if pref == "" {
		pref = model.TimeAnytime
	}
	if err := s.validate(ctx, req.FrequencyInDays, req.RequiredTechnicians, req.NextScheduledDate, pref, req.RequiredTechniqueID); err != nil {
		return nil, err
	}

	hours, err := s.estimateHours(ctx, obj.CommonAreaObjectTypeID)
	if err != nil {
		return nil, err
	}

	schedule := &model.MaintenanceSchedule{
		CommonAreaObjectID:  req.CommonAreaObjectID,
		Description:         req.Description,
		FrequencyInDays:     req.FrequencyInDays,
		NextScheduledDate:   truncateDay(req.NextScheduledDate),
		TimePreference:      pref,
		RequiredTechniqueID: req.RequiredTechniqueID,
		RequiredTechnicians: req.RequiredTechnicians,
		EstimatedDuration:   hours,
		Status:              model.StatusActive,
	}
	schedule.Stamp(caller.UserID)
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("create schedule failed", zap.String("object_id", req.CommonAreaObjectID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("maintenance schedule created",
		zap.String("id", schedule.MaintenanceScheduleID),
		zap.String("object_id", req.CommonAreaObjectID),
		zap.Float64("estimated_hours", hours))

	resp := toScheduleResponse(schedule)
	resp.ObjectName = obj.Name
	return resp, nil
}

func (s *maintenanceScheduleService) validate(ctx context.Context, frequency, technicians int, next time.Time, pref model.TimePreference, techniqueID *string) error {
	if frequency <= 0 {
		return ErrScheduleInvalidFrequency
	}
	if technicians <= 0 {
		return ErrScheduleInvalidTechnicians
	}
	if truncateDay(next).Before(truncateDay(s.now())) {
		return ErrScheduleDateInPast
	}
	if !pref.Valid() {
		return ErrScheduleInvalidPreference
	}
	if techniqueID != nil {
		if _, err := get(ctx, s.logger, s.repo.Technique.GetByID, *techniqueID, ErrTechniqueNotFound); err != nil {
			return err
		}
	}
	return nil
}

// estimateHours total checklist time of an object type, in hours
func (s *maintenanceScheduleService) estimateHours(ctx context.Context, typeID string) (float64, error) {
	tasks, err := s.repo.MaintenanceTask.ListByType(ctx, typeID)
	if err != nil {
		s.logger.Error("list tasks failed", zap.String("type_id", typeID), zap.Error(err))
		return 0, err
	}
	minutes := 0
	for _, t := range tasks {
		minutes += t.EstimatedDurationMinutes
	}
	return float64(minutes) / 60.0, nil
}

// ────────────────────── Update ──────────────────────

func (s *maintenanceScheduleService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := get(ctx, s.logger, s.repo.Schedule.GetByID, id, ErrScheduleNotFound)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var changes []model.MaintenanceScheduleTracking
	track := func(field, from, to string) {
		if from != to {
			changes = append(changes, scheduleChange(id, field, from, to, caller.UserID, now))
		}
	}

	if req.FrequencyInDays != nil && *req.FrequencyInDays <= 0 {
		return nil, ErrScheduleInvalidFrequency
	}
	if req.RequiredTechnicians != nil && *req.RequiredTechnicians <= 0 {
		return nil, ErrScheduleInvalidTechnicians
	}

	if req.Description != nil {
		track("Description", schedule.Description, *req.Description)
		schedule.Description = *req.Description
	}
	if req.FrequencyInDays != nil {
		track("FrequencyInDays", strconv.Itoa(schedule.FrequencyInDays), strconv.Itoa(*req.FrequencyInDays))
		schedule.FrequencyInDays = *req.FrequencyInDays
	}
	if req.NextScheduledDate != nil {
		next := truncateDay(*req.NextScheduledDate)
		if !next.Equal(schedule.NextScheduledDate) && next.Before(truncateDay(now)) {
			return nil, ErrScheduleDateInPast
		}
		track("NextScheduledDate", formatDate(schedule.NextScheduledDate), formatDate(next))
		schedule.NextScheduledDate = next
	}
	if req.TimePreference != nil {
		pref := model.TimePreference(*req.TimePreference)
		if !pref.Valid() {
			return nil, ErrScheduleInvalidPreference
		}
		track("TimePreference", string(schedule.TimePreference), string(pref))
		schedule.TimePreference = pref
	}
	if req.RequiredTechniqueID != nil && optString(schedule.RequiredTechniqueID) != *req.RequiredTechniqueID {
		if _, err := get(ctx, s.logger, s.repo.Technique.GetByID, *req.RequiredTechniqueID, ErrTechniqueNotFound); err != nil {
			return nil, err
		}
		track("RequiredTechniqueID", optString(schedule.RequiredTechniqueID), *req.RequiredTechniqueID)
		schedule.RequiredTechniqueID = req.RequiredTechniqueID
		schedule.RequiredTechnique = nil
	}
	if req.RequiredTechnicians != nil {
		track("RequiredTechnicians", strconv.Itoa(schedule.RequiredTechnicians), strconv.Itoa(*req.RequiredTechnicians))
		schedule.RequiredTechnicians = *req.RequiredTechnicians
	}

	if len(changes) == 0 {
		return s.detail(ctx, schedule)
	}

	schedule.Stamp(caller.UserID)
	err = withTx(ctx, s.repo, s.logger, "update schedule", func(tx *repository.Repository) error {
		if err := tx.Schedule.Update(ctx, schedule); err != nil {
			return err
		}
		return tx.Schedule.AddTrackings(ctx, changes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("maintenance schedule updated", zap.String("id", id), zap.Int("changes", len(changes)))
	return s.detail(ctx, schedule)
}

func (s *maintenanceScheduleService) Activate(ctx context.Context, caller dto.Caller, id string) (*dto.ScheduleResponse, error) {
	return s.setStatus(ctx, caller, id, model.StatusActive, ErrScheduleAlreadyActive)
}

func (s *maintenanceScheduleService) Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.ScheduleResponse, error) {
	return s.setStatus(ctx, caller, id, model.StatusInactive, ErrScheduleAlreadyInactive)
}

func (s *maintenanceScheduleService) setStatus(ctx context.Context, caller dto.Caller, id string, status model.ActiveStatus, already error) (*dto.ScheduleResponse, error) {
	schedule, err := get(ctx, s.logger, s.repo.Schedule.GetByID, id, ErrScheduleNotFound)
	if err != nil {
		return nil, err
	}
	if schedule.Status == status {
		return nil, already
	}
	if status == model.StatusActive && schedule.CommonAreaObject != nil && schedule.CommonAreaObject.Status != model.StatusActive {
		return nil, ErrObjectInactive
	}

	change := scheduleChange(id, "Status", string(schedule.Status), string(status), caller.UserID, s.now())
	schedule.Status = status
	schedule.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "set schedule status", func(tx *repository.Repository) error {
		if err := tx.Schedule.Update(ctx, schedule); err != nil {
			return err
		}
		return tx.Schedule.AddTrackings(ctx, []model.MaintenanceScheduleTracking{change})
	})
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, schedule)
}

// scheduleChange audit row for one field of a schedule
func scheduleChange(scheduleID, field, from, to, userID string, at time.Time) model.MaintenanceScheduleTracking {
	return model.MaintenanceScheduleTracking{
		MaintenanceScheduleID: scheduleID,
		FieldName:             field,
		OldValue:              from,
		NewValue:              to,
		UpdatedBy:             userID,
		UpdatedAt:             at,
	}
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ────────────────────── Query ──────────────────────

func (s *maintenanceScheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := get(ctx, s.logger, s.repo.Schedule.GetByID, id, ErrScheduleNotFound)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, schedule)
}

func (s *maintenanceScheduleService) detail(ctx context.Context, schedule *model.MaintenanceSchedule) (*dto.ScheduleResponse, error) {
	rows, err := s.repo.Schedule.ListTrackings(ctx, schedule.MaintenanceScheduleID)
	if err != nil {
		s.logger.Error("list schedule history failed", zap.String("id", schedule.MaintenanceScheduleID), zap.Error(err))
		return nil, err
	}

	resp := toScheduleResponse(schedule)
	resp.History = make([]dto.ScheduleTrackingResponse, 0, len(rows))
	for _, t := range rows {
		resp.History = append(resp.History, dto.ScheduleTrackingResponse{
			FieldName: t.FieldName,
			OldValue:  t.OldValue,
			NewValue:  t.NewValue,
			UpdatedBy: t.UpdatedBy,
			UpdatedAt: formatTime(t.UpdatedAt),
		})
	}
	return resp, nil
}

func (s *maintenanceScheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	schedules, total, err := s.repo.Schedule.List(ctx, repository.ScheduleFilter{
		Status:    model.ActiveStatus(req.Status),
		DueBefore: req.DueBefore,
		Page:      toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list schedules failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		result = append(result, *toScheduleResponse(&schedules[i]))
	}
	return result, total, nil
}

func toScheduleResponse(m *model.MaintenanceSchedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:                  m.MaintenanceScheduleID,
		CommonAreaObjectID:  m.CommonAreaObjectID,
		Description:         m.Description,
		FrequencyInDays:     m.FrequencyInDays,
		NextScheduledDate:   formatDate(m.NextScheduledDate),
		TimePreference:      string(m.TimePreference),
		RequiredTechniqueID: m.RequiredTechniqueID,
		RequiredTechnicians: m.RequiredTechnicians,
		EstimatedDuration:   m.EstimatedDuration,
		Status:              string(m.Status),
	}
	if m.LastMaintenanceDate != nil {
		resp.LastMaintenanceDate = strPtr(formatDate(*m.LastMaintenanceDate))
	}
	if m.CommonAreaObject != nil {
		resp.ObjectName = m.CommonAreaObject.Name
	}
	return resp
}
