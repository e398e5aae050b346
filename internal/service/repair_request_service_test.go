package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/pkg/apperr"
)

func setupRepairRequestService(t *testing.T, status model.RequestStatus) (RepairRequestService, *fixture, *fakeNotifier) {
	t.Helper()
	f := newFixture()
	aptID := "apt-1"
	f.requests.add(&model.RepairRequest{
		RepairRequestID: "req-1",
		ApartmentID:     &aptID,
		UserID:          residentCaller.UserID,
		Object:          "Vòi nước",
	})
	f.requests.trackings = append(f.requests.trackings, model.RequestTracking{
		RepairRequestID: "req-1", Status: status, UpdatedBy: residentCaller.UserID, UpdatedAt: time.Now().Add(-time.Hour),
	})
	f.appts.rows["appt-1"] = &model.Appointment{AppointmentID: "appt-1", RepairRequestID: "req-1"}
	f.appts.trackings = append(f.appts.trackings, model.AppointmentTracking{
		AppointmentID: "appt-1", Status: model.AppointmentPending, UpdatedBy: residentCaller.UserID,
	})

	notifier := &fakeNotifier{}
	return NewRepairRequestService(f.repo, &fakeStorage{}, notifier, zap.NewNop()), f, notifier
}

func TestRepairRequestService_ToggleStatus_AppendsTracking(t *testing.T) {
	svc, f, notifier := setupRepairRequestService(t, model.RequestPending)

	resp, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Approved", Note: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.Status)
	require.Len(t, f.requests.trackings, 2)
	assert.Equal(t, model.RequestPending, f.requests.trackings[0].Status)
	assert.Equal(t, model.RequestApproved, f.requests.trackings[1].Status)
	assert.Equal(t, 1, f.tx.commits)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, []string{residentCaller.UserID}, notifier.sent[0].users)
}

func TestRepairRequestService_ToggleStatus_NotIdempotent(t *testing.T) {
	svc, f, _ := setupRepairRequestService(t, model.RequestPending)
	req := &dto.ToggleRequestStatusRequest{Status: "Approved"}

	_, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", req)
	require.NoError(t, err)

	_, err = svc.ToggleStatus(context.Background(), managerCaller, "req-1", req)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Không thể chuyển trạng thái từ Approved sang Approved", err.Error())
	assert.Len(t, f.requests.trackings, 2)
}

func TestRepairRequestService_ToggleStatus_ResidentCancelsOwnPending(t *testing.T) {
	svc, f, _ := setupRepairRequestService(t, model.RequestPending)

	resp, err := svc.ToggleStatus(context.Background(), residentCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", resp.Status)

	last := f.appts.trackings[len(f.appts.trackings)-1]
	assert.Equal(t, "appt-1", last.AppointmentID)
	assert.Equal(t, model.AppointmentCancelled, last.Status)
}

func TestRepairRequestService_ToggleStatus_ResidentLimitedToCancel(t *testing.T) {
	svc, f, _ := setupRepairRequestService(t, model.RequestPending)

	_, err := svc.ToggleStatus(context.Background(), residentCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Approved"})
	assert.ErrorIs(t, err, ErrResidentCancelOnly)
	assert.Len(t, f.requests.trackings, 1)
	assert.Zero(t, f.tx.begun)
}

func TestRepairRequestService_ToggleStatus_RollsBackOnWriteFailure(t *testing.T) {
	svc, f, notifier := setupRepairRequestService(t, model.RequestPending)
	boom := errors.New("insert failed")
	f.requests.trackingErr = boom

	_, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Rejected"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, f.tx.rollbacks)
	assert.Zero(t, f.tx.commits)
	assert.Empty(t, notifier.sent)
}

func TestRepairRequestService_ToggleStatus_CompletedMarksSchedule(t *testing.T) {
	svc, f, _ := setupRepairRequestService(t, model.RequestInProgress)
	scheduleID := "sched-1"
	f.requests.rows["req-1"].MaintenanceScheduleID = &scheduleID
	f.schedules.rows[scheduleID] = &model.MaintenanceSchedule{MaintenanceScheduleID: scheduleID, Status: model.StatusActive}

	_, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Completed"})
	require.NoError(t, err)

	got := f.schedules.rows[scheduleID].LastMaintenanceDate
	require.NotNil(t, got)
	assert.Equal(t, truncateDay(time.Now()), *got)
}

func TestRepairRequestService_ToggleStatus_NotFound(t *testing.T) {
	svc, _, _ := setupRepairRequestService(t, model.RequestPending)

	_, err := svc.ToggleStatus(context.Background(), managerCaller, "missing", &dto.ToggleRequestStatusRequest{Status: "Approved"})
	assert.ErrorIs(t, err, ErrRepairRequestNotFound)
}

func TestRepairRequestService_ToggleStatus_CancelReleasesWorkOrders(t *testing.T) {
	svc, f, _ := setupRepairRequestService(t, model.RequestApproved)
	f.appts.trackings = append(f.appts.trackings, model.AppointmentTracking{AppointmentID: "appt-1", Status: model.AppointmentAssigned})
	f.assigns.rows = append(f.assigns.rows, &model.AppointmentAssign{
		AppointmentAssignID: "as-1", AppointmentID: "appt-1", TechnicianID: "tech-1", Status: model.WorkOrderPending,
	})
	f.assigns.counts["appt-1"] = 1

	_, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.tx.commits)
	assert.Empty(t, f.assigns.byAppointment("appt-1"))

	status, err := currentAppointmentStatus(context.Background(), f.repo, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentCancelled, status)
}

func TestRepairRequestService_ToggleStatus_GuardsStatus(t *testing.T) {
	svc, _, _ := setupRepairRequestService(t, model.RequestPending)
	_, err := svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Archived"})
	assert.ErrorIs(t, err, ErrInvalidRequestStatus)

	svc, f, _ := setupRepairRequestService(t, model.RequestRejected)
	_, err = svc.ToggleStatus(context.Background(), managerCaller, "req-1", &dto.ToggleRequestStatusRequest{Status: "Approved"})
	assert.ErrorIs(t, err, ErrRepairRequestClosed)
	assert.Zero(t, f.tx.begun)
}

// ── create (resident path) ──

type createFixture struct {
	*fixture
	notifier *fakeNotifier
	svc      *repairRequestService
	now      time.Time
}

func setupCreateRequest(t *testing.T) *createFixture {
	t.Helper()
	f := newFixture()
	f.apartments.rows["apt-1"] = &model.Apartment{ApartmentID: "apt-1", Room: "A101", Status: model.StatusActive}
	f.residents.active[residentCaller.UserID+":apt-1"] = true
	f.issues.rows["issue-1"] = &model.Issue{
		IssueID: "issue-1", TechniqueID: "tq-plumbing", Name: "Rò rỉ nước",
		EstimatedDuration: 1.5, IsEmergency: true, Status: model.StatusActive,
	}
	f.users.users = []model.User{
		{UserID: "tech-1", FirstName: "An", LastName: "Nguyễn", Role: model.RoleTechnician, Status: model.StatusActive},
		{UserID: "tech-2", FirstName: "Bình", LastName: "Trần", Role: model.RoleTechnician, Status: model.StatusActive},
		{UserID: "tech-3", Role: model.RoleTechnician, Status: model.StatusInactive},
	}
	f.skills.rows = []model.UserTechnique{
		{UserID: "tech-1", TechniqueID: "tq-plumbing"},
		{UserID: "tech-2", TechniqueID: "tq-plumbing"},
		{UserID: "tech-3", TechniqueID: "tq-plumbing"},
	}
	f.assigns.busy["tech-2"] = true

	n := &fakeNotifier{}
	now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	svc := NewRepairRequestService(f.repo, &fakeStorage{}, n, zap.NewNop()).(*repairRequestService)
	svc.now = func() time.Time { return now }
	return &createFixture{fixture: f, notifier: n, svc: svc, now: now}
}

func (f *createFixture) request() *dto.CreateRepairRequest {
	return &dto.CreateRepairRequest{
		ApartmentID: "apt-1",
		IssueID:     "issue-1",
		Object:      "Ống nước bồn rửa",
		StartTime:   f.now.Add(24 * time.Hour),
		Images:      []*dto.FileUpload{{FileName: "leak.jpg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8}}},
	}
}

func TestRepairRequestService_CreateNormal(t *testing.T) {
	f := setupCreateRequest(t)
	req := f.request()

	resp, err := f.svc.CreateNormal(context.Background(), residentCaller, req)
	require.NoError(t, err)
	assert.Equal(t, "Pending", resp.Status)
	assert.True(t, resp.IsEmergency)
	assert.Equal(t, "A101", resp.Room)
	assert.Equal(t, 1, f.tx.commits)

	require.Len(t, resp.Appointments, 1)
	appt := f.appts.rows[resp.Appointments[0].ID]
	require.NotNil(t, appt)
	assert.Equal(t, resp.ID, appt.RepairRequestID)
	assert.Equal(t, req.StartTime.Add(90*time.Minute), appt.EndTime)

	require.Len(t, f.requests.trackings, 1)
	assert.Equal(t, model.RequestPending, f.requests.trackings[0].Status)
	require.Len(t, f.appts.trackings, 1)
	assert.Equal(t, model.AppointmentPending, f.appts.trackings[0].Status)

	require.Len(t, f.media.rows, 1)
	assert.Equal(t, resp.ID, f.media.rows[0].EntityID)

	require.Len(t, resp.SuggestedTechnicians, 1, "busy and inactive technicians are left out")
	assert.Equal(t, "tech-1", resp.SuggestedTechnicians[0].TechnicianID)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, model.RoleTechnicianLead, f.notifier.sent[0].role)
	assert.Equal(t, "Yêu cầu sửa chữa khẩn cấp", f.notifier.sent[0].msg.Title)
}

func TestRepairRequestService_CreateNormal_RollsBack(t *testing.T) {
	boom := errors.New("write failed")
	tests := []struct {
		name string
		fail func(f *createFixture)
	}{
		{"tracking insert fails", func(f *createFixture) { f.requests.trackingErr = boom }},
		{"technician lookup fails", func(f *createFixture) { f.skills.listErr = boom }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupCreateRequest(t)
			tt.fail(f)

			_, err := f.svc.CreateNormal(context.Background(), residentCaller, f.request())
			require.ErrorIs(t, err, boom)
			assert.Equal(t, 1, f.tx.rollbacks)
			assert.Zero(t, f.tx.commits)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestRepairRequestService_CreateNormal_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		caller  dto.Caller
		prepare func(f *createFixture, req *dto.CreateRepairRequest)
		wantErr error
	}{
		{"unknown apartment", residentCaller, func(_ *createFixture, req *dto.CreateRepairRequest) { req.ApartmentID = "apt-x" }, ErrApartmentNotFound},
		{"inactive apartment", residentCaller, func(f *createFixture, _ *dto.CreateRepairRequest) {
			f.apartments.rows["apt-1"].Status = model.StatusInactive
		}, ErrApartmentInactive},
		{"resident elsewhere", dto.Caller{UserID: "resident-2", Role: model.RoleResident}, nil, ErrNotApartmentResident},
		{"inactive issue", managerCaller, func(f *createFixture, _ *dto.CreateRepairRequest) {
			f.issues.rows["issue-1"].Status = model.StatusInactive
		}, ErrIssueInactive},
		{"start in the past", managerCaller, func(f *createFixture, req *dto.CreateRepairRequest) {
			req.StartTime = f.now.Add(-time.Minute)
		}, ErrStartTimeInPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupCreateRequest(t)
			req := f.request()
			if tt.prepare != nil {
				tt.prepare(f, req)
			}
			_, err := f.svc.CreateNormal(context.Background(), tt.caller, req)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.tx.begun)
			assert.Empty(t, f.requests.rows)
		})
	}
}

// ── create (maintenance path) ──

func setupScheduledRequest(t *testing.T, next time.Time, pref model.TimePreference) *createFixture {
	t.Helper()
	f := setupCreateRequest(t)
	f.schedules.rows["sched-1"] = &model.MaintenanceSchedule{
		MaintenanceScheduleID: "sched-1",
		CommonAreaObjectID:    "obj-1",
		Description:           "Kiểm tra cáp thang máy",
		FrequencyInDays:       30,
		NextScheduledDate:     next,
		TimePreference:        pref,
		EstimatedDuration:     2,
		Status:                model.StatusActive,
		CommonAreaObject:      &model.CommonAreaObject{CommonAreaObjectID: "obj-1", Name: "Thang máy A"},
	}
	return f
}

func TestRepairRequestService_CreateFromSchedule(t *testing.T) {
	f := setupScheduledRequest(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), model.TimeAfternoon)

	resp, err := f.svc.CreateFromSchedule(context.Background(), managerCaller, &dto.CreateScheduledRequestRequest{MaintenanceScheduleID: "sched-1"})
	require.NoError(t, err)
	assert.Equal(t, "Thang máy A", resp.Object)
	assert.Equal(t, "Pending", resp.Status)
	require.NotNil(t, resp.MaintenanceScheduleID)
	assert.Equal(t, 1, f.tx.commits)

	appt := f.appts.rows[resp.Appointments[0].ID]
	assert.Equal(t, time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC), appt.StartTime)
	assert.Equal(t, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC), appt.EndTime)

	schedule := f.schedules.rows["sched-1"]
	assert.Equal(t, time.Date(2026, 4, 9, 0, 0, 0, 0, time.UTC), schedule.NextScheduledDate)
	require.Len(t, f.schedules.trackings, 1)
	assert.Equal(t, "NextScheduledDate", f.schedules.trackings[0].FieldName)
	assert.Equal(t, "2026-03-10", f.schedules.trackings[0].OldValue)
}

func TestRepairRequestService_CreateFromSchedule_PreferredWindowPassed(t *testing.T) {
	f := setupScheduledRequest(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), model.TimeMorning)

	resp, err := f.svc.CreateFromSchedule(context.Background(), managerCaller, &dto.CreateScheduledRequestRequest{MaintenanceScheduleID: "sched-1"})
	require.NoError(t, err)

	appt := f.appts.rows[resp.Appointments[0].ID]
	assert.Equal(t, time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), appt.StartTime, "next full hour after now")
}

func TestRepairRequestService_CreateFromSchedule_Rejections(t *testing.T) {
	f := setupScheduledRequest(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), model.TimeAnytime)
	_, err := f.svc.CreateFromSchedule(context.Background(), managerCaller, &dto.CreateScheduledRequestRequest{MaintenanceScheduleID: "sched-1"})
	assert.ErrorIs(t, err, ErrScheduleNotDue)

	f.schedules.rows["sched-1"].Status = model.StatusInactive
	_, err = f.svc.CreateFromSchedule(context.Background(), managerCaller, &dto.CreateScheduledRequestRequest{MaintenanceScheduleID: "sched-1"})
	assert.ErrorIs(t, err, ErrScheduleInactive)

	_, err = f.svc.CreateFromSchedule(context.Background(), managerCaller, &dto.CreateScheduledRequestRequest{MaintenanceScheduleID: "missing"})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
	assert.Zero(t, f.tx.begun)
	assert.Empty(t, f.requests.rows)
}
