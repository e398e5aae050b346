package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

type assignFixture struct {
	*fixture
	notifier *fakeNotifier
	svc      *appointmentAssignService
}

func setupAssign(t *testing.T) *assignFixture {
	t.Helper()
	f := newFixture()
	f.repo.User = &fakeUserRepo{users: []model.User{
		{UserID: "tech-1", FirstName: "An", LastName: "Nguyễn", Role: model.RoleTechnician, Status: model.StatusActive},
		{UserID: "tech-off", Role: model.RoleTechnician, Status: model.StatusInactive},
		{UserID: "rec-1", Role: model.RoleReceptionist, Status: model.StatusActive},
	}}

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	f.requests.add(&model.RepairRequest{RepairRequestID: "req-1", Object: "Vòi nước", Description: "Rò rỉ dưới bồn"})
	f.appts.rows["appt-1"] = &model.Appointment{
		AppointmentID:   "appt-1",
		RepairRequestID: "req-1",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Hour),
		RepairRequest:   f.requests.rows["req-1"],
	}

	n := &fakeNotifier{}
	svc := NewAppointmentAssignService(f.repo, n, zap.NewNop()).(*appointmentAssignService)
	svc.now = func() time.Time { return start.Add(-24 * time.Hour) }
	return &assignFixture{fixture: f, notifier: n, svc: svc}
}

func TestAssign_PendingAppointmentBecomesAssigned(t *testing.T) {
	f := setupAssign(t)

	resp, err := f.svc.Assign(context.Background(), leadCaller, &dto.AssignTechnicianRequest{
		AppointmentID: "appt-1",
		TechnicianID:  "tech-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "tech-1", resp.TechnicianID)
	assert.Equal(t, string(model.WorkOrderPending), resp.Status)

	require.Len(t, f.appts.trackings, 1)
	assert.Equal(t, model.AppointmentAssigned, f.appts.trackings[0].Status)
	assert.Equal(t, 1, f.tx.commits)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, []string{"tech-1"}, f.notifier.sent[0].users)
	assert.Equal(t, "appt-1", f.notifier.sent[0].msg.Data["appointment_id"])
}

func TestAssign_SecondTechnicianKeepsStatus(t *testing.T) {
	f := setupAssign(t)
	f.repo.User.(*fakeUserRepo).users = append(f.repo.User.(*fakeUserRepo).users,
		model.User{UserID: "tech-2", Role: model.RoleTechnician, Status: model.StatusActive})
	ctx := context.Background()

	_, err := f.svc.Assign(ctx, leadCaller, &dto.AssignTechnicianRequest{AppointmentID: "appt-1", TechnicianID: "tech-1"})
	require.NoError(t, err)
	_, err = f.svc.Assign(ctx, leadCaller, &dto.AssignTechnicianRequest{AppointmentID: "appt-1", TechnicianID: "tech-2"})
	require.NoError(t, err)

	assert.Len(t, f.assigns.rows, 2)
	assert.Len(t, f.appts.trackings, 1, "already Assigned, no new tracking row")
}

func TestAssign_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		techID  string
		prepare func(f *assignFixture)
		wantErr error
	}{
		{"unknown appointment", "tech-1", func(f *assignFixture) { delete(f.appts.rows, "appt-1") }, ErrAppointmentNotFound},
		{"appointment confirmed", "tech-1", func(f *assignFixture) {
			f.appts.trackings = append(f.appts.trackings, model.AppointmentTracking{AppointmentID: "appt-1", Status: model.AppointmentConfirmed})
		}, ErrAppointmentNotOpen},
		{"unknown technician", "ghost", nil, ErrTechnicianNotFound},
		{"not a technician", "rec-1", nil, ErrNotTechnician},
		{"inactive technician", "tech-off", nil, ErrTechnicianInactive},
		{"busy technician", "tech-1", func(f *assignFixture) { f.assigns.busy["tech-1"] = true }, ErrTechnicianBusy},
		{"already assigned", "tech-1", func(f *assignFixture) {
			f.assigns.rows = append(f.assigns.rows, &model.AppointmentAssign{AppointmentID: "appt-1", TechnicianID: "tech-1"})
		}, ErrAlreadyAssigned},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAssign(t)
			if tt.prepare != nil {
				tt.prepare(f)
			}
			_, err := f.svc.Assign(context.Background(), leadCaller, &dto.AssignTechnicianRequest{
				AppointmentID: "appt-1",
				TechnicianID:  tt.techID,
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.notifier.sent)
		})
	}
}

func TestUpdateWorkTime(t *testing.T) {
	f := setupAssign(t)
	start := f.appts.rows["appt-1"].StartTime
	f.assigns.rows = append(f.assigns.rows, &model.AppointmentAssign{
		AppointmentAssignID: "as-1",
		AppointmentID:       "appt-1",
		TechnicianID:        "tech-1",
		Status:              model.WorkOrderPending,
	})
	tech := dto.Caller{UserID: "tech-1", Role: model.RoleTechnician}

	_, err := f.svc.UpdateWorkTime(context.Background(), tech, "as-1", &dto.UpdateWorkTimeRequest{
		EstimatedStartTime: start.Add(time.Hour),
		EstimatedEndTime:   start,
	})
	require.ErrorIs(t, err, ErrAppointmentTimeRange)

	other := dto.Caller{UserID: "tech-2", Role: model.RoleTechnician}
	_, err = f.svc.UpdateWorkTime(context.Background(), other, "as-1", &dto.UpdateWorkTimeRequest{
		EstimatedStartTime: start,
		EstimatedEndTime:   start.Add(time.Hour),
	})
	require.ErrorIs(t, err, ErrNotAssigned)

	resp, err := f.svc.UpdateWorkTime(context.Background(), tech, "as-1", &dto.UpdateWorkTimeRequest{
		EstimatedStartTime: start.Add(30 * time.Minute),
		EstimatedEndTime:   start.Add(90 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, formatTime(start.Add(30*time.Minute)), resp.EstimatedStartTime)
}

func TestExportCalendar(t *testing.T) {
	f := setupAssign(t)
	ctx := context.Background()
	_, err := f.svc.Assign(ctx, leadCaller, &dto.AssignTechnicianRequest{AppointmentID: "appt-1", TechnicianID: "tech-1"})
	require.NoError(t, err)

	raw, err := f.svc.ExportCalendar(ctx, "tech-1", &dto.WorkScheduleRequest{})
	require.NoError(t, err)

	out := string(raw)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "BEGIN:VEVENT")
	assert.Contains(t, out, "@aptcare")
	assert.Contains(t, out, "Vòi nước (Pending)")
	assert.Contains(t, out, "DTSTART")
}

func TestExportCalendar_InvertedRange(t *testing.T) {
	f := setupAssign(t)
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(-48 * time.Hour)

	_, err := f.svc.ExportCalendar(context.Background(), "tech-1", &dto.WorkScheduleRequest{
		DateRange: dto.DateRange{From: &from, To: &to},
	})
	require.ErrorIs(t, err, ErrInvalidDateRange)
}
