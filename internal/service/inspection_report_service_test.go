package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

var technicianCaller = dto.Caller{UserID: "tech-1", Role: model.RoleTechnician}

func setupInspection(t *testing.T, status model.AppointmentStatus, work model.WorkOrderStatus) (InspectionReportService, *fixture, *fakeNotifier) {
	t.Helper()
	f := newFixture()
	f.appts.rows["appt-1"] = &model.Appointment{AppointmentID: "appt-1", RepairRequestID: "req-1", StartTime: apptStart, EndTime: apptStart}
	f.appts.trackings = append(f.appts.trackings, model.AppointmentTracking{AppointmentID: "appt-1", Status: status})
	f.assigns.rows = append(f.assigns.rows, &model.AppointmentAssign{
		AppointmentAssignID: "as-1", AppointmentID: "appt-1", TechnicianID: technicianCaller.UserID, Status: work,
	})
	n := &fakeNotifier{}
	return NewInspectionReportService(f.repo, &fakeStorage{}, n, zap.NewNop()), f, n
}

func inspectionRequest() *dto.CreateInspectionReportRequest {
	return &dto.CreateInspectionReportRequest{
		AppointmentID: "appt-1",
		FaultOwner:    "Building",
		SolutionType:  "Internal",
		Description:   "Van tổng bị nứt",
		Solution:      "Thay van mới",
		Files:         []*dto.FileUpload{{FileName: "van.jpg", ContentType: "image/jpeg", Data: []byte{1}}},
	}
}

func TestInspectionReportService_Create(t *testing.T) {
	svc, f, notifier := setupInspection(t, model.AppointmentInVisit, model.WorkOrderWorking)

	resp, err := svc.Create(context.Background(), technicianCaller, inspectionRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, f.tx.commits)

	report := f.inspections.rows[resp.ID]
	require.NotNil(t, report)
	assert.Equal(t, model.ReportPending, report.Status)
	assert.Equal(t, model.FaultBuilding, report.FaultOwner)
	assert.Equal(t, technicianCaller.UserID, report.UserID)

	require.Len(t, f.media.rows, 1)
	assert.Equal(t, model.MediaInspectionReport, f.media.rows[0].Entity)
	assert.Equal(t, resp.ID, f.media.rows[0].EntityID)

	status, err := currentAppointmentStatus(context.Background(), f.repo, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentAwaitingIRApproval, status)

	require.Len(t, f.approvals.rows, 1)
	approval := f.approvals.rows[0]
	assert.Equal(t, model.RoleTechnicianLead, approval.Role)
	assert.Equal(t, model.ReportPending, approval.Status)
	require.NotNil(t, approval.InspectionReportID)
	assert.Equal(t, resp.ID, *approval.InspectionReportID)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, model.RoleTechnicianLead, notifier.sent[0].role)
}

func TestInspectionReportService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		status  model.AppointmentStatus
		work    model.WorkOrderStatus
		caller  dto.Caller
		prepare func(f *fixture)
		wantErr error
	}{
		{name: "not on the appointment", status: model.AppointmentInVisit, work: model.WorkOrderWorking,
			caller: dto.Caller{UserID: "tech-9", Role: model.RoleTechnician}, wantErr: ErrNotAssigned},
		{name: "not checked in", status: model.AppointmentConfirmed, work: model.WorkOrderPending,
			caller: technicianCaller, wantErr: ErrWorkNotStarted},
		{name: "appointment already repairing", status: model.AppointmentInRepair, work: model.WorkOrderWorking,
			caller: technicianCaller, wantErr: ErrAppointmentNotInVisit},
		{name: "pending report exists", status: model.AppointmentInVisit, work: model.WorkOrderWorking,
			caller: technicianCaller, prepare: func(f *fixture) {
				f.inspections.rows["ir-old"] = &model.InspectionReport{InspectionReportID: "ir-old", AppointmentID: "appt-1", Status: model.ReportPending}
			}, wantErr: ErrInspectionReportExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, notifier := setupInspection(t, tt.status, tt.work)
			if tt.prepare != nil {
				tt.prepare(f)
			}
			_, err := svc.Create(context.Background(), tt.caller, inspectionRequest())
			require.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, f.tx.begun)
			assert.Empty(t, f.approvals.rows)
			assert.Empty(t, notifier.sent)
		})
	}
}

func TestInspectionReportService_Create_AfterRejectedReport(t *testing.T) {
	svc, f, _ := setupInspection(t, model.AppointmentInVisit, model.WorkOrderWorking)
	f.inspections.rows["ir-old"] = &model.InspectionReport{InspectionReportID: "ir-old", AppointmentID: "appt-1", Status: model.ReportRejected}

	_, err := svc.Create(context.Background(), technicianCaller, inspectionRequest())
	require.NoError(t, err)
	assert.Len(t, f.inspections.rows, 2)
}
