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

func setupApprovalService(t *testing.T) (ReportApprovalService, *fixture, *fakeNotifier) {
	t.Helper()
	f := newFixture()
	f.inspections.rows["ir-1"] = &model.InspectionReport{
		InspectionReportID: "ir-1",
		AppointmentID:      "appt-1",
		UserID:             "tech-1",
		SolutionType:       model.SolutionInternal,
		Status:             model.ReportPending,
	}
	pending := model.ReportApproval{ReportApprovalID: "appr-1", Role: model.RoleTechnicianLead, Status: model.ReportPending}
	pending.Attach(model.InspectionReportRef("ir-1"))
	f.approvals.rows = append(f.approvals.rows, pending)

	notifier := &fakeNotifier{}
	return NewReportApprovalService(f.repo, notifier, zap.NewNop()), f, notifier
}

func TestReportApprovalService_Escalate_InsertsOneRow(t *testing.T) {
	svc, f, notifier := setupApprovalService(t)

	resp, err := svc.Approve(context.Background(), leadCaller, &dto.ApproveReportRequest{
		ReportType:            "Inspection",
		ReportID:              "ir-1",
		Status:                "Approved",
		EscalateToHigherLevel: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.approvals.creates)
	require.Len(t, f.approvals.rows, 2)

	decided, next := f.approvals.rows[0], f.approvals.rows[1]
	assert.Equal(t, model.ReportApproved, decided.Status)
	require.NotNil(t, decided.UserID)
	assert.Equal(t, leadCaller.UserID, *decided.UserID)
	assert.NotNil(t, decided.DecidedAt)

	assert.Equal(t, model.RoleManager, next.Role)
	assert.Equal(t, model.ReportPending, next.Status)
	assert.Equal(t, model.InspectionReportRef("ir-1"), next.Ref())
	assert.Equal(t, "Manager", resp.Role)

	// the report itself stays pending until the last step decides
	assert.Equal(t, model.ReportPending, f.inspections.rows["ir-1"].Status)

	var roles []model.Role
	for _, n := range notifier.sent {
		if n.role != "" {
			roles = append(roles, n.role)
		}
	}
	assert.Equal(t, []model.Role{model.RoleManager}, roles)
}

func TestReportApprovalService_ManagerDecidesEscalatedReport(t *testing.T) {
	svc, f, _ := setupApprovalService(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, leadCaller, &dto.ApproveReportRequest{
		ReportType: "Inspection", ReportID: "ir-1", Status: "Approved", EscalateToHigherLevel: true,
	})
	require.NoError(t, err)

	_, err = svc.Approve(ctx, managerCaller, &dto.ApproveReportRequest{
		ReportType: "Inspection", ReportID: "ir-1", Status: "Approved", EscalateToHigherLevel: true,
	})
	assert.ErrorIs(t, err, ErrCannotEscalate)

	_, err = svc.Approve(ctx, managerCaller, &dto.ApproveReportRequest{
		ReportType: "Inspection", ReportID: "ir-1", Status: "Approved",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportApproved, f.inspections.rows["ir-1"].Status)
	assert.Equal(t, 1, f.approvals.creates)
}

func TestReportApprovalService_RejectInspection_ReturnsAppointmentToVisit(t *testing.T) {
	svc, f, notifier := setupApprovalService(t)

	_, err := svc.Approve(context.Background(), leadCaller, &dto.ApproveReportRequest{
		ReportType: "Inspection", ReportID: "ir-1", Status: "Rejected", Comment: "Thiếu ảnh",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ReportRejected, f.inspections.rows["ir-1"].Status)
	require.Len(t, f.appts.trackings, 1)
	assert.Equal(t, model.AppointmentInVisit, f.appts.trackings[0].Status)

	require.NotEmpty(t, notifier.sent)
	assert.Equal(t, []string{"tech-1"}, notifier.sent[len(notifier.sent)-1].users)
}

func TestReportApprovalService_Approve_Guards(t *testing.T) {
	t.Run("wrong role", func(t *testing.T) {
		svc, f, _ := setupApprovalService(t)
		_, err := svc.Approve(context.Background(), managerCaller, &dto.ApproveReportRequest{
			ReportType: "Inspection", ReportID: "ir-1", Status: "Approved",
		})
		assert.ErrorIs(t, err, ErrApproverRoleMismatch)
		assert.Zero(t, f.tx.begun)
	})

	t.Run("report already decided", func(t *testing.T) {
		svc, f, _ := setupApprovalService(t)
		f.inspections.rows["ir-1"].Status = model.ReportApproved
		_, err := svc.Approve(context.Background(), leadCaller, &dto.ApproveReportRequest{
			ReportType: "Inspection", ReportID: "ir-1", Status: "Approved",
		})
		assert.ErrorIs(t, err, ErrReportLocked)
	})

	t.Run("two pending steps", func(t *testing.T) {
		svc, f, _ := setupApprovalService(t)
		extra := model.ReportApproval{ReportApprovalID: "appr-2", Role: model.RoleManager, Status: model.ReportPending}
		extra.Attach(model.InspectionReportRef("ir-1"))
		f.approvals.rows = append(f.approvals.rows, extra)
		_, err := svc.Approve(context.Background(), leadCaller, &dto.ApproveReportRequest{
			ReportType: "Inspection", ReportID: "ir-1", Status: "Approved",
		})
		assert.ErrorIs(t, err, ErrMultiplePendingApproval)
	})

	t.Run("unknown report type", func(t *testing.T) {
		svc, _, _ := setupApprovalService(t)
		_, err := svc.Approve(context.Background(), leadCaller, &dto.ApproveReportRequest{
			ReportType: "Invoice", ReportID: "ir-1", Status: "Approved",
		})
		assert.ErrorIs(t, err, ErrInvalidReportType)
	})
}
