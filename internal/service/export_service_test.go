package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
)

func TestExportService_ExportRepairRequests(t *testing.T) {
	f := newFixture()
	created := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	f.requests.add(&model.RepairRequest{
		RepairRequestID: "req-1",
		ApartmentID:     strPtr("apt-1"),
		Object:          "Vòi nước",
		Apartment:       &model.Apartment{ApartmentID: "apt-1", Room: "A-101"},
		Issue:           &model.Issue{IssueID: "iss-1", Name: "Rò rỉ nước"},
		BaseModel:       model.BaseModel{CreatedAt: created},
	})
	f.requests.add(&model.RepairRequest{
		RepairRequestID: "req-2",
		Object:          "Thang máy B",
		BaseModel:       model.BaseModel{CreatedAt: created},
	})
	f.requests.trackings = append(f.requests.trackings, model.RequestTracking{
		RepairRequestID: "req-1", Status: model.RequestApproved, UpdatedAt: created,
	})
	f.appts.rows["ap-1"] = &model.Appointment{AppointmentID: "ap-1", RepairRequestID: "req-1"}
	f.appts.rows["ap-2"] = &model.Appointment{AppointmentID: "ap-2", RepairRequestID: "req-1"}

	svc := NewExportService(f.repo, zap.NewNop()).(*exportService)
	svc.now = func() time.Time { return time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC) }

	buf, filename, err := svc.ExportRepairRequests(context.Background(), &dto.ExportRepairRequestsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "repair_requests_20260305_080000.xlsx", filename)

	book, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{exportSheet}, book.GetSheetList())
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, []string{"req-1", "A-101", "Rò rỉ nước", "Approved", formatTime(created), "2"}, rows[1])
	// no apartment, no issue, no tracking yet
	assert.Equal(t, []string{"req-2", "-", "Thang máy B", "Pending", formatTime(created), "0"}, rows[2])
}

func TestExportService_ExportRepairRequests_Empty(t *testing.T) {
	f := newFixture()
	svc := NewExportService(f.repo, zap.NewNop())

	_, _, err := svc.ExportRepairRequests(context.Background(), &dto.ExportRepairRequestsRequest{})
	assert.ErrorIs(t, err, ErrExportEmpty)
}

func TestExportService_ExportRepairRequests_InvertedRange(t *testing.T) {
	f := newFixture()
	svc := NewExportService(f.repo, zap.NewNop())
	from := time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, _, err := svc.ExportRepairRequests(context.Background(), &dto.ExportRepairRequestsRequest{
		DateRange: dto.DateRange{From: &from, To: &to},
	})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}
