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

func setupContractService(t *testing.T) (ContractService, *fixture, *fakeStorage) {
	t.Helper()
	f := newFixture()
	f.requests.add(&model.RepairRequest{RepairRequestID: "req-1", UserID: residentCaller.UserID, Object: "Thang máy"})
	f.requests.trackings = append(f.requests.trackings, model.RequestTracking{RepairRequestID: "req-1", Status: model.RequestApproved})
	f.appts.rows["appt-1"] = &model.Appointment{AppointmentID: "appt-1", RepairRequestID: "req-1"}
	f.inspections.rows["ir-1"] = &model.InspectionReport{
		InspectionReportID: "ir-1",
		AppointmentID:      "appt-1",
		SolutionType:       model.SolutionOutsource,
		Status:             model.ReportApproved,
	}
	storage := &fakeStorage{}
	return NewContractService(f.repo, storage, zap.NewNop()), f, storage
}

func contractRequest(file *dto.FileUpload) *dto.CreateContractRequest {
	start := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	return &dto.CreateContractRequest{
		RepairRequestID: "req-1",
		ContractCode:    "HD-001",
		ContractorName:  "Công ty Thang Máy ABC",
		Amount:          15000000,
		StartDate:       start,
		EndDate:         start.AddDate(0, 1, 0),
		ContractFile:    file,
	}
}

func pdfFile() *dto.FileUpload {
	return &dto.FileUpload{FileName: "hd-001.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.7")}
}

func TestContractService_Create_Success(t *testing.T) {
	svc, f, storage := setupContractService(t)

	resp, err := svc.Create(context.Background(), managerCaller, contractRequest(pdfFile()))
	require.NoError(t, err)
	assert.Equal(t, "HD-001", resp.ContractCode)
	assert.Equal(t, 1, f.contracts.creates)
	assert.Equal(t, []string{"contracts/hd-001.pdf"}, storage.uploads)

	require.Len(t, f.media.rows, 1)
	assert.Equal(t, model.MediaContract, f.media.rows[0].Entity)
	assert.Equal(t, resp.ID, f.media.rows[0].EntityID)
	assert.Equal(t, 1, f.tx.commits)
}

func TestContractService_Create_RequiresPDF(t *testing.T) {
	tests := []struct {
		name string
		file *dto.FileUpload
	}{
		{name: "missing file"},
		{name: "image", file: &dto.FileUpload{FileName: "scan.png", ContentType: "image/png", Data: []byte{0x89}}},
		{name: "word document", file: &dto.FileUpload{FileName: "hd.docx", ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Data: []byte("PK")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, storage := setupContractService(t)

			_, err := svc.Create(context.Background(), managerCaller, contractRequest(tt.file))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PDF")
			assert.Zero(t, f.contracts.creates)
			assert.Empty(t, storage.uploads)
		})
	}
}

func TestContractService_Create_Rejected(t *testing.T) {
	t.Run("inverted dates", func(t *testing.T) {
		svc, _, _ := setupContractService(t)
		req := contractRequest(pdfFile())
		req.StartDate, req.EndDate = req.EndDate, req.StartDate
		_, err := svc.Create(context.Background(), managerCaller, req)
		assert.ErrorIs(t, err, ErrContractDateRange)
	})

	t.Run("cancelled request", func(t *testing.T) {
		svc, f, _ := setupContractService(t)
		f.requests.trackings = append(f.requests.trackings, model.RequestTracking{RepairRequestID: "req-1", Status: model.RequestCancelled})
		_, err := svc.Create(context.Background(), managerCaller, contractRequest(pdfFile()))
		assert.ErrorIs(t, err, ErrContractRequestClosed)
	})

	t.Run("no outsource inspection", func(t *testing.T) {
		svc, f, _ := setupContractService(t)
		f.inspections.rows["ir-1"].SolutionType = model.SolutionInternal
		_, err := svc.Create(context.Background(), managerCaller, contractRequest(pdfFile()))
		assert.ErrorIs(t, err, ErrContractNoOutsource)
	})

	t.Run("duplicate code", func(t *testing.T) {
		svc, f, _ := setupContractService(t)
		f.contracts.codes["HD-001"] = true
		_, err := svc.Create(context.Background(), managerCaller, contractRequest(pdfFile()))
		assert.ErrorIs(t, err, ErrContractCodeExists)
	})

	t.Run("upload failure writes nothing", func(t *testing.T) {
		svc, f, storage := setupContractService(t)
		storage.fail = true
		_, err := svc.Create(context.Background(), managerCaller, contractRequest(pdfFile()))
		assert.ErrorIs(t, err, ErrUploadFailed)
		assert.Equal(t, "Tải tệp lên thất bại", err.Error())
		assert.Zero(t, f.contracts.creates)
		assert.Zero(t, f.tx.begun)
	})
}
