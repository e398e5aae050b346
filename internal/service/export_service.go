package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const exportSheet = "Yêu cầu sửa chữa"

var (
	ErrExportEmpty        = apperr.NotFound("Không có yêu cầu sửa chữa nào để xuất")
	ErrExportGenerateFail = errors.New("generate workbook failed")
)

var exportHeader = []string{"Mã yêu cầu", "Căn hộ", "Sự cố", "Trạng thái", "Ngày tạo", "Số lịch hẹn"}

// ExportService builds spreadsheet reports
//
// The workbook is returned as a buffer; the handler sets the download headers.
type ExportService interface {
	// ExportRepairRequests one row per matching request
	ExportRepairRequests(ctx context.Context, req *dto.ExportRepairRequestsRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) ExportRepairRequests(ctx context.Context, req *dto.ExportRepairRequestsRequest) (*bytes.Buffer, string, error) {
	if req.Inverted() {
		return nil, "", ErrInvalidDateRange
	}

	// zero Page means no limit
	requests, _, err := s.repo.RepairRequest.List(ctx, repository.RequestFilter{
		ApartmentID: req.ApartmentID,
		Status:      model.RequestStatus(req.Status),
		Emergency:   req.Emergency,
		From:        req.From,
		To:          endOfDay(req.To),
	})
	if err != nil {
		s.logger.Error("list repair requests for export failed", zap.Error(err))
		return nil, "", err
	}
	if len(requests) == 0 {
		return nil, "", ErrExportEmpty
	}

	ids := make([]string, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.RepairRequestID)
	}
	statuses, err := s.repo.RepairRequest.LatestStatuses(ctx, ids)
	if err != nil {
		s.logger.Error("load request statuses failed", zap.Error(err))
		return nil, "", err
	}
	counts, err := s.repo.Appointment.CountByRequests(ctx, ids)
	if err != nil {
		s.logger.Error("count appointments failed", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheet, "A", "A", 38)
	f.SetColWidth(exportSheet, "B", "C", 24)
	f.SetColWidth(exportSheet, "D", "E", 20)
	f.SetColWidth(exportSheet, "F", "F", 14)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeader {
		f.SetCellValue(exportSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(exportSheet, "A1", cell(colName(len(exportHeader)-1), 1), headerStyle)
	f.SetPanes(exportSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i := range requests {
		r := &requests[i]
		row := i + 2
		status, ok := statuses[r.RepairRequestID]
		if !ok {
			status = model.RequestPending
		}
		values := []any{
			r.RepairRequestID,
			exportApartment(r),
			exportIssue(r),
			string(status),
			formatTime(r.CreatedAt),
			counts[r.RepairRequestID],
		}
		for c, v := range values {
			f.SetCellValue(exportSheet, cell(colName(c), row), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("repair_requests_%s.xlsx", s.now().Format("20060102_150405"))
	s.logger.Info("repair requests exported", zap.Int("rows", len(requests)), zap.String("file", filename))
	return buf, filename, nil
}

func exportApartment(r *model.RepairRequest) string {
	if r.Apartment != nil {
		return r.Apartment.Room
	}
	return "-"
}

func exportIssue(r *model.RepairRequest) string {
	if r.Issue != nil {
		return r.Issue.Name
	}
	// scheduled maintenance requests carry no issue
	return r.Object
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
