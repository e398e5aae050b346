package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// ReportHandler inspection reports, repair reports and their approvals
type ReportHandler struct {
	inspectionSvc service.InspectionReportService
	repairSvc     service.RepairReportService
	approvalSvc   service.ReportApprovalService
}

// NewReportHandler creates a ReportHandler
func NewReportHandler(inspectionSvc service.InspectionReportService, repairSvc service.RepairReportService, approvalSvc service.ReportApprovalService) *ReportHandler {
	return &ReportHandler{inspectionSvc: inspectionSvc, repairSvc: repairSvc, approvalSvc: approvalSvc}
}

// ────────────────────── Inspection ──────────────────────

// CreateInspection multipart form, attachments under "files"
// POST /api/v1/inspection-reports
func (h *ReportHandler) CreateInspection(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateInspectionReportRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	files, err := formFiles(c, "files")
	if err != nil {
		handleError(c, err)
		return
	}
	req.Files = files

	report, err := h.inspectionSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, report)
}

// UpdateInspection PUT /api/v1/inspection-reports/:id
func (h *ReportHandler) UpdateInspection(c *gin.Context) {
	callerUpdate(c, h.inspectionSvc.Update)
}

// GetInspection an unknown id yields an empty report
// GET /api/v1/inspection-reports/:id
func (h *ReportHandler) GetInspection(c *gin.Context) {
	getByID(c, h.inspectionSvc.GetByID)
}

// ListInspections GET /api/v1/inspection-reports
func (h *ReportHandler) ListInspections(c *gin.Context) {
	listPaged(c, h.inspectionSvc.List)
}

// ListInspectionsByAppointment GET /api/v1/appointments/:id/inspection-reports
func (h *ReportHandler) ListInspectionsByAppointment(c *gin.Context) {
	list, err := h.inspectionSvc.ListByAppointment(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ────────────────────── Repair ──────────────────────

// CreateRepair multipart form, attachments under "files"
// POST /api/v1/repair-reports
func (h *ReportHandler) CreateRepair(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateRepairReportRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	files, err := formFiles(c, "files")
	if err != nil {
		handleError(c, err)
		return
	}
	req.Files = files

	report, err := h.repairSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, report)
}

// UpdateRepair PUT /api/v1/repair-reports/:id
func (h *ReportHandler) UpdateRepair(c *gin.Context) {
	callerUpdate(c, h.repairSvc.Update)
}

// GetRepair GET /api/v1/repair-reports/:id
func (h *ReportHandler) GetRepair(c *gin.Context) {
	getByID(c, h.repairSvc.GetByID)
}

// ListRepairs GET /api/v1/repair-reports
func (h *ReportHandler) ListRepairs(c *gin.Context) {
	listPaged(c, h.repairSvc.List)
}

// ────────────────────── Approval ──────────────────────

// Approve decides the pending approval of a report
// POST /api/v1/report-approvals
func (h *ReportHandler) Approve(c *gin.Context) {
	callerCreate(c, h.approvalSvc.Approve)
}

// ListApprovals GET /api/v1/report-approvals?report_type=Inspection&report_id=...
func (h *ReportHandler) ListApprovals(c *gin.Context) {
	var q struct {
		ReportType string `form:"report_type" binding:"required,oneof=Inspection Repair"`
		ReportID   string `form:"report_id"   binding:"required,uuid"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.approvalSvc.ListByReport(c.Request.Context(), q.ReportType, q.ReportID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}
