package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler spreadsheet downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRepairRequests
// GET /api/v1/export/repair-requests?from=2026-01-01&to=2026-01-31
func (h *ExportHandler) ExportRepairRequests(c *gin.Context) {
	var req dto.ExportRepairRequestsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportRepairRequests(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	attachment(c, filename, xlsxContentType, buf.Bytes())
}

// attachment writes data as a file download
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
