package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// RepairRequestHandler repair request endpoints
type RepairRequestHandler struct {
	requestSvc service.RepairRequestService
}

// NewRepairRequestHandler creates a RepairRequestHandler
func NewRepairRequestHandler(requestSvc service.RepairRequestService) *RepairRequestHandler {
	return &RepairRequestHandler{requestSvc: requestSvc}
}

// CreateRequest reports a problem; images come as multipart files under "images"
// POST /api/v1/repair-requests
func (h *RepairRequestHandler) CreateRequest(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateRepairRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	images, err := formFiles(c, "images")
	if err != nil {
		handleError(c, err)
		return
	}
	req.Images = images

	result, err := h.requestSvc.CreateNormal(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// CreateFromSchedule opens the maintenance request of a schedule
// POST /api/v1/repair-requests/maintenance
func (h *RepairRequestHandler) CreateFromSchedule(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateScheduledRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.requestSvc.CreateFromSchedule(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// ToggleStatus PUT /api/v1/repair-requests/:id/status
func (h *RepairRequestHandler) ToggleStatus(c *gin.Context) {
	callerUpdate(c, h.requestSvc.ToggleStatus)
}

// GetRequest GET /api/v1/repair-requests/:id
func (h *RepairRequestHandler) GetRequest(c *gin.Context) {
	callerAction(c, h.requestSvc.GetByID)
}

// ListRequests residents only see requests of their apartments
// GET /api/v1/repair-requests
func (h *RepairRequestHandler) ListRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.RepairRequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.requestSvc.List(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	pageOK(c, list, total, req.PaginationRequest)
}
