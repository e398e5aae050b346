package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// ────────────────────── Technique ──────────────────────

// TechniqueHandler techniques and technician skill sets
type TechniqueHandler struct {
	techSvc service.TechniqueService
}

// NewTechniqueHandler creates a TechniqueHandler
func NewTechniqueHandler(techSvc service.TechniqueService) *TechniqueHandler {
	return &TechniqueHandler{techSvc: techSvc}
}

// CreateTechnique POST /api/v1/techniques
func (h *TechniqueHandler) CreateTechnique(c *gin.Context) {
	callerCreate(c, h.techSvc.Create)
}

// UpdateTechnique PUT /api/v1/techniques/:id
func (h *TechniqueHandler) UpdateTechnique(c *gin.Context) {
	callerUpdate(c, h.techSvc.Update)
}

// DeleteTechnique DELETE /api/v1/techniques/:id
func (h *TechniqueHandler) DeleteTechnique(c *gin.Context) {
	callerAction(c, h.techSvc.Delete)
}

// GetTechnique GET /api/v1/techniques/:id
func (h *TechniqueHandler) GetTechnique(c *gin.Context) {
	getByID(c, h.techSvc.GetByID)
}

// ListTechniques GET /api/v1/techniques
func (h *TechniqueHandler) ListTechniques(c *gin.Context) {
	listPaged(c, h.techSvc.List)
}

// AssignToTechnician adds skills
// POST /api/v1/technicians/techniques
func (h *TechniqueHandler) AssignToTechnician(c *gin.Context) {
	callerCreate(c, h.techSvc.AssignToTechnician)
}

// UpdateTechnician replaces the skill set
// PUT /api/v1/technicians/techniques
func (h *TechniqueHandler) UpdateTechnician(c *gin.Context) {
	callerCreate(c, h.techSvc.UpdateTechnician)
}

// RemoveFromTechnician
// DELETE /api/v1/technicians/:id/techniques/:technique_id
func (h *TechniqueHandler) RemoveFromTechnician(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	msg, err := h.techSvc.RemoveFromTechnician(c.Request.Context(), caller, c.Param("id"), c.Param("technique_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// ListByTechnician
// GET /api/v1/technicians/:id/techniques
func (h *TechniqueHandler) ListByTechnician(c *gin.Context) {
	getByID(c, h.techSvc.ListByTechnician)
}

// ────────────────────── Issue ──────────────────────

// IssueHandler issue type endpoints
type IssueHandler struct {
	issueSvc service.IssueService
}

// NewIssueHandler creates an IssueHandler
func NewIssueHandler(issueSvc service.IssueService) *IssueHandler {
	return &IssueHandler{issueSvc: issueSvc}
}

// CreateIssue POST /api/v1/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	callerCreate(c, h.issueSvc.Create)
}

// UpdateIssue PUT /api/v1/issues/:id
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	callerUpdate(c, h.issueSvc.Update)
}

// GetIssue GET /api/v1/issues/:id
func (h *IssueHandler) GetIssue(c *gin.Context) {
	getByID(c, h.issueSvc.GetByID)
}

// ListIssues GET /api/v1/issues
func (h *IssueHandler) ListIssues(c *gin.Context) {
	listPaged(c, h.issueSvc.List)
}

// ActivateIssue PUT /api/v1/issues/:id/activate
func (h *IssueHandler) ActivateIssue(c *gin.Context) {
	callerAction(c, h.issueSvc.Activate)
}

// DeactivateIssue PUT /api/v1/issues/:id/deactivate
func (h *IssueHandler) DeactivateIssue(c *gin.Context) {
	callerAction(c, h.issueSvc.Deactivate)
}

// ────────────────────── Accessory ──────────────────────

// AccessoryHandler spare part endpoints
type AccessoryHandler struct {
	accSvc service.AccessoryService
}

// NewAccessoryHandler creates an AccessoryHandler
func NewAccessoryHandler(accSvc service.AccessoryService) *AccessoryHandler {
	return &AccessoryHandler{accSvc: accSvc}
}

// CreateAccessory POST /api/v1/accessories
func (h *AccessoryHandler) CreateAccessory(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AccessoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	acc, err := h.accSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, acc)
}

// UpdateAccessory PUT /api/v1/accessories/:id
func (h *AccessoryHandler) UpdateAccessory(c *gin.Context) {
	callerUpdate(c, h.accSvc.Update)
}

// DeleteAccessory DELETE /api/v1/accessories/:id
func (h *AccessoryHandler) DeleteAccessory(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.accSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// GetAccessory GET /api/v1/accessories/:id
func (h *AccessoryHandler) GetAccessory(c *gin.Context) {
	getByID(c, h.accSvc.GetByID)
}

// ListAccessories GET /api/v1/accessories
func (h *AccessoryHandler) ListAccessories(c *gin.Context) {
	listPaged(c, h.accSvc.List)
}
