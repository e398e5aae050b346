package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// ────────────────────── Floor ──────────────────────

// FloorHandler floor endpoints
type FloorHandler struct {
	floorSvc service.FloorService
}

// NewFloorHandler creates a FloorHandler
func NewFloorHandler(floorSvc service.FloorService) *FloorHandler {
	return &FloorHandler{floorSvc: floorSvc}
}

// CreateFloor
// POST /api/v1/floors
func (h *FloorHandler) CreateFloor(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.floorSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// UpdateFloor
// PUT /api/v1/floors/:id
func (h *FloorHandler) UpdateFloor(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.floorSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// GetFloor
// GET /api/v1/floors/:id
func (h *FloorHandler) GetFloor(c *gin.Context) {
	getByID(c, h.floorSvc.GetByID)
}

// ListFloors
// GET /api/v1/floors
func (h *FloorHandler) ListFloors(c *gin.Context) {
	var req dto.FloorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	floors, total, err := h.floorSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	pageOK(c, floors, total, req.PaginationRequest)
}

// ActivateFloor
// PUT /api/v1/floors/:id/activate
func (h *FloorHandler) ActivateFloor(c *gin.Context) {
	callerAction(c, h.floorSvc.Activate)
}

// DeactivateFloor
// PUT /api/v1/floors/:id/deactivate
func (h *FloorHandler) DeactivateFloor(c *gin.Context) {
	callerAction(c, h.floorSvc.Deactivate)
}

// ────────────────────── Apartment ──────────────────────

// ApartmentHandler apartment and residency endpoints
type ApartmentHandler struct {
	aptSvc service.ApartmentService
}

// NewApartmentHandler creates an ApartmentHandler
func NewApartmentHandler(aptSvc service.ApartmentService) *ApartmentHandler {
	return &ApartmentHandler{aptSvc: aptSvc}
}

// CreateApartment
// POST /api/v1/apartments
func (h *ApartmentHandler) CreateApartment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.aptSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// UpdateApartment
// PUT /api/v1/apartments/:id
func (h *ApartmentHandler) UpdateApartment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateApartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.aptSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// GetApartment
// GET /api/v1/apartments/:id
func (h *ApartmentHandler) GetApartment(c *gin.Context) {
	getByID(c, h.aptSvc.GetByID)
}

// ListApartments
// GET /api/v1/apartments
func (h *ApartmentHandler) ListApartments(c *gin.Context) {
	var req dto.ApartmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	apts, total, err := h.aptSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	pageOK(c, apts, total, req.PaginationRequest)
}

// ActivateApartment
// PUT /api/v1/apartments/:id/activate
func (h *ApartmentHandler) ActivateApartment(c *gin.Context) {
	callerAction(c, h.aptSvc.Activate)
}

// DeactivateApartment
// PUT /api/v1/apartments/:id/deactivate
func (h *ApartmentHandler) DeactivateApartment(c *gin.Context) {
	callerAction(c, h.aptSvc.Deactivate)
}

// AddResident
// POST /api/v1/apartments/:id/residents
func (h *ApartmentHandler) AddResident(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AddResidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	msg, err := h.aptSvc.AddResident(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// RemoveResident
// DELETE /api/v1/apartments/:id/residents/:user_id
func (h *ApartmentHandler) RemoveResident(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	msg, err := h.aptSvc.RemoveResident(c.Request.Context(), caller, c.Param("id"), c.Param("user_id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKMessage(c, msg)
}

// ListResidents
// GET /api/v1/apartments/:id/residents
func (h *ApartmentHandler) ListResidents(c *gin.Context) {
	residents, err := h.aptSvc.ListResidents(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": residents})
}
