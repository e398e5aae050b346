package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// AppointmentHandler visits and technician work orders
type AppointmentHandler struct {
	apptSvc   service.AppointmentService
	assignSvc service.AppointmentAssignService
}

// NewAppointmentHandler creates an AppointmentHandler
func NewAppointmentHandler(apptSvc service.AppointmentService, assignSvc service.AppointmentAssignService) *AppointmentHandler {
	return &AppointmentHandler{apptSvc: apptSvc, assignSvc: assignSvc}
}

// ────────────────────── Appointment ──────────────────────

// UpdateAppointment PUT /api/v1/appointments/:id
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	callerUpdate(c, h.apptSvc.Update)
}

// ToggleStatus PUT /api/v1/appointments/:id/status
func (h *AppointmentHandler) ToggleStatus(c *gin.Context) {
	callerUpdate(c, h.apptSvc.ToggleStatus)
}

// CompleteAppointment PUT /api/v1/appointments/:id/complete
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	callerUpdate(c, h.apptSvc.Complete)
}

// GetAppointment GET /api/v1/appointments/:id
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	getByID(c, h.apptSvc.GetByID)
}

// ListAppointments GET /api/v1/appointments
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	listPaged(c, h.apptSvc.List)
}

// ────────────────────── Assignment ──────────────────────

// Assign POST /api/v1/assignments
func (h *AppointmentHandler) Assign(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.AssignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.assignSvc.Assign(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// CancelAssign removes a pending assignment
// DELETE /api/v1/assignments/:id
func (h *AppointmentHandler) CancelAssign(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Cancel(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpdateWorkTime PUT /api/v1/assignments/:id/work-time
func (h *AppointmentHandler) UpdateWorkTime(c *gin.Context) {
	callerUpdate(c, h.assignSvc.UpdateWorkTime)
}

// CheckIn the caller arrives for the visit
// POST /api/v1/appointments/:id/check-in
func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	callerAction(c, h.assignSvc.CheckIn)
}

// StartRepair POST /api/v1/appointments/:id/start-repair
func (h *AppointmentHandler) StartRepair(c *gin.Context) {
	callerAction(c, h.assignSvc.StartRepair)
}

// FinishWork POST /api/v1/appointments/:id/finish
func (h *AppointmentHandler) FinishWork(c *gin.Context) {
	callerAction(c, h.assignSvc.FinishWork)
}

// SuggestTechnicians free technicians holding a technique for a window
// GET /api/v1/assignments/suggestions
func (h *AppointmentHandler) SuggestTechnicians(c *gin.Context) {
	var req dto.SuggestTechniciansRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.assignSvc.SuggestTechnicians(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// WorkOrders assignments of a technician
// GET /api/v1/technicians/:id/work-orders
func (h *AppointmentHandler) WorkOrders(c *gin.Context) {
	h.workOrders(c, c.Param("id"))
}

// MyWorkOrders GET /api/v1/technicians/me/work-orders
func (h *AppointmentHandler) MyWorkOrders(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	h.workOrders(c, caller.UserID)
}

func (h *AppointmentHandler) workOrders(c *gin.Context, technicianID string) {
	var req dto.WorkScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, err := h.assignSvc.ListByTechnician(c.Request.Context(), technicianID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// MyCalendar work orders of the caller as an .ics download
// GET /api/v1/technicians/me/calendar.ics
func (h *AppointmentHandler) MyCalendar(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.WorkScheduleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	data, err := h.assignSvc.ExportCalendar(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	attachment(c, "lich-lam-viec.ics", "text/calendar; charset=utf-8", data)
}
