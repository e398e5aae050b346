package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// CommonAreaHandler common areas, their objects and object types
type CommonAreaHandler struct {
	areaSvc   service.CommonAreaService
	typeSvc   service.ObjectTypeService
	objectSvc service.CommonAreaObjectService
}

// NewCommonAreaHandler creates a CommonAreaHandler
func NewCommonAreaHandler(areaSvc service.CommonAreaService, typeSvc service.ObjectTypeService, objectSvc service.CommonAreaObjectService) *CommonAreaHandler {
	return &CommonAreaHandler{areaSvc: areaSvc, typeSvc: typeSvc, objectSvc: objectSvc}
}

// ── areas ──

// CreateArea POST /api/v1/common-areas
func (h *CommonAreaHandler) CreateArea(c *gin.Context) { callerCreate(c, h.areaSvc.Create) }

// UpdateArea PUT /api/v1/common-areas/:id
func (h *CommonAreaHandler) UpdateArea(c *gin.Context) { callerUpdate(c, h.areaSvc.Update) }

// ActivateArea PUT /api/v1/common-areas/:id/activate
func (h *CommonAreaHandler) ActivateArea(c *gin.Context) { callerAction(c, h.areaSvc.Activate) }

// DeactivateArea PUT /api/v1/common-areas/:id/deactivate
func (h *CommonAreaHandler) DeactivateArea(c *gin.Context) { callerAction(c, h.areaSvc.Deactivate) }

// GetArea GET /api/v1/common-areas/:id
func (h *CommonAreaHandler) GetArea(c *gin.Context) { getByID(c, h.areaSvc.GetByID) }

// ListAreas GET /api/v1/common-areas
func (h *CommonAreaHandler) ListAreas(c *gin.Context) { listPaged(c, h.areaSvc.List) }

// ── object types ──

// CreateType POST /api/v1/object-types
func (h *CommonAreaHandler) CreateType(c *gin.Context) { callerCreate(c, h.typeSvc.Create) }

// UpdateType PUT /api/v1/object-types/:id
func (h *CommonAreaHandler) UpdateType(c *gin.Context) { callerUpdate(c, h.typeSvc.Update) }

// DeleteType DELETE /api/v1/object-types/:id
func (h *CommonAreaHandler) DeleteType(c *gin.Context) { callerAction(c, h.typeSvc.Delete) }

// ActivateType PUT /api/v1/object-types/:id/activate
func (h *CommonAreaHandler) ActivateType(c *gin.Context) { callerAction(c, h.typeSvc.Activate) }

// DeactivateType PUT /api/v1/object-types/:id/deactivate
func (h *CommonAreaHandler) DeactivateType(c *gin.Context) { callerAction(c, h.typeSvc.Deactivate) }

// GetType GET /api/v1/object-types/:id
func (h *CommonAreaHandler) GetType(c *gin.Context) { getByID(c, h.typeSvc.GetByID) }

// ListTypes GET /api/v1/object-types
func (h *CommonAreaHandler) ListTypes(c *gin.Context) { listPaged(c, h.typeSvc.List) }

// ── objects ──

// CreateObject POST /api/v1/common-area-objects
func (h *CommonAreaHandler) CreateObject(c *gin.Context) { callerCreate(c, h.objectSvc.Create) }

// UpdateObject PUT /api/v1/common-area-objects/:id
func (h *CommonAreaHandler) UpdateObject(c *gin.Context) { callerUpdate(c, h.objectSvc.Update) }

// ActivateObject PUT /api/v1/common-area-objects/:id/activate
func (h *CommonAreaHandler) ActivateObject(c *gin.Context) { callerAction(c, h.objectSvc.Activate) }

// DeactivateObject stops the object's maintenance schedule as well
// PUT /api/v1/common-area-objects/:id/deactivate
func (h *CommonAreaHandler) DeactivateObject(c *gin.Context) {
	callerAction(c, h.objectSvc.Deactivate)
}

// GetObject GET /api/v1/common-area-objects/:id
func (h *CommonAreaHandler) GetObject(c *gin.Context) { getByID(c, h.objectSvc.GetByID) }

// ListObjects GET /api/v1/common-area-objects
func (h *CommonAreaHandler) ListObjects(c *gin.Context) { listPaged(c, h.objectSvc.List) }

// ────────────────────── Maintenance ──────────────────────

// MaintenanceHandler checklist tasks and maintenance schedules
type MaintenanceHandler struct {
	taskSvc     service.MaintenanceTaskService
	scheduleSvc service.MaintenanceScheduleService
}

// NewMaintenanceHandler creates a MaintenanceHandler
func NewMaintenanceHandler(taskSvc service.MaintenanceTaskService, scheduleSvc service.MaintenanceScheduleService) *MaintenanceHandler {
	return &MaintenanceHandler{taskSvc: taskSvc, scheduleSvc: scheduleSvc}
}

// CreateTask POST /api/v1/maintenance-tasks
func (h *MaintenanceHandler) CreateTask(c *gin.Context) { callerCreate(c, h.taskSvc.Create) }

// UpdateTask PUT /api/v1/maintenance-tasks/:id
func (h *MaintenanceHandler) UpdateTask(c *gin.Context) { callerUpdate(c, h.taskSvc.Update) }

// DeleteTask DELETE /api/v1/maintenance-tasks/:id
func (h *MaintenanceHandler) DeleteTask(c *gin.Context) { callerAction(c, h.taskSvc.Delete) }

// GetTask GET /api/v1/maintenance-tasks/:id
func (h *MaintenanceHandler) GetTask(c *gin.Context) { getByID(c, h.taskSvc.GetByID) }

// ListTasksByType checklist of an object type in display order
// GET /api/v1/object-types/:id/tasks
func (h *MaintenanceHandler) ListTasksByType(c *gin.Context) {
	tasks, err := h.taskSvc.ListByType(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": tasks})
}

// CreateSchedule POST /api/v1/maintenance-schedules
func (h *MaintenanceHandler) CreateSchedule(c *gin.Context) { callerCreate(c, h.scheduleSvc.Create) }

// UpdateSchedule PUT /api/v1/maintenance-schedules/:id
func (h *MaintenanceHandler) UpdateSchedule(c *gin.Context) { callerUpdate(c, h.scheduleSvc.Update) }

// ActivateSchedule PUT /api/v1/maintenance-schedules/:id/activate
func (h *MaintenanceHandler) ActivateSchedule(c *gin.Context) {
	callerAction(c, h.scheduleSvc.Activate)
}

// DeactivateSchedule PUT /api/v1/maintenance-schedules/:id/deactivate
func (h *MaintenanceHandler) DeactivateSchedule(c *gin.Context) {
	callerAction(c, h.scheduleSvc.Deactivate)
}

// GetSchedule GET /api/v1/maintenance-schedules/:id
func (h *MaintenanceHandler) GetSchedule(c *gin.Context) { getByID(c, h.scheduleSvc.GetByID) }

// ListSchedules GET /api/v1/maintenance-schedules
func (h *MaintenanceHandler) ListSchedules(c *gin.Context) { listPaged(c, h.scheduleSvc.List) }
