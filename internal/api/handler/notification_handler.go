package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// NotificationHandler in-app inbox of the current user
type NotificationHandler struct {
	notiSvc service.NotificationService
}

// NewNotificationHandler creates a NotificationHandler
func NewNotificationHandler(notiSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notiSvc: notiSvc}
}

// ListMine GET /api/v1/notifications
func (h *NotificationHandler) ListMine(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.notiSvc.ListMine(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	pageOK(c, list, total, req.PaginationRequest)
}

// UnreadCount GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	n, err := h.notiSvc.UnreadCount(c.Request.Context(), caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"count": n})
}

// MarkRead PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.notiSvc.MarkRead(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// MarkAllRead PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	n, err := h.notiSvc.MarkAllRead(c.Request.Context(), caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"updated": n})
}
