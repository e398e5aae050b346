package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// ChatHandler conversations and messages
type ChatHandler struct {
	convSvc service.ConversationService
	msgSvc  service.MessageService
}

// NewChatHandler creates a ChatHandler
func NewChatHandler(convSvc service.ConversationService, msgSvc service.MessageService) *ChatHandler {
	return &ChatHandler{convSvc: convSvc, msgSvc: msgSvc}
}

// CreateConversation POST /api/v1/conversations
func (h *ChatHandler) CreateConversation(c *gin.Context) {
	callerCreate(c, h.convSvc.Create)
}

// GetConversation GET /api/v1/conversations/:id
func (h *ChatHandler) GetConversation(c *gin.Context) {
	callerAction(c, h.convSvc.GetByID)
}

// ListConversations GET /api/v1/conversations
func (h *ChatHandler) ListConversations(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.convSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// SendMessage JSON for text, multipart with "file" for images
// POST /api/v1/conversations/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	file, err := formFile(c, "file")
	if err != nil {
		handleError(c, err)
		return
	}
	req.File = file

	msg, err := h.msgSvc.Send(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, msg)
}

// ListMessages newest first
// GET /api/v1/conversations/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.msgSvc.List(c.Request.Context(), caller, c.Param("id"), page)
	if err != nil {
		handleError(c, err)
		return
	}

	pageOK(c, list, total, page)
}

// MarkDelivered PUT /api/v1/conversations/:id/delivered
func (h *ChatHandler) MarkDelivered(c *gin.Context) {
	callerAction(c, h.msgSvc.MarkDelivered)
}

// MarkRead PUT /api/v1/conversations/:id/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	callerAction(c, h.msgSvc.MarkRead)
}
