package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// FeedbackHandler ratings and replies on repair requests
type FeedbackHandler struct {
	feedbackSvc service.FeedbackService
}

// NewFeedbackHandler creates a FeedbackHandler
func NewFeedbackHandler(feedbackSvc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// CreateFeedback POST /api/v1/feedback
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	fb, err := h.feedbackSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, fb)
}

// DeleteFeedback removes the whole reply subtree
// DELETE /api/v1/feedback/:id
func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.feedbackSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListByRequest threaded feedback of a repair request
// GET /api/v1/repair-requests/:id/feedback
func (h *FeedbackHandler) ListByRequest(c *gin.Context) {
	thread, err := h.feedbackSvc.ListByRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": thread})
}
