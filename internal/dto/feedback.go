package dto

// CreateFeedbackRequest rating or reply on a repair request
type CreateFeedbackRequest struct {
	RepairRequestID  string  `json:"repair_request_id"  binding:"required,uuid"`
	ParentFeedbackID *string `json:"parent_feedback_id" binding:"omitempty,uuid"`
	Rating           int     `json:"rating"`
	Comment          string  `json:"comment"            binding:"omitempty,max=2000"`
}

// FeedbackResponse feedback node with its replies
type FeedbackResponse struct {
	ID               string             `json:"id"`
	RepairRequestID  string             `json:"repair_request_id"`
	UserID           string             `json:"user_id"`
	UserName         string             `json:"user_name,omitempty"`
	ParentFeedbackID *string            `json:"parent_feedback_id,omitempty"`
	Rating           int                `json:"rating"`
	Comment          string             `json:"comment,omitempty"`
	CreatedAt        string             `json:"created_at"`
	Replies          []FeedbackResponse `json:"replies,omitempty"`
}
