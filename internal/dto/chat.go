package dto

// ── conversations ──

// CreateConversationRequest chat thread creation; the caller is always a participant
type CreateConversationRequest struct {
	Title          string   `json:"title"           binding:"omitempty,max=200"`
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1,dive,uuid"`
}

// ParticipantResponse member of a conversation
type ParticipantResponse struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	IsMuted  bool   `json:"is_muted"`
}

// ConversationResponse conversation with preview data
type ConversationResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title,omitempty"`
	Participants []ParticipantResponse `json:"participants"`
	LastMessage  *MessageResponse      `json:"last_message,omitempty"`
	UnreadCount  int64                 `json:"unread_count"`
	UpdatedAt    string                `json:"updated_at"`
}

// ── messages ──

// SendMessageRequest chat message
type SendMessageRequest struct {
	Type             string      `json:"type"                form:"type"                binding:"required,oneof=Text Image"`
	Content          string      `json:"content"             form:"content"             binding:"omitempty,max=4000"`
	ReplyToMessageID *string     `json:"reply_to_message_id" form:"reply_to_message_id" binding:"omitempty,uuid"`
	File             *FileUpload `json:"-"                   form:"-"`
}

// ReplyPreview short view of the message being answered
type ReplyPreview struct {
	ID       string `json:"id"`
	SenderID string `json:"sender_id"`
	Type     string `json:"type"`
	Content  string `json:"content"`
}

// MessageResponse chat message
type MessageResponse struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"sender_id"`
	Type           string        `json:"type"`
	Content        string        `json:"content"`
	Status         string        `json:"status"`
	ReplyTo        *ReplyPreview `json:"reply_to,omitempty"`
	CreatedAt      string        `json:"created_at"`
}

// MarkMessagesResponse number of messages moved forward
type MarkMessagesResponse struct {
	Updated int64 `json:"updated"`
}
