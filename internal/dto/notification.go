package dto

// NotificationMessage content of a notification before it is addressed
type NotificationMessage struct {
	Type    string
	Title   string
	Content string
	Data    map[string]string // deep-link payload
}

// NotificationListRequest notification list query
type NotificationListRequest struct {
	PaginationRequest
	UnreadOnly bool `form:"unread_only"`
}

// NotificationResponse notification
type NotificationResponse struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Data      map[string]string `json:"data,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt string            `json:"created_at"`
}
