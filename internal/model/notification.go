package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification in-app notification, maps to notifications
type Notification struct {
	NotificationID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string         `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           string         `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string         `gorm:"type:text;not null"                             json:"content"`
	Data           datatypes.JSON `gorm:"type:jsonb"                                     json:"data,omitempty"` // deep-link payload for the app
	IsRead         bool           `gorm:"not null;default:false"                         json:"is_read"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
