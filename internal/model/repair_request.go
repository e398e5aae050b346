package model

import "time"

// RepairRequest problem reported for an apartment, or generated from a maintenance schedule.
// Maps to repair_requests. Its status is the latest RequestTracking row.
type RepairRequest struct {
	RepairRequestID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"repair_request_id"`
	ApartmentID           *string `gorm:"type:uuid;index"                                json:"apartment_id,omitempty"`
	IssueID               *string `gorm:"type:uuid"                                      json:"issue_id,omitempty"`
	MaintenanceScheduleID *string `gorm:"type:uuid"                                      json:"maintenance_schedule_id,omitempty"`
	ParentRequestID       *string `gorm:"type:uuid"                                      json:"parent_request_id,omitempty"`
	UserID                string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Object                string  `gorm:"type:varchar(200);not null"                     json:"object"`
	Description           string  `gorm:"type:varchar(2000)"                             json:"description,omitempty"`
	IsEmergency           bool    `gorm:"not null;default:false"                         json:"is_emergency"`
	BaseModel

	Apartment *Apartment `gorm:"foreignKey:ApartmentID;references:ApartmentID" json:"apartment,omitempty"`
	Issue     *Issue     `gorm:"foreignKey:IssueID;references:IssueID"         json:"issue,omitempty"`
}

func (RepairRequest) TableName() string { return "repair_requests" }

// RequestTracking status history of a repair request, maps to request_trackings (append-only)
type RequestTracking struct {
	RequestTrackingID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_tracking_id"`
	RepairRequestID   string        `gorm:"type:uuid;not null;index"                       json:"repair_request_id"`
	Status            RequestStatus `gorm:"type:varchar(20);not null"                      json:"status"`
	Note              string        `gorm:"type:varchar(1000)"                             json:"note,omitempty"`
	UpdatedBy         string        `gorm:"type:uuid;not null"                             json:"updated_by"`
	UpdatedAt         time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (RequestTracking) TableName() string { return "request_trackings" }
