package dto

import "time"

// CreateRepairRequest request reported for an apartment
type CreateRepairRequest struct {
	ApartmentID string        `json:"apartment_id" form:"apartment_id" binding:"required,uuid"`
	IssueID     string        `json:"issue_id"     form:"issue_id"     binding:"required,uuid"`
	Object      string        `json:"object"       form:"object"       binding:"required,notblank,max=200"`
	Description string        `json:"description"  form:"description"  binding:"omitempty,max=2000"`
	StartTime   time.Time     `json:"start_time"   form:"start_time"   binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Images      []*FileUpload `json:"-"            form:"-"`
}

// CreateScheduledRequestRequest maintenance request generated from a schedule
type CreateScheduledRequestRequest struct {
	MaintenanceScheduleID string `json:"maintenance_schedule_id" binding:"required,uuid"`
	Note                  string `json:"note"                    binding:"omitempty,max=1000"`
}

// ToggleRequestStatusRequest repair request transition
type ToggleRequestStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Approved Rejected InProgress Completed Cancelled"`
	Note   string `json:"note"   binding:"omitempty,max=1000"`
}

// RepairRequestListRequest repair request list query
type RepairRequestListRequest struct {
	PaginationRequest
	DateRange
	Keyword     string `form:"keyword"      binding:"omitempty,max=50"`
	ApartmentID string `form:"apartment_id" binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,oneof=Pending Approved Rejected InProgress Completed Cancelled"`
	Emergency   *bool  `form:"emergency"`
}

// TrackingResponse one status history row
type TrackingResponse struct {
	Status    string `json:"status"`
	Note      string `json:"note,omitempty"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}

// RepairRequestResponse repair request with its current status
type RepairRequestResponse struct {
	ID                    string                `json:"id"`
	ApartmentID           *string               `json:"apartment_id,omitempty"`
	Room                  string                `json:"room,omitempty"`
	IssueID               *string               `json:"issue_id,omitempty"`
	IssueName             string                `json:"issue_name,omitempty"`
	MaintenanceScheduleID *string               `json:"maintenance_schedule_id,omitempty"`
	ParentRequestID       *string               `json:"parent_request_id,omitempty"`
	UserID                string                `json:"user_id"`
	Object                string                `json:"object"`
	Description           string                `json:"description,omitempty"`
	IsEmergency           bool                  `json:"is_emergency"`
	Status                string                `json:"status"`
	CreatedAt             string                `json:"created_at"`
	Trackings             []TrackingResponse    `json:"trackings,omitempty"`
	Appointments          []AppointmentResponse `json:"appointments,omitempty"`
	Media                 []MediaResponse       `json:"media,omitempty"`
}

// RepairRequestCreatedResponse created request with technicians free for its first visit
type RepairRequestCreatedResponse struct {
	RepairRequestResponse
	SuggestedTechnicians []TechnicianSuggestion `json:"suggested_technicians"`
}

// ExportRepairRequestsRequest export filter; every matching request is written
type ExportRepairRequestsRequest struct {
	DateRange
	ApartmentID string `form:"apartment_id" binding:"omitempty,uuid"`
	Status      string `form:"status"       binding:"omitempty,oneof=Pending Approved Rejected InProgress Completed Cancelled"`
	Emergency   *bool  `form:"emergency"`
}
