package dto

import "time"

// ── appointments ──

// UpdateAppointmentRequest appointment change; nil fields stay untouched
type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Note      *string    `json:"note" binding:"omitempty,max=1000"`
}

// ToggleAppointmentStatusRequest appointment transition
type ToggleAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Pending Assigned Confirmed InVisit AwaitingIRApproval InRepair Completed Cancelled"`
	Note   string `json:"note"   binding:"omitempty,max=1000"`
}

// CompleteAppointmentRequest closes a visit
type CompleteAppointmentRequest struct {
	Note            string     `json:"note"              binding:"omitempty,max=1000"`
	CreateNext      bool       `json:"create_next"`     // schedule a follow-up visit
	NextStartTime   *time.Time `json:"next_start_time"` // required with CreateNext
	NextEndTime     *time.Time `json:"next_end_time"`
	CompleteRequest bool       `json:"complete_request"` // also complete the repair request
}

// AppointmentListRequest appointment list query
type AppointmentListRequest struct {
	PaginationRequest
	DateRange
	RepairRequestID string `form:"repair_request_id" binding:"omitempty,uuid"`
	TechnicianID    string `form:"technician_id"     binding:"omitempty,uuid"`
	Status          string `form:"status"            binding:"omitempty,oneof=Pending Assigned Confirmed InVisit AwaitingIRApproval InRepair Completed Cancelled"`
}

// AppointmentResponse appointment with its current status
type AppointmentResponse struct {
	ID              string             `json:"id"`
	RepairRequestID string             `json:"repair_request_id"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	Note            string             `json:"note,omitempty"`
	Status          string             `json:"status"`
	Assigns         []AssignResponse   `json:"assigns,omitempty"`
	Trackings       []TrackingResponse `json:"trackings,omitempty"`
}

// ── work orders ──

// AssignTechnicianRequest technician assignment
type AssignTechnicianRequest struct {
	AppointmentID string `json:"appointment_id" binding:"required,uuid"`
	TechnicianID  string `json:"technician_id"  binding:"required,uuid"`
}

// UpdateWorkTimeRequest estimated window change by the assigned technician
type UpdateWorkTimeRequest struct {
	EstimatedStartTime time.Time `json:"estimated_start_time" binding:"required"`
	EstimatedEndTime   time.Time `json:"estimated_end_time"   binding:"required"`
}

// AssignResponse work order
type AssignResponse struct {
	ID                 string  `json:"id"`
	AppointmentID      string  `json:"appointment_id"`
	TechnicianID       string  `json:"technician_id"`
	TechnicianName     string  `json:"technician_name,omitempty"`
	EstimatedStartTime string  `json:"estimated_start_time"`
	EstimatedEndTime   string  `json:"estimated_end_time"`
	ActualStartTime    *string `json:"actual_start_time,omitempty"`
	ActualEndTime      *string `json:"actual_end_time,omitempty"`
	Status             string  `json:"status"`
}

// SuggestTechniciansRequest availability query
type SuggestTechniciansRequest struct {
	TechniqueID string    `form:"technique_id" binding:"required,uuid"`
	StartTime   time.Time `form:"start_time"   binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	EndTime     time.Time `form:"end_time"     binding:"required" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit       int       `form:"limit"        binding:"omitempty,min=1,max=50"`
}

// TechnicianSuggestion free technician and the number of visits already planned that day
type TechnicianSuggestion struct {
	TechnicianID string `json:"technician_id"`
	FullName     string `json:"full_name"`
	PhoneNumber  string `json:"phone_number"`
	Workload     int64  `json:"workload"`
}

// WorkScheduleRequest technician schedule window
type WorkScheduleRequest struct {
	DateRange
}
