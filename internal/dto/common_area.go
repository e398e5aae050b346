package dto

import "time"

// ── common areas ──

// CommonAreaRequest common area create/update
type CommonAreaRequest struct {
	FloorID     *string `json:"floor_id"    binding:"omitempty,uuid"`
	Name        string  `json:"name"        binding:"required,notblank,max=200"`
	Location    string  `json:"location"    binding:"omitempty,max=200"`
	Description string  `json:"description" binding:"omitempty,max=500"`
}

// CommonAreaResponse common area
type CommonAreaResponse struct {
	ID          string  `json:"id"`
	FloorID     *string `json:"floor_id,omitempty"`
	Name        string  `json:"name"`
	Location    string  `json:"location,omitempty"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status"`
}

// ── object types ──

// ObjectTypeRequest equipment type create/update
type ObjectTypeRequest struct {
	TypeName    string `json:"type_name"   binding:"required,notblank,max=200"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// ObjectTypeResponse equipment type
type ObjectTypeResponse struct {
	ID          string `json:"id"`
	TypeName    string `json:"type_name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	TaskCount   int64  `json:"task_count"`
}

// ── objects ──

// CommonAreaObjectRequest equipment create/update
type CommonAreaObjectRequest struct {
	CommonAreaID string `json:"common_area_id" binding:"required,uuid"`
	TypeID       string `json:"type_id"        binding:"required,uuid"`
	Name         string `json:"name"           binding:"required,notblank,max=200"`
	Description  string `json:"description"    binding:"omitempty,max=500"`
}

// CommonAreaObjectListRequest equipment list query
type CommonAreaObjectListRequest struct {
	CatalogListRequest
	CommonAreaID string `form:"common_area_id" binding:"omitempty,uuid"`
	TypeID       string `form:"type_id"        binding:"omitempty,uuid"`
}

// CommonAreaObjectResponse equipment
type CommonAreaObjectResponse struct {
	ID             string `json:"id"`
	CommonAreaID   string `json:"common_area_id"`
	CommonAreaName string `json:"common_area_name,omitempty"`
	TypeID         string `json:"type_id"`
	TypeName       string `json:"type_name,omitempty"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Status         string `json:"status"`
}

// ── maintenance tasks ──

// MaintenanceTaskRequest checklist step create/update
type MaintenanceTaskRequest struct {
	TypeID                   string `json:"type_id"                    binding:"required,uuid"`
	TaskName                 string `json:"task_name"                  binding:"required,notblank,max=200"`
	TaskDescription          string `json:"task_description"           binding:"omitempty,max=1000"`
	RequiredTools            string `json:"required_tools"             binding:"omitempty,max=500"`
	DisplayOrder             int    `json:"display_order"              binding:"min=1"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes"`
}

// MaintenanceTaskResponse checklist step
type MaintenanceTaskResponse struct {
	ID                       string `json:"id"`
	TypeID                   string `json:"type_id"`
	TaskName                 string `json:"task_name"`
	TaskDescription          string `json:"task_description,omitempty"`
	RequiredTools            string `json:"required_tools,omitempty"`
	DisplayOrder             int    `json:"display_order"`
	EstimatedDurationMinutes int    `json:"estimated_duration_minutes"`
	Status                   string `json:"status"`
}

// ── maintenance schedules ──

// CreateScheduleRequest maintenance plan creation
type CreateScheduleRequest struct {
	CommonAreaObjectID  string    `json:"common_area_object_id" binding:"required,uuid"`
	Description         string    `json:"description"           binding:"omitempty,max=500"`
	FrequencyInDays     int       `json:"frequency_in_days"`
	NextScheduledDate   time.Time `json:"next_scheduled_date"   binding:"required"`
	TimePreference      string    `json:"time_preference"       binding:"omitempty,oneof=Morning Afternoon Evening Anytime"`
	RequiredTechniqueID *string   `json:"required_technique_id" binding:"omitempty,uuid"`
	RequiredTechnicians int       `json:"required_technicians"`
}

// UpdateScheduleRequest maintenance plan change; nil fields stay untouched
type UpdateScheduleRequest struct {
	Description         *string    `json:"description"           binding:"omitempty,max=500"`
	FrequencyInDays     *int       `json:"frequency_in_days"`
	NextScheduledDate   *time.Time `json:"next_scheduled_date"`
	TimePreference      *string    `json:"time_preference"       binding:"omitempty,oneof=Morning Afternoon Evening Anytime"`
	RequiredTechniqueID *string    `json:"required_technique_id" binding:"omitempty,uuid"`
	RequiredTechnicians *int       `json:"required_technicians"`
}

// ScheduleListRequest maintenance plan list query
type ScheduleListRequest struct {
	PaginationRequest
	Status    string     `form:"status"     binding:"omitempty,oneof=Active Inactive"`
	DueBefore *time.Time `form:"due_before" time_format:"2006-01-02"`
}

// ScheduleTrackingResponse one audited field change
type ScheduleTrackingResponse struct {
	FieldName string `json:"field_name"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	UpdatedBy string `json:"updated_by"`
	UpdatedAt string `json:"updated_at"`
}

// ScheduleResponse maintenance plan
type ScheduleResponse struct {
	ID                  string                     `json:"id"`
	CommonAreaObjectID  string                     `json:"common_area_object_id"`
	ObjectName          string                     `json:"object_name,omitempty"`
	Description         string                     `json:"description,omitempty"`
	FrequencyInDays     int                        `json:"frequency_in_days"`
	NextScheduledDate   string                     `json:"next_scheduled_date"`
	TimePreference      string                     `json:"time_preference"`
	RequiredTechniqueID *string                    `json:"required_technique_id,omitempty"`
	RequiredTechnicians int                        `json:"required_technicians"`
	EstimatedDuration   float64                    `json:"estimated_duration"`
	LastMaintenanceDate *string                    `json:"last_maintenance_date,omitempty"`
	Status              string                     `json:"status"`
	History             []ScheduleTrackingResponse `json:"history,omitempty"`
}
