package model

import "time"

// CommonArea shared space of the building (lobby, gym, roof), maps to common_areas
type CommonArea struct {
	CommonAreaID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"common_area_id"`
	FloorID      *string      `gorm:"type:uuid"                                      json:"floor_id,omitempty"`
	Name         string       `gorm:"type:varchar(200);not null;uniqueIndex"         json:"name"`
	Location     string       `gorm:"type:varchar(200)"                              json:"location,omitempty"`
	Description  string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status       ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	Floor *Floor `gorm:"foreignKey:FloorID;references:FloorID" json:"floor,omitempty"`
}

func (CommonArea) TableName() string { return "common_areas" }

// CommonAreaObjectType category of equipment (elevator, pump), maps to common_area_object_types
type CommonAreaObjectType struct {
	CommonAreaObjectTypeID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"common_area_object_type_id"`
	TypeName               string       `gorm:"type:varchar(200);not null;uniqueIndex"         json:"type_name"`
	Description            string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status                 ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (CommonAreaObjectType) TableName() string { return "common_area_object_types" }

// CommonAreaObject piece of equipment in a common area, maps to common_area_objects
type CommonAreaObject struct {
	CommonAreaObjectID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"common_area_object_id"`
	CommonAreaID           string       `gorm:"type:uuid;not null;index"                       json:"common_area_id"`
	CommonAreaObjectTypeID string       `gorm:"type:uuid;not null;index"                       json:"common_area_object_type_id"`
	Name                   string       `gorm:"type:varchar(200);not null"                     json:"name"`
	Description            string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status                 ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	CommonArea *CommonArea           `gorm:"foreignKey:CommonAreaID;references:CommonAreaID"                     json:"common_area,omitempty"`
	ObjectType *CommonAreaObjectType `gorm:"foreignKey:CommonAreaObjectTypeID;references:CommonAreaObjectTypeID" json:"object_type,omitempty"`
}

func (CommonAreaObject) TableName() string { return "common_area_objects" }

// MaintenanceTask checklist step for an object type, maps to maintenance_tasks.
// TaskName and DisplayOrder are unique within a type.
type MaintenanceTask struct {
	MaintenanceTaskID        string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"maintenance_task_id"`
	CommonAreaObjectTypeID   string       `gorm:"type:uuid;not null;index"                       json:"common_area_object_type_id"`
	TaskName                 string       `gorm:"type:varchar(200);not null"                     json:"task_name"`
	TaskDescription          string       `gorm:"type:varchar(1000)"                             json:"task_description,omitempty"`
	RequiredTools            string       `gorm:"type:varchar(500)"                              json:"required_tools,omitempty"`
	DisplayOrder             int          `gorm:"not null"                                       json:"display_order"`
	EstimatedDurationMinutes int          `gorm:"not null"                                       json:"estimated_duration_minutes"`
	Status                   ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (MaintenanceTask) TableName() string { return "maintenance_tasks" }

// MaintenanceSchedule recurring maintenance plan of one object, maps to maintenance_schedules
type MaintenanceSchedule struct {
	MaintenanceScheduleID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"maintenance_schedule_id"`
	CommonAreaObjectID    string         `gorm:"type:uuid;not null;uniqueIndex"                 json:"common_area_object_id"`
	Description           string         `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	FrequencyInDays       int            `gorm:"not null"                                       json:"frequency_in_days"`
	NextScheduledDate     time.Time      `gorm:"type:date;not null"                             json:"next_scheduled_date"`
	TimePreference        TimePreference `gorm:"type:varchar(20);not null;default:'Anytime'"    json:"time_preference"`
	RequiredTechniqueID   *string        `gorm:"type:uuid"                                      json:"required_technique_id,omitempty"`
	RequiredTechnicians   int            `gorm:"not null;default:1"                             json:"required_technicians"`
	EstimatedDuration     float64        `gorm:"type:numeric(6,2);not null;default:0"           json:"estimated_duration"` // hours
	LastMaintenanceDate   *time.Time     `gorm:"type:date"                                      json:"last_maintenance_date,omitempty"`
	Status                ActiveStatus   `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	CommonAreaObject  *CommonAreaObject `gorm:"foreignKey:CommonAreaObjectID;references:CommonAreaObjectID" json:"common_area_object,omitempty"`
	RequiredTechnique *Technique        `gorm:"foreignKey:RequiredTechniqueID;references:TechniqueID"       json:"required_technique,omitempty"`
}

func (MaintenanceSchedule) TableName() string { return "maintenance_schedules" }

// MaintenanceScheduleTracking one audited field change, maps to maintenance_schedule_trackings (append-only)
type MaintenanceScheduleTracking struct {
	TrackingID            string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tracking_id"`
	MaintenanceScheduleID string    `gorm:"type:uuid;not null;index"                       json:"maintenance_schedule_id"`
	FieldName             string    `gorm:"type:varchar(100);not null"                     json:"field_name"`
	OldValue              string    `gorm:"type:varchar(500)"                              json:"old_value"`
	NewValue              string    `gorm:"type:varchar(500)"                              json:"new_value"`
	UpdatedBy             string    `gorm:"type:uuid;not null"                             json:"updated_by"`
	UpdatedAt             time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (MaintenanceScheduleTracking) TableName() string { return "maintenance_schedule_trackings" }
