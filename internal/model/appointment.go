package model

import "time"

// Appointment scheduled visit for a repair request, maps to appointments.
// Its status is the latest AppointmentTracking row.
type Appointment struct {
	AppointmentID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_id"`
	RepairRequestID string    `gorm:"type:uuid;not null;index"                       json:"repair_request_id"`
	StartTime       time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime         time.Time `gorm:"not null"                                       json:"end_time"`
	Note            string    `gorm:"type:varchar(1000)"                             json:"note,omitempty"`
	BaseModel

	RepairRequest *RepairRequest `gorm:"foreignKey:RepairRequestID;references:RepairRequestID" json:"repair_request,omitempty"`
}

func (Appointment) TableName() string { return "appointments" }

// AppointmentTracking status history of an appointment, maps to appointment_trackings (append-only)
type AppointmentTracking struct {
	AppointmentTrackingID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_tracking_id"`
	AppointmentID         string            `gorm:"type:uuid;not null;index"                       json:"appointment_id"`
	Status                AppointmentStatus `gorm:"type:varchar(30);not null"                      json:"status"`
	Note                  string            `gorm:"type:varchar(1000)"                             json:"note,omitempty"`
	UpdatedBy             string            `gorm:"type:uuid;not null"                             json:"updated_by"`
	UpdatedAt             time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (AppointmentTracking) TableName() string { return "appointment_trackings" }

// AppointmentAssign work order of one technician on one appointment, maps to appointment_assigns
type AppointmentAssign struct {
	AppointmentAssignID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"appointment_assign_id"`
	AppointmentID       string          `gorm:"type:uuid;not null;index"                       json:"appointment_id"`
	TechnicianID        string          `gorm:"type:uuid;not null;index"                       json:"technician_id"`
	EstimatedStartTime  time.Time       `gorm:"not null"                                       json:"estimated_start_time"`
	EstimatedEndTime    time.Time       `gorm:"not null"                                       json:"estimated_end_time"`
	ActualStartTime     *time.Time      `json:"actual_start_time,omitempty"`
	ActualEndTime       *time.Time      `json:"actual_end_time,omitempty"`
	Status              WorkOrderStatus `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	BaseModel

	Technician *User `gorm:"foreignKey:TechnicianID;references:UserID" json:"technician,omitempty"`
}

func (AppointmentAssign) TableName() string { return "appointment_assigns" }
