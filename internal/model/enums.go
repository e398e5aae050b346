package model

// Role account role
type Role string

const (
	RoleAdmin          Role = "Admin"
	RoleManager        Role = "Manager"
	RoleReceptionist   Role = "Receptionist"
	RoleTechnicianLead Role = "TechnicianLead"
	RoleTechnician     Role = "Technician"
	RoleResident       Role = "Resident"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleReceptionist, RoleTechnicianLead, RoleTechnician, RoleResident:
		return true
	}
	return false
}

// ActiveStatus lifecycle flag used by most catalog entities
type ActiveStatus string

const (
	StatusActive   ActiveStatus = "Active"
	StatusInactive ActiveStatus = "Inactive"
)

// ApartmentMemberRole relation of a resident to an apartment
type ApartmentMemberRole string

const (
	MemberOwner  ApartmentMemberRole = "Owner"
	MemberFamily ApartmentMemberRole = "Family"
	MemberTenant ApartmentMemberRole = "Tenant"
)

// FaultOwner party responsible for a fault found during inspection
type FaultOwner string

const (
	FaultResident   FaultOwner = "Resident"
	FaultBuilding   FaultOwner = "Building"
	FaultThirdParty FaultOwner = "ThirdParty"
)

// SolutionType who carries out the repair
type SolutionType string

const (
	SolutionInternal  SolutionType = "Internal"
	SolutionOutsource SolutionType = "Outsource"
)

// ReportStatus status of inspection and repair reports
type ReportStatus string

const (
	ReportPending  ReportStatus = "Pending"
	ReportApproved ReportStatus = "Approved"
	ReportRejected ReportStatus = "Rejected"
)

// MessageType chat message content type
type MessageType string

const (
	MessageText   MessageType = "Text"
	MessageImage  MessageType = "Image"
	MessageSystem MessageType = "System"
)

// MessageStatus delivery state; only moves forward
type MessageStatus string

const (
	MessageSent      MessageStatus = "Sent"
	MessageDelivered MessageStatus = "Delivered"
	MessageRead      MessageStatus = "Read"
)

// Rank orders message statuses
func (s MessageStatus) Rank() int {
	switch s {
	case MessageSent:
		return 1
	case MessageDelivered:
		return 2
	case MessageRead:
		return 3
	}
	return 0
}

// MediaEntity owner type of a media row
type MediaEntity string

const (
	MediaRepairRequest    MediaEntity = "RepairRequest"
	MediaInspectionReport MediaEntity = "InspectionReport"
	MediaRepairReport     MediaEntity = "RepairReport"
	MediaContract         MediaEntity = "Contract"
	MediaMessage          MediaEntity = "Message"
)

// TimePreference preferred time of day for maintenance visits
type TimePreference string

const (
	TimeMorning   TimePreference = "Morning"
	TimeAfternoon TimePreference = "Afternoon"
	TimeEvening   TimePreference = "Evening"
	TimeAnytime   TimePreference = "Anytime"
)

// Valid reports whether p is a known preference
func (p TimePreference) Valid() bool {
	switch p {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeAnytime:
		return true
	}
	return false
}

// StartHour first hour of the preferred window
func (p TimePreference) StartHour() int {
	switch p {
	case TimeAfternoon:
		return 13
	case TimeEvening:
		return 18
	default:
		return 8
	}
}
