package model

import "time"

// InspectionReport technician's diagnosis during a visit, maps to inspection_reports
type InspectionReport struct {
	InspectionReportID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"inspection_report_id"`
	AppointmentID      string       `gorm:"type:uuid;not null;index"                       json:"appointment_id"`
	UserID             string       `gorm:"type:uuid;not null"                             json:"user_id"`
	FaultOwner         FaultOwner   `gorm:"type:varchar(20);not null"                      json:"fault_owner"`
	SolutionType       SolutionType `gorm:"type:varchar(20);not null"                      json:"solution_type"`
	Description        string       `gorm:"type:varchar(2000);not null"                    json:"description"`
	Solution           string       `gorm:"type:varchar(2000)"                             json:"solution,omitempty"`
	Status             ReportStatus `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	BaseModel
}

func (InspectionReport) TableName() string { return "inspection_reports" }

// RepairReport technician's record of the repair work, maps to repair_reports
type RepairReport struct {
	RepairReportID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"repair_report_id"`
	AppointmentID  string       `gorm:"type:uuid;not null;uniqueIndex"                 json:"appointment_id"`
	UserID         string       `gorm:"type:uuid;not null"                             json:"user_id"`
	Description    string       `gorm:"type:varchar(2000);not null"                    json:"description"`
	Status         ReportStatus `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	BaseModel
}

func (RepairReport) TableName() string { return "repair_reports" }

// ReportApproval one step of the approval chain of a report, maps to report_approvals.
// Exactly one of InspectionReportID and RepairReportID is set.
type ReportApproval struct {
	ReportApprovalID   string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_approval_id"`
	InspectionReportID *string      `gorm:"type:uuid;index"                                json:"inspection_report_id,omitempty"`
	RepairReportID     *string      `gorm:"type:uuid;index"                                json:"repair_report_id,omitempty"`
	Role               Role         `gorm:"type:varchar(20);not null"                      json:"role"` // role expected to decide
	UserID             *string      `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	Status             ReportStatus `gorm:"type:varchar(20);not null;default:'Pending'"    json:"status"`
	Comment            string       `gorm:"type:varchar(1000)"                             json:"comment,omitempty"`
	DecidedAt          *time.Time   `json:"decided_at,omitempty"`
	BaseModel
}

func (ReportApproval) TableName() string { return "report_approvals" }

// Ref the report this approval belongs to
func (a *ReportApproval) Ref() ReportRef {
	if a.InspectionReportID != nil {
		return InspectionReportRef(*a.InspectionReportID)
	}
	if a.RepairReportID != nil {
		return RepairReportRef(*a.RepairReportID)
	}
	return nil
}

// ── report reference ──

// ReportKind discriminates ReportRef
type ReportKind string

const (
	ReportKindInspection ReportKind = "Inspection"
	ReportKindRepair     ReportKind = "Repair"
)

// ReportRef points at either an inspection report or a repair report.
// The only implementations are InspectionReportRef and RepairReportRef.
type ReportRef interface {
	ReportID() string
	Kind() ReportKind
	isReportRef()
}

// InspectionReportRef reference to an inspection report
type InspectionReportRef string

func (r InspectionReportRef) ReportID() string { return string(r) }
func (InspectionReportRef) Kind() ReportKind   { return ReportKindInspection }
func (InspectionReportRef) isReportRef()       {}

// RepairReportRef reference to a repair report
type RepairReportRef string

func (r RepairReportRef) ReportID() string { return string(r) }
func (RepairReportRef) Kind() ReportKind   { return ReportKindRepair }
func (RepairReportRef) isReportRef()       {}

// Attach sets the matching foreign key on a for ref
func (a *ReportApproval) Attach(ref ReportRef) {
	id := ref.ReportID()
	switch ref.(type) {
	case InspectionReportRef:
		a.InspectionReportID = &id
		a.RepairReportID = nil
	case RepairReportRef:
		a.RepairReportID = &id
		a.InspectionReportID = nil
	}
}

var approvalChain = []Role{RoleTechnician, RoleTechnicianLead, RoleManager}

// NextApprover the role a report escalates to after current
func NextApprover(current Role) (Role, bool) {
	for i, r := range approvalChain {
		if r == current && i+1 < len(approvalChain) {
			return approvalChain[i+1], true
		}
	}
	return "", false
}
