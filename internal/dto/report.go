package dto

// ── inspection reports ──

// CreateInspectionReportRequest diagnosis written during a visit
type CreateInspectionReportRequest struct {
	AppointmentID string        `json:"appointment_id" form:"appointment_id" binding:"required,uuid"`
	FaultOwner    string        `json:"fault_owner"    form:"fault_owner"    binding:"required,oneof=Resident Building ThirdParty"`
	SolutionType  string        `json:"solution_type"  form:"solution_type"  binding:"required,oneof=Internal Outsource"`
	Description   string        `json:"description"    form:"description"    binding:"required,notblank,max=2000"`
	Solution      string        `json:"solution"       form:"solution"       binding:"omitempty,max=2000"`
	Files         []*FileUpload `json:"-"              form:"-"`
}

// UpdateInspectionReportRequest diagnosis change; nil fields stay untouched
type UpdateInspectionReportRequest struct {
	FaultOwner   *string `json:"fault_owner"   binding:"omitempty,oneof=Resident Building ThirdParty"`
	SolutionType *string `json:"solution_type" binding:"omitempty,oneof=Internal Outsource"`
	Description  *string `json:"description"   binding:"omitempty,notblank,max=2000"`
	Solution     *string `json:"solution"      binding:"omitempty,max=2000"`
}

// InspectionReportResponse inspection report; the zero value stands for a missing report
type InspectionReportResponse struct {
	ID            string                   `json:"id"`
	AppointmentID string                   `json:"appointment_id"`
	UserID        string                   `json:"user_id"`
	FaultOwner    string                   `json:"fault_owner"`
	SolutionType  string                   `json:"solution_type"`
	Description   string                   `json:"description"`
	Solution      string                   `json:"solution,omitempty"`
	Status        string                   `json:"status"`
	CreatedAt     string                   `json:"created_at,omitempty"`
	Media         []MediaResponse          `json:"media,omitempty"`
	Approvals     []ReportApprovalResponse `json:"approvals,omitempty"`
}

// ReportListRequest report list query
type ReportListRequest struct {
	PaginationRequest
	DateRange
	AppointmentID string `form:"appointment_id" binding:"omitempty,uuid"`
	Status        string `form:"status"         binding:"omitempty,oneof=Pending Approved Rejected"`
}

// ── repair reports ──

// CreateRepairReportRequest record of the repair work
type CreateRepairReportRequest struct {
	AppointmentID string        `json:"appointment_id" form:"appointment_id" binding:"required,uuid"`
	Description   string        `json:"description"    form:"description"    binding:"required,notblank,max=2000"`
	Files         []*FileUpload `json:"-"              form:"-"`
}

// UpdateRepairReportRequest repair record change
type UpdateRepairReportRequest struct {
	Description string `json:"description" binding:"required,notblank,max=2000"`
}

// RepairReportResponse repair report
type RepairReportResponse struct {
	ID            string                   `json:"id"`
	AppointmentID string                   `json:"appointment_id"`
	UserID        string                   `json:"user_id"`
	Description   string                   `json:"description"`
	Status        string                   `json:"status"`
	CreatedAt     string                   `json:"created_at"`
	Media         []MediaResponse          `json:"media,omitempty"`
	Approvals     []ReportApprovalResponse `json:"approvals,omitempty"`
}

// ── approvals ──

// ApproveReportRequest decision on the pending approval of a report
type ApproveReportRequest struct {
	ReportType            string `json:"report_type"              binding:"required,oneof=Inspection Repair"`
	ReportID              string `json:"report_id"                binding:"required,uuid"`
	Status                string `json:"status"                   binding:"required,oneof=Approved Rejected"`
	Comment               string `json:"comment"                  binding:"omitempty,max=1000"`
	EscalateToHigherLevel bool   `json:"escalate_to_higher_level"`
}

// ReportApprovalResponse one step of an approval chain
type ReportApprovalResponse struct {
	ID         string  `json:"id"`
	ReportType string  `json:"report_type"`
	ReportID   string  `json:"report_id"`
	Role       string  `json:"role"`
	UserID     *string `json:"user_id,omitempty"`
	Status     string  `json:"status"`
	Comment    string  `json:"comment,omitempty"`
	DecidedAt  *string `json:"decided_at,omitempty"`
	CreatedAt  string  `json:"created_at"`
}
