package dto

// CatalogListRequest list query shared by the catalog tables
type CatalogListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
	Status  string `form:"status"  binding:"omitempty,oneof=Active Inactive"`
}

// ── techniques ──

// TechniqueRequest technique create/update
type TechniqueRequest struct {
	Name        string `json:"name"        binding:"required,notblank,max=100"`
	Description string `json:"description" binding:"omitempty,max=500"`
}

// TechniqueResponse technique
type TechniqueResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// AssignTechniquesRequest technician skill set
type AssignTechniquesRequest struct {
	TechnicianID string   `json:"technician_id" binding:"required,uuid"`
	TechniqueIDs []string `json:"technique_ids" binding:"required,min=1,dive,uuid"`
}

// TechnicianTechniquesResponse skills of a technician
type TechnicianTechniquesResponse struct {
	TechnicianID string              `json:"technician_id"`
	Techniques   []TechniqueResponse `json:"techniques"`
}

// ── issues ──

// CreateIssueRequest issue type creation
type CreateIssueRequest struct {
	TechniqueID        string  `json:"technique_id"        binding:"required,uuid"`
	Name               string  `json:"name"                binding:"required,notblank,max=200"`
	Description        string  `json:"description"         binding:"omitempty,max=500"`
	EstimatedDuration  float64 `json:"estimated_duration"`  // hours
	RequiredTechnician int     `json:"required_technician"`
	IsEmergency        bool    `json:"is_emergency"`
}

// UpdateIssueRequest issue type change; nil fields stay untouched
type UpdateIssueRequest struct {
	TechniqueID        *string  `json:"technique_id"        binding:"omitempty,uuid"`
	Name               *string  `json:"name"                binding:"omitempty,notblank,max=200"`
	Description        *string  `json:"description"         binding:"omitempty,max=500"`
	EstimatedDuration  *float64 `json:"estimated_duration"`
	RequiredTechnician *int     `json:"required_technician"`
	IsEmergency        *bool    `json:"is_emergency"`
}

// IssueListRequest issue list query
type IssueListRequest struct {
	CatalogListRequest
	TechniqueID string `form:"technique_id" binding:"omitempty,uuid"`
	Emergency   *bool  `form:"emergency"`
}

// IssueResponse issue type
type IssueResponse struct {
	ID                 string             `json:"id"`
	TechniqueID        string             `json:"technique_id"`
	Technique          *TechniqueResponse `json:"technique,omitempty"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	EstimatedDuration  float64            `json:"estimated_duration"`
	RequiredTechnician int                `json:"required_technician"`
	IsEmergency        bool               `json:"is_emergency"`
	Status             string             `json:"status"`
}

// ── accessories ──

// AccessoryRequest accessory create/update
type AccessoryRequest struct {
	Name        string  `json:"name"        binding:"required,notblank,max=200"`
	Description string  `json:"description" binding:"omitempty,max=500"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// AccessoryResponse accessory; the zero value stands for a missing accessory
type AccessoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Status      string  `json:"status"`
}
