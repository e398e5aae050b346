package dto

import "time"

// CreateContractRequest outsourcing contract with its signed PDF
type CreateContractRequest struct {
	RepairRequestID string      `form:"repair_request_id" binding:"required,uuid"`
	ContractCode    string      `form:"contract_code"     binding:"required,notblank,max=50"`
	ContractorName  string      `form:"contractor_name"   binding:"required,notblank,max=200"`
	Description     string      `form:"description"       binding:"omitempty,max=2000"`
	Amount          float64     `form:"amount"            binding:"min=0"`
	StartDate       time.Time   `form:"start_date"        binding:"required" time_format:"2006-01-02"`
	EndDate         time.Time   `form:"end_date"          binding:"required" time_format:"2006-01-02"`
	ContractFile    *FileUpload `form:"-"`
}

// UpdateContractRequest contract change; nil fields stay untouched
type UpdateContractRequest struct {
	ContractCode   *string    `json:"contract_code"   binding:"omitempty,notblank,max=50"`
	ContractorName *string    `json:"contractor_name" binding:"omitempty,notblank,max=200"`
	Description    *string    `json:"description"     binding:"omitempty,max=2000"`
	Amount         *float64   `json:"amount"          binding:"omitempty,min=0"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

// ContractListRequest contract list query
type ContractListRequest struct {
	PaginationRequest
	Keyword         string `form:"keyword"           binding:"omitempty,max=50"`
	RepairRequestID string `form:"repair_request_id" binding:"omitempty,uuid"`
	Status          string `form:"status"            binding:"omitempty,oneof=Active Inactive"`
}

// ContractResponse contract
type ContractResponse struct {
	ID              string          `json:"id"`
	RepairRequestID string          `json:"repair_request_id"`
	ContractCode    string          `json:"contract_code"`
	ContractorName  string          `json:"contractor_name"`
	Description     string          `json:"description,omitempty"`
	Amount          float64         `json:"amount"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Status          string          `json:"status"`
	CreatedAt       string          `json:"created_at"`
	Media           []MediaResponse `json:"media,omitempty"`
}
