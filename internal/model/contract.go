package model

import "time"

// Contract outsourcing contract of a repair request, maps to contracts
type Contract struct {
	ContractID      string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contract_id"`
	RepairRequestID string       `gorm:"type:uuid;not null;index"                       json:"repair_request_id"`
	ContractCode    string       `gorm:"type:varchar(50);not null;uniqueIndex"          json:"contract_code"`
	ContractorName  string       `gorm:"type:varchar(200);not null"                     json:"contractor_name"`
	Description     string       `gorm:"type:varchar(2000)"                             json:"description,omitempty"`
	Amount          float64      `gorm:"type:numeric(14,2);not null;default:0"          json:"amount"`
	StartDate       time.Time    `gorm:"type:date;not null"                             json:"start_date"`
	EndDate         time.Time    `gorm:"type:date;not null"                             json:"end_date"`
	Status          ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (Contract) TableName() string { return "contracts" }
