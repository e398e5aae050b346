package model

// Technique technician skill, maps to techniques
type Technique struct {
	TechniqueID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"technique_id"`
	Name        string       `gorm:"type:varchar(100);not null;uniqueIndex"         json:"name"`
	Description string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (Technique) TableName() string { return "techniques" }

// UserTechnique technique held by a technician, maps to user_techniques
type UserTechnique struct {
	UserTechniqueID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_technique_id"`
	UserID          string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	TechniqueID     string `gorm:"type:uuid;not null;index"                       json:"technique_id"`
	BaseModel

	Technique *Technique `gorm:"foreignKey:TechniqueID;references:TechniqueID" json:"technique,omitempty"`
}

func (UserTechnique) TableName() string { return "user_techniques" }

// Issue type of problem a resident can report, maps to issues
type Issue struct {
	IssueID            string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"issue_id"`
	TechniqueID        string       `gorm:"type:uuid;not null;index"                       json:"technique_id"`
	Name               string       `gorm:"type:varchar(200);not null"                     json:"name"`
	Description        string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	EstimatedDuration  float64      `gorm:"type:numeric(6,2);not null"                     json:"estimated_duration"` // hours
	RequiredTechnician int          `gorm:"not null;default:1"                             json:"required_technician"`
	IsEmergency        bool         `gorm:"not null;default:false"                         json:"is_emergency"`
	Status             ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	Technique *Technique `gorm:"foreignKey:TechniqueID;references:TechniqueID" json:"technique,omitempty"`
}

func (Issue) TableName() string { return "issues" }

// Accessory spare part kept in stock, maps to accessories
type Accessory struct {
	AccessoryID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"accessory_id"`
	Name        string       `gorm:"type:varchar(200);not null;uniqueIndex"         json:"name"`
	Description string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Price       float64      `gorm:"type:numeric(14,2);not null;default:0"          json:"price"`
	Quantity    int          `gorm:"not null;default:0"                             json:"quantity"`
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (Accessory) TableName() string { return "accessories" }
