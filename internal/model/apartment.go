package model

// Floor building floor, maps to floors
type Floor struct {
	FloorID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"floor_id"`
	FloorNumber int          `gorm:"not null"                                       json:"floor_number"`
	Description string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (Floor) TableName() string { return "floors" }

// Apartment unit on a floor, maps to apartments.
// (FloorID, Room) is unique among active apartments.
type Apartment struct {
	ApartmentID string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"apartment_id"`
	FloorID     string       `gorm:"type:uuid;not null;index"                       json:"floor_id"`
	Room        string       `gorm:"type:varchar(20);not null"                      json:"room"`
	Type        string       `gorm:"type:varchar(50)"                               json:"type,omitempty"`
	Description string       `gorm:"type:varchar(500)"                              json:"description,omitempty"`
	Area        float64      `gorm:"type:numeric(10,2);not null;default:0"          json:"area"`
	Limit       int          `gorm:"column:resident_limit;not null;default:0"       json:"limit"` // max residents, 0 = unlimited
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	Floor *Floor `gorm:"foreignKey:FloorID;references:FloorID" json:"floor,omitempty"`
}

func (Apartment) TableName() string { return "apartments" }

// UserApartment residency of a user in an apartment, maps to user_apartments
type UserApartment struct {
	UserApartmentID string              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_apartment_id"`
	UserID          string              `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ApartmentID     string              `gorm:"type:uuid;not null;index"                       json:"apartment_id"`
	RoleInApartment ApartmentMemberRole `gorm:"type:varchar(20);not null"                      json:"role_in_apartment"`
	Status          ActiveStatus        `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (UserApartment) TableName() string { return "user_apartments" }
