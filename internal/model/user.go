package model

import "time"

// User person using the system, maps to users
type User struct {
	UserID      string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	FirstName   string       `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName    string       `gorm:"type:varchar(100);not null"                     json:"last_name"`
	Email       string       `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PhoneNumber string       `gorm:"type:varchar(20);not null;uniqueIndex"          json:"phone_number"`
	Role        Role         `gorm:"type:varchar(20);not null"                      json:"role"`
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	AvatarURL   *string      `gorm:"type:varchar(500)"                              json:"avatar_url,omitempty"`
	BaseModel
}

func (User) TableName() string { return "users" }

// FullName first and last name joined
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.LastName + " " + u.FirstName
}

// Account login credentials of a user, maps to accounts (1:1 with users)
type Account struct {
	AccountID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"account_id"`
	UserID       string     `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Username     string     `gorm:"type:varchar(255);not null;uniqueIndex"         json:"username"`
	PasswordHash string     `gorm:"type:varchar(255);not null"                     json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Account) TableName() string { return "accounts" }

// AccountToken device token registered for push notifications, maps to account_tokens
type AccountToken struct {
	AccountTokenID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"account_token_id"`
	UserID         string `gorm:"type:uuid;not null;index"                       json:"user_id"`
	DeviceToken    string `gorm:"type:varchar(500);not null;uniqueIndex"         json:"device_token"`
	Platform       string `gorm:"type:varchar(20);not null"                      json:"platform"` // android | ios | web
	BaseModel
}

func (AccountToken) TableName() string { return "account_tokens" }
