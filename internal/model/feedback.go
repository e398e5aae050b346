package model

// Feedback resident rating of a repair request, or a reply in its thread.
// Maps to feedbacks. Replies carry Rating 0.
type Feedback struct {
	FeedbackID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"feedback_id"`
	RepairRequestID  string  `gorm:"type:uuid;not null;index"                       json:"repair_request_id"`
	UserID           string  `gorm:"type:uuid;not null"                             json:"user_id"`
	ParentFeedbackID *string `gorm:"type:uuid;index"                                json:"parent_feedback_id,omitempty"`
	Rating           int     `gorm:"type:smallint;not null;default:0"               json:"rating"`
	Comment          string  `gorm:"type:varchar(2000)"                             json:"comment,omitempty"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (Feedback) TableName() string { return "feedbacks" }
