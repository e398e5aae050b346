package model

import "time"

// Conversation chat thread, maps to conversations.
// PairKey is set only for two-party conversations and is unique.
type Conversation struct {
	ConversationID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"conversation_id"`
	Title          string  `gorm:"type:varchar(200)"                              json:"title,omitempty"`
	PairKey        *string `gorm:"type:varchar(80);uniqueIndex"                   json:"-"`
	BaseModel

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID;references:ConversationID" json:"participants,omitempty"`
}

func (Conversation) TableName() string { return "conversations" }

// ConversationParticipant membership of a user in a conversation, maps to conversation_participants
type ConversationParticipant struct {
	ParticipantID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	ConversationID string    `gorm:"type:uuid;not null;index"                       json:"conversation_id"`
	UserID         string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	IsMuted        bool      `gorm:"not null;default:false"                         json:"is_muted"`
	JoinedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

func (ConversationParticipant) TableName() string { return "conversation_participants" }

// Message chat message, maps to messages
type Message struct {
	MessageID        string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	ConversationID   string        `gorm:"type:uuid;not null;index"                       json:"conversation_id"`
	SenderID         string        `gorm:"type:uuid;not null"                             json:"sender_id"`
	Type             MessageType   `gorm:"type:varchar(20);not null"                      json:"type"`
	Content          string        `gorm:"type:text;not null"                             json:"content"` // text body or image url
	ReplyToMessageID *string       `gorm:"type:uuid"                                      json:"reply_to_message_id,omitempty"`
	Status           MessageStatus `gorm:"type:varchar(20);not null;default:'Sent'"       json:"status"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;index"       json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (Message) TableName() string { return "messages" }
