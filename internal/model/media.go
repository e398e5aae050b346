package model

// Media uploaded file attached to an entity, maps to media
type Media struct {
	MediaID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"media_id"`
	Entity      MediaEntity  `gorm:"type:varchar(30);not null;index:idx_media_entity"  json:"entity"`
	EntityID    string       `gorm:"type:uuid;not null;index:idx_media_entity"         json:"entity_id"`
	FilePath    string       `gorm:"type:varchar(1000);not null"                    json:"file_path"`
	FileName    string       `gorm:"type:varchar(255);not null"                     json:"file_name"`
	ContentType string       `gorm:"type:varchar(100);not null"                     json:"content_type"`
	Status      ActiveStatus `gorm:"type:varchar(20);not null;default:'Active'"     json:"status"`
	BaseModel
}

func (Media) TableName() string { return "media" }
