package event

import "time"

type Event struct {
	ID              string     `gorm:"primaryKey"`
	SourceRequestID string     `gorm:"column:source_request_id;uniqueIndex;not null"`
	Title           string     `gorm:"column:title;not null"`
	Description     string     `gorm:"column:description"`
	Location        string     `gorm:"column:location"`
	PublishAll      bool       `gorm:"column:publish_all;default:false"`
	DepartmentsJSON string     `gorm:"column:departments_json;default:'[]'"`
	StartAt         *time.Time `gorm:"column:start_at;index"`
	EndAt           *time.Time `gorm:"column:end_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Signup struct {
	ID        string    `gorm:"primaryKey"`
	EventID   string    `gorm:"column:event_id;index;not null"`
	UserID    string    `gorm:"column:user_id;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
