package request

import "time"

type PublicationRequest struct {
	ID              string     `gorm:"primaryKey"`
	Title           string     `gorm:"column:title;not null"`
	Author          string     `gorm:"column:author"`
	Organization    string     `gorm:"column:organization"`
	Email           string     `gorm:"column:email"`
	Location        string     `gorm:"column:location"`
	OnCampus        bool       `gorm:"column:on_campus;default:false"`
	MaxAttendees    *int       `gorm:"column:max_attendees"`
	Date            string     `gorm:"column:date"`
	StartTime       string     `gorm:"column:start_time"`
	EndTime         string     `gorm:"column:end_time"`
	StartAt         *time.Time `gorm:"column:start_at"`
	EndAt           *time.Time `gorm:"column:end_at"`
	Description     string     `gorm:"column:description"`
	DepartmentsJSON string     `gorm:"column:departments_json;default:'[]'"`
	PublishAll      bool       `gorm:"column:publish_all;default:false"`
	Status          string     `gorm:"column:status;default:pending;index"`
	Feedback        string     `gorm:"column:feedback"`
	IsVisible       bool       `gorm:"column:is_visible;default:false"`
	SubmitterID     string     `gorm:"column:submitter_id;index"`
	ProcessedAt     *time.Time `gorm:"column:processed_at"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

type Attachment struct {
	ID        string    `gorm:"primaryKey"`
	RequestID string    `gorm:"column:request_id;index;not null"`
	Position  int       `gorm:"column:position;default:0"`
	Filename  string    `gorm:"column:filename;not null"`
	MimeType  string    `gorm:"column:mime_type"`
	SizeBytes int64     `gorm:"column:size_bytes"`
	Content   []byte    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
