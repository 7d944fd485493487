package user

import "time"

type User struct {
	ID                 string    `gorm:"primaryKey"`
	Username           string    `gorm:"column:username;uniqueIndex;not null"`
	Email              string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash       string    `gorm:"column:password_hash;not null"`
	Type               string    `gorm:"column:type;default:student"`
	Department         *string   `gorm:"column:department"`
	Allergy            string    `gorm:"column:allergy"`
	IsActive           bool      `gorm:"column:is_active;default:true"`
	MustChangePassword bool      `gorm:"column:must_change_password;default:false"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
