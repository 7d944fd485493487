package user

import (
	"time"

	"github.com/campuspub/publication-portal/internal/auth"
	userDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/user"
)

// User is the admin-managed account view. Role is always normalized on read;
// the password hash never leaves the service layer.
type User struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	Role               auth.Role `json:"role"`
	Department         *string   `json:"department"`
	Active             bool      `json:"active"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}

func FromDataModel(m *userDatamodel.User) *User {
	return &User{
		ID:                 m.ID,
		Name:               m.Username,
		Email:              m.Email,
		Role:               auth.NormalizeRole(m.Type),
		Department:         m.Department,
		Active:             m.IsActive,
		MustChangePassword: m.MustChangePassword,
		CreatedAt:          m.CreatedAt,
	}
}
