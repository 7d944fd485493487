package user

import (
	"errors"
	"strings"

	"github.com/campuspub/publication-portal/internal/auth"
)

type CreateUserDTO struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Department *string `json:"department"`
	Password   string  `json:"password"`
	Active     *bool   `json:"active"`
}

func (dto CreateUserDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(dto.Email) == "" {
		return errors.New("email is required")
	}
	if !auth.AllowedTypes[strings.ToLower(dto.Role)] {
		return errors.New("role must be one of student, staff, admin")
	}
	if len(dto.Password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	if auth.NormalizeRole(dto.Role) != auth.RoleAdmin && (dto.Department == nil || *dto.Department == "") {
		return errors.New("department is required for non-admin users")
	}
	return nil
}

const minPasswordLength = 8

// UpdateUserDTO carries a partial edit; nil fields are left untouched.
// Password, when present, is replaced and forces a change on next login.
type UpdateUserDTO struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Role       *string `json:"role"`
	Department *string `json:"department"`
	Active     *bool   `json:"active"`
	Password   *string `json:"password"`
}

func (dto UpdateUserDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Email != nil && strings.TrimSpace(*dto.Email) == "" {
		return errors.New("email cannot be empty")
	}
	if dto.Role != nil && !auth.AllowedTypes[strings.ToLower(*dto.Role)] {
		return errors.New("role must be one of student, staff, admin")
	}
	if dto.Password != nil && len(*dto.Password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ListFilters narrows the admin user listing.
type ListFilters struct {
	Query    string
	Role     string
	Active   *bool
	Page     int
	PageSize int
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func (f ListFilters) Normalize() ListFilters {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		f.PageSize = maxPageSize
	}
	if strings.EqualFold(f.Role, "all") {
		f.Role = ""
	}
	if f.Role != "" {
		f.Role = string(auth.NormalizeRole(f.Role))
	}
	return f
}
