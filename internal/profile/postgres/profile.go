package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/auth"
	userDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/user"
	"github.com/campuspub/publication-portal/internal/profile"
)

// ProfileRepository implements the profile.Repository interface using GORM
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) profile.Repository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*profile.Profile, error) {
	var m userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return &profile.Profile{
		Username:   m.Username,
		Email:      m.Email,
		Role:       string(auth.NormalizeRole(m.Type)),
		Department: m.Department,
		Allergy:    m.Allergy,
	}, nil
}

func (r *ProfileRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}
