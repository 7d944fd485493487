package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	userDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/user"
	"github.com/campuspub/publication-portal/internal/user"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.Repository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, filters user.ListFilters) ([]*user.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&userDatamodel.User{})

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	if filters.Role != "" {
		if filters.Role == "staff" {
			// legacy publisher accounts count as staff
			query = query.Where("type IN ?", []string{"staff", "publisher"})
		} else {
			query = query.Where("type = ?", filters.Role)
		}
	}
	if filters.Active != nil {
		query = query.Where("is_active = ?", *filters.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*userDatamodel.User
	err := query.
		Order("username ASC").
		Limit(filters.PageSize).
		Offset((filters.Page - 1) * filters.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]*user.User, 0, len(models))
	for _, m := range models {
		items = append(items, user.FromDataModel(m))
	}
	return items, total, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var m userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&m), nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User, passwordHash string) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	m := &userDatamodel.User{
		ID:                 u.ID,
		Username:           u.Name,
		Email:              u.Email,
		PasswordHash:       passwordHash,
		Type:               string(u.Role),
		Department:         u.Department,
		IsActive:           u.Active,
		MustChangePassword: u.MustChangePassword,
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isDuplicate(err) {
			return internal.ErrUserExists
		}
		return err
	}
	u.CreatedAt = m.CreatedAt
	return nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return internal.ErrUserExists
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&userDatamodel.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}
