package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/auth"
	eventDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/event"
	userDatamodel "github.com/campuspub/publication-portal/internal/core/datamodel/user"
)

// DirectoryRepository implements the auth.Directory interface using GORM
type DirectoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) auth.Directory {
	return &DirectoryRepository{db: db}
}

func (r *DirectoryRepository) FindByLogin(ctx context.Context, usernameOrEmail string) (*auth.Account, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", usernameOrEmail, strings.ToLower(usernameOrEmail)).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return fromDataModel(&u), nil
}

func (r *DirectoryRepository) FindByUsername(ctx context.Context, username string) (*auth.Account, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return fromDataModel(&u), nil
}

func (r *DirectoryRepository) Create(ctx context.Context, account *auth.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Create(toDataModel(account)).Error
	if err != nil {
		if isDuplicate(err) {
			return internal.ErrUserExists
		}
		return err
	}
	return nil
}

func (r *DirectoryRepository) UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error {
	result := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"password_hash":        passwordHash,
			"must_change_password": mustChange,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrUserNotFound
	}
	return nil
}

func (r *DirectoryRepository) AddSignup(ctx context.Context, userID, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&eventDatamodel.Signup{}).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	signup := &eventDatamodel.Signup{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  userID,
	}
	if err := r.db.WithContext(ctx).Create(signup).Error; err != nil {
		if isDuplicate(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "duplicate key")
}

func toDataModel(a *auth.Account) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                 a.ID,
		Username:           a.Username,
		Email:              a.Email,
		PasswordHash:       a.PasswordHash,
		Type:               a.Type,
		Department:         a.Department,
		Allergy:            a.Allergy,
		IsActive:           a.Active,
		MustChangePassword: a.MustChangePassword,
		CreatedAt:          a.CreatedAt,
	}
}

func fromDataModel(u *userDatamodel.User) *auth.Account {
	return &auth.Account{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		Type:               u.Type,
		Department:         u.Department,
		Active:             u.IsActive,
		Allergy:            u.Allergy,
		MustChangePassword: u.MustChangePassword,
		PasswordHash:       u.PasswordHash,
		CreatedAt:          u.CreatedAt,
	}
}
