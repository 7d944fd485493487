package user

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campuspub/publication-portal/internal"
	"github.com/campuspub/publication-portal/internal/auth"
)

// Repository defines the data access methods for admin user management
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]*User, int64, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u *User, passwordHash string) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

// Service handles admin-side user management
type Service struct {
	repo       Repository
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]*User, int64, error) {
	return s.repo.List(ctx, filters.Normalize())
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create provisions an account with an initial password the user must change
// on first login.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	active := true
	if dto.Active != nil {
		active = *dto.Active
	}

	u := &User{
		Name:               dto.Name,
		Email:              strings.ToLower(dto.Email),
		Role:               auth.NormalizeRole(dto.Role),
		Department:         dto.Department,
		Active:             active,
		MustChangePassword: true,
	}

	if err := s.repo.Create(ctx, u, string(hash)); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Update applies a partial edit. A password change set by an admin forces the
// user to pick a fresh one on next login.
func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	fields := map[string]interface{}{}
	if dto.Name != nil {
		fields["username"] = *dto.Name
	}
	if dto.Email != nil {
		fields["email"] = strings.ToLower(*dto.Email)
	}
	if dto.Role != nil {
		fields["type"] = strings.ToLower(*dto.Role)
	}
	if dto.Department != nil {
		fields["department"] = *dto.Department
	}
	if dto.Active != nil {
		fields["is_active"] = *dto.Active
	}
	if dto.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		fields["password_hash"] = string(hash)
		fields["must_change_password"] = true
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, err
		}
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", id)
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	return nil
}
