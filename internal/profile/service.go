package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/campuspub/publication-portal/internal"
)

// Repository defines the data access methods for self-service profiles
type Repository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetByID(ctx, userID)
}

// Update applies the self-service edits. Role and department are not
// self-editable.
func (s *Service) Update(ctx context.Context, userID string, dto UpdateProfileDTO) (*Profile, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	fields := map[string]interface{}{}
	if dto.Email != nil {
		fields["email"] = strings.ToLower(*dto.Email)
	}
	if dto.Allergy != nil {
		fields["allergy"] = strings.ToLower(*dto.Allergy)
	}

	if len(fields) > 0 {
		if err := s.repo.Update(ctx, userID, fields); err != nil {
			return nil, err
		}
		s.logger.Info("profile updated", "user_id", userID)
	}

	return s.repo.GetByID(ctx, userID)
}
