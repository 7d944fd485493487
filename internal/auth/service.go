package auth

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/campuspub/publication-portal/internal"
)

// Service performs authentication and the self-service account flows.
type Service struct {
	directory  Directory
	tokens     *RememberTokens
	bcryptCost int
	logger     *slog.Logger
}

func NewService(directory Directory, tokens *RememberTokens, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		directory:  directory,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) RememberTokens() *RememberTokens { return s.tokens }

// Authenticate verifies credentials and returns the account. Unknown logins
// and bad passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*Account, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	account, err := s.directory.FindByLogin(ctx, dto.Login())
	if err != nil {
		s.logger.Warn("login failed: unknown account", "login", dto.Login())
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("login failed: bad password", "login", dto.Login())
		return nil, internal.ErrInvalidCredentials
	}

	if !account.Active {
		s.logger.Warn("login refused: account deactivated", "user_id", account.ID)
		return nil, internal.ErrAccountDeactivated
	}

	return account, nil
}

// ResumeFromToken re-authenticates from a remember token, loading the account
// fresh so a deactivation since issuance still locks the user out.
func (s *Service) ResumeFromToken(ctx context.Context, token string) (*Account, error) {
	if !s.tokens.Enabled() {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	account, err := s.directory.FindByUsername(ctx, claims.Username)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !account.Active {
		return nil, internal.ErrAccountDeactivated
	}
	return account, nil
}

// Register creates a self-service account. The role defaults to student; the
// legacy "publisher" type is accepted and normalizes to staff on read.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	accountType := strings.ToLower(dto.Type)
	if accountType == "" {
		accountType = "student"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	account := &Account{
		Username:     dto.Username,
		Email:        strings.ToLower(dto.Email),
		Type:         accountType,
		Department:   dto.Department,
		Active:       true,
		PasswordHash: string(hash),
	}
	if err := s.directory.Create(ctx, account); err != nil {
		return err
	}

	s.logger.Info("account registered", "username", dto.Username, "type", accountType)
	return nil
}

// ChangePassword verifies the current password before storing the new hash
// and clearing the must-change flag.
func (s *Service) ChangePassword(ctx context.Context, username string, dto ChangePasswordDTO) error {
	if err := dto.Validate(); err != nil {
		return internal.NewValidationError(err.Error(), internal.ErrCodePasswordTooShort)
	}

	account, err := s.directory.FindByUsername(ctx, username)
	if err != nil {
		return internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return internal.NewValidationError("Invalid current password", internal.ErrCodeInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.NewPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.directory.UpdatePassword(ctx, account.ID, string(hash), false); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", account.ID)
	return nil
}

// RegisterEvent records an attendance signup; registering twice is a no-op.
func (s *Service) RegisterEvent(ctx context.Context, userID, eventID string) (bool, error) {
	return s.directory.AddSignup(ctx, userID, eventID)
}

const (
	defaultAdminUsername = "admin"
	defaultAdminEmail    = "admin@admin.com"
	defaultAdminPassword = "admin"
)

// EnsureAdmin creates the default admin account on first boot so a fresh
// deployment is reachable.
func (s *Service) EnsureAdmin(ctx context.Context) error {
	if _, err := s.directory.FindByUsername(ctx, defaultAdminUsername); err == nil {
		s.logger.Debug("admin account already exists")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), s.bcryptCost)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}

	if err := s.directory.Create(ctx, &Account{
		Username:     defaultAdminUsername,
		Email:        defaultAdminEmail,
		Type:         "admin",
		Active:       true,
		PasswordHash: string(hash),
	}); err != nil {
		return err
	}

	s.logger.Info("default admin account created", "username", defaultAdminUsername)
	return nil
}
