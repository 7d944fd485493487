package auth

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

const (
	sessionKeyRole     = "role"
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
	sessionKeyEmail    = "email"
	sessionKeyType     = "type"
	sessionKeyLanding  = "last_landing"
)

// RoleStore is the single accessor for the session-persisted role. Every
// navigation decision reads it; login and logout are the only writers.
// All reads fail closed to guest and never return an error.
type RoleStore struct {
	sessions *scs.SessionManager
}

func NewRoleStore(sessions *scs.SessionManager) *RoleStore {
	return &RoleStore{sessions: sessions}
}

// Role returns the normalized persisted role, or guest when the session holds
// nothing usable.
func (s *RoleStore) Role(ctx context.Context) Role {
	raw, ok := s.sessions.Get(ctx, sessionKeyRole).(string)
	if !ok || raw == "" {
		return RoleGuest
	}
	return NormalizeRole(raw)
}

// SetRole normalizes the candidate, persists it and returns the stored value.
// Idempotent under repeated identical calls.
func (s *RoleStore) SetRole(ctx context.Context, candidate string) Role {
	role := NormalizeRole(candidate)
	s.sessions.Put(ctx, sessionKeyRole, string(role))
	return role
}

// ClearRole removes the persisted role. Safe to call on a session that has
// none.
func (s *RoleStore) ClearRole(ctx context.Context) {
	s.sessions.Remove(ctx, sessionKeyRole)
}

// MarkLanding records the last canonical landing path the session reached.
// Bookkeeping only; nothing reads it on the hot path.
func (s *RoleStore) MarkLanding(ctx context.Context, path string) {
	s.sessions.Put(ctx, sessionKeyLanding, path)
}

func (s *RoleStore) LastLanding(ctx context.Context) string {
	path, _ := s.sessions.Get(ctx, sessionKeyLanding).(string)
	return path
}

// SignIn writes the authenticated account into the session and rotates the
// session token against fixation.
func (s *RoleStore) SignIn(ctx context.Context, account *Account) error {
	if err := s.sessions.RenewToken(ctx); err != nil {
		return err
	}
	s.sessions.Put(ctx, sessionKeyUserID, account.ID)
	s.sessions.Put(ctx, sessionKeyUsername, account.Username)
	s.sessions.Put(ctx, sessionKeyEmail, account.Email)
	s.sessions.Put(ctx, sessionKeyType, account.Type)
	s.SetRole(ctx, account.Type)
	return nil
}

// SignOut destroys the session; idempotent.
func (s *RoleStore) SignOut(ctx context.Context) error {
	return s.sessions.Destroy(ctx)
}

// CurrentUser reconstructs the signed-in user from the session, or nil for a
// guest session.
func (s *RoleStore) CurrentUser(ctx context.Context) *SessionUser {
	id, _ := s.sessions.Get(ctx, sessionKeyUserID).(string)
	username, _ := s.sessions.Get(ctx, sessionKeyUsername).(string)
	if id == "" || username == "" {
		return nil
	}
	email, _ := s.sessions.Get(ctx, sessionKeyEmail).(string)
	return &SessionUser{
		ID:       id,
		Username: username,
		Email:    email,
		Role:     s.Role(ctx),
	}
}
