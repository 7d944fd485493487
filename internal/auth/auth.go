package auth

import (
	"context"
	"strings"
	"time"
)

// Role is the normalized access level of a session.
type Role string

const (
	RoleGuest   Role = "guest"
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// RoleLanding maps each signed-in role to its canonical landing route.
var RoleLanding = map[Role]string{
	RoleStudent: "/student",
	RoleStaff:   "/staff",
	RoleAdmin:   "/admin",
}

const LoginPath = "/login"

// NormalizeRole folds a stored or submitted account type into the fixed role
// enumeration. The legacy "publisher" type maps to staff; legacy blank or
// "user"/"default" types and anything unrecognized fail closed to guest.
func NormalizeRole(candidate string) Role {
	switch strings.ToLower(strings.TrimSpace(candidate)) {
	case "student":
		return RoleStudent
	case "staff", "publisher":
		return RoleStaff
	case "admin":
		return RoleAdmin
	default:
		return RoleGuest
	}
}

// AllowedTypes are the raw account types accepted at registration. "publisher"
// is kept for compatibility with accounts migrated from the old portal.
var AllowedTypes = map[string]bool{
	"student":   true,
	"staff":     true,
	"admin":     true,
	"publisher": true,
}

// Account is the credential-bearing view of a portal user, loaded by the
// directory for authentication and self-service flows.
type Account struct {
	ID                 string
	Username           string
	Email              string
	Type               string // raw stored type, may be a legacy value
	Department         *string
	Active             bool
	Allergy            string
	MustChangePassword bool
	PasswordHash       string
	CreatedAt          time.Time
}

func (a *Account) Role() Role {
	return NormalizeRole(a.Type)
}

// Directory is the persistence surface auth needs: credential lookup and the
// self-service mutations (registration, password change, event signup).
type Directory interface {
	FindByLogin(ctx context.Context, usernameOrEmail string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string, mustChange bool) error
	AddSignup(ctx context.Context, userID, eventID string) (added bool, err error)
}

// SessionUser is what a signed-in session carries and what handlers read from
// the request context.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

type userCtxKey struct{}

func ContextWithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

func UserFromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(userCtxKey{}).(*SessionUser)
	return u, ok && u != nil
}
