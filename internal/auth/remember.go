package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RememberCookie is set alongside the session when the user asks to stay
// signed in; it can re-establish a session after the server-side one expires.
const RememberCookie = "portal_remember"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type RememberClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// RememberTokens signs and validates the long-lived remember-me tokens.
type RememberTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewRememberTokens(secret string, ttl time.Duration) *RememberTokens {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &RememberTokens{secret: []byte(secret), ttl: ttl}
}

func (t *RememberTokens) TTL() time.Duration { return t.ttl }

// Enabled reports whether a signing secret was configured; without one no
// remember cookies are issued or honored.
func (t *RememberTokens) Enabled() bool { return len(t.secret) > 0 }

func (t *RememberTokens) Generate(userID, username string) (string, error) {
	now := time.Now()
	claims := &RememberClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

func (t *RememberTokens) Validate(tokenString string) (*RememberClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RememberClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*RememberClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
