package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
)

var (
	ErrInvalidToken = errors.New("token is missing, malformed or expired")
	ErrInvalidUser  = errors.New("user has neither id, email nor full name")
)

// Claims are read without signature verification and never used as a trust boundary.
type Claims struct {
	Email  string                   `json:"email,omitempty"`
	Role   string                   `json:"role,omitempty"`
	UserID pkgstrings.NumericString `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

func (c Claims) UserEmail() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}

func DecodeToken(token string) (*Claims, error) {
	var claims Claims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}

	return &claims, nil
}

// IsTokenValid holds iff the token decodes, carries exp and now is strictly before exp.
func IsTokenValid(token string, now time.Time) bool {
	if token == "" {
		return false
	}

	claims, err := DecodeToken(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}

	return now.UnixMilli() < claims.ExpiresAt.UnixMilli()
}

// ExpiresIn is zero for invalid tokens.
func ExpiresIn(token string, now time.Time) time.Duration {
	claims, err := DecodeToken(token)
	if err != nil || claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return 0
	}

	return claims.ExpiresAt.Sub(now)
}
