package domain

import (
	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
)

type (
	User struct {
		UserID   pkgstrings.NumericString `json:"userId"`
		Role     string                   `json:"role"`
		Email    string                   `json:"email"`
		Fullname string                   `json:"fullname"`
	}

	Session struct {
		Token        string
		RefreshToken string
		User         User
	}
)

// IsValid requires at least one identifying field.
func (u User) IsValid() bool {
	return u.UserID != "" || u.Email != "" || u.Fullname != ""
}

// WithClaims fills blank fields from the decoded access token.
func (u User) WithClaims(claims *Claims) User {
	if claims == nil {
		return u
	}

	if u.UserID == "" {
		u.UserID = claims.UserID
	}
	if u.Role == "" {
		u.Role = claims.Role
	}
	if u.Email == "" {
		u.Email = claims.UserEmail()
	}
	return u
}
