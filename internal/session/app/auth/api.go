//go:generate ${TOOLS_PATH}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "API=API"
package auth

import (
	"context"
	"errors"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type (
	Credentials struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	OTPVerification struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"otpCode" validate:"required,len=6,numeric"`
	}

	LoginResult struct {
		Token        string
		RefreshToken string
		Role         string
		UserID       string
		Email        string
		Fullname     string
		Redirect     string
		Message      string
	}
)

// OTPRequired reports a second-factor challenge instead of issued tokens.
func (r LoginResult) OTPRequired() bool {
	return r.Token == "" && strings.Contains(strings.ToUpper(r.Message), "OTP")
}

type API interface {
	Login(ctx context.Context, credentials Credentials) (LoginResult, error)
	VerifyOTP(ctx context.Context, verification OTPVerification) (LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, accessToken string) error
}
