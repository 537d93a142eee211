package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	"github.com/bijuliyatra/bijuli-client/internal/session/domain"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
	"github.com/bijuliyatra/bijuli-client/pkg/validation"
	"github.com/bijuliyatra/bijuli-client/pkg/worker"
)

var formValidator = validation.New()

type (
	// LoginOutcome is either a started session or a pending OTP challenge.
	LoginOutcome struct {
		OTPRequired bool
		Email       string
		Message     string
		Redirect    string
		State       State
	}

	AuthService struct {
		api     auth.API
		manager *Manager
		pool    worker.Pool
		logger  log.Logger
	}
)

func NewAuthService(api auth.API, manager *Manager, pool worker.Pool, logger log.Logger) *AuthService {
	return &AuthService{
		api:     api,
		manager: manager,
		pool:    pool,
		logger:  logger,
	}
}

func (s *AuthService) Login(ctx context.Context, credentials auth.Credentials) (LoginOutcome, error) {
	credentials.Email = strings.TrimSpace(credentials.Email)
	err := formValidator.Struct(credentials)
	if err != nil {
		return LoginOutcome{}, err
	}

	result, err := s.api.Login(ctx, credentials)
	if err != nil {
		return LoginOutcome{}, err
	}

	if result.OTPRequired() {
		email := result.Email
		if email == "" {
			email = credentials.Email
		}
		s.logger.WithField("email", email).Info(ctx, "login requires otp verification")
		return LoginOutcome{OTPRequired: true, Email: email, Message: result.Message}, nil
	}

	return s.startSession(ctx, result, credentials.Email)
}

func (s *AuthService) VerifyOTP(ctx context.Context, verification auth.OTPVerification) (LoginOutcome, error) {
	verification.Email = strings.TrimSpace(verification.Email)
	verification.Code = strings.TrimSpace(verification.Code)
	err := formValidator.Struct(verification)
	if err != nil {
		return LoginOutcome{}, err
	}

	result, err := s.api.VerifyOTP(ctx, verification)
	if err != nil {
		return LoginOutcome{}, err
	}

	return s.startSession(ctx, result, verification.Email)
}

// Logout ends the local session first, the backend call is best effort.
func (s *AuthService) Logout(ctx context.Context) {
	token := s.manager.State().Token
	s.manager.Logout(ctx)
	if token == "" {
		return
	}

	s.pool.Do(func() {
		err := s.api.Logout(context.WithoutCancel(ctx), token)
		if err != nil {
			s.logger.WithError(err).Warn(ctx, "backend logout failed")
		}
	})
}

func (s *AuthService) startSession(ctx context.Context, result auth.LoginResult, email string) (LoginOutcome, error) {
	data := LoginData{
		Token:        result.Token,
		RefreshToken: result.RefreshToken,
		UserID:       result.UserID,
		Role:         result.Role,
		Email:        result.Email,
		Fullname:     result.Fullname,
	}

	claims, err := domain.DecodeToken(result.Token)
	if err == nil {
		user := domain.User{
			UserID:   pkgstrings.NumericString(data.UserID),
			Role:     data.Role,
			Email:    data.Email,
			Fullname: data.Fullname,
		}.WithClaims(claims)
		data.UserID = user.UserID.String()
		data.Role = user.Role
		data.Email = user.Email
	}
	if data.Email == "" {
		data.Email = email
	}

	err = s.manager.Login(ctx, data)
	if err != nil {
		return LoginOutcome{}, fmt.Errorf("start session: %w", err)
	}

	return LoginOutcome{
		Message:  result.Message,
		Redirect: result.Redirect,
		State:    s.manager.State(),
	}, nil
}
