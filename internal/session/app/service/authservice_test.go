package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	authmock "github.com/bijuliyatra/bijuli-client/internal/session/app/auth/mock"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/service"
	"github.com/bijuliyatra/bijuli-client/internal/session/infra/memory"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	pkgtime "github.com/bijuliyatra/bijuli-client/pkg/time"
	"github.com/bijuliyatra/bijuli-client/pkg/validation"
	"github.com/bijuliyatra/bijuli-client/pkg/worker"
)

func newAuthService(api auth.API) (*service.AuthService, *service.Manager, worker.Pool) {
	manager := newManager(memory.NewStorage(memory.NewBackend()), pkgtime.NewAdjustableClock())
	pool := worker.NewPool(worker.MaxWorkersCountUnlimited)
	return service.NewAuthService(api, manager, pool, log.NewStub()), manager, pool
}

func TestAuthService_Login_ValidatesForm(t *testing.T) {
	tests := []struct {
		name        string
		credentials auth.Credentials
		field       string
	}{
		{
			name:        "error_when_email_missing",
			credentials: auth.Credentials{Password: "secret"},
			field:       "email",
		},
		{
			name:        "error_when_email_malformed",
			credentials: auth.Credentials{Email: "sita-at-example", Password: "secret"},
			field:       "email",
		},
		{
			name:        "error_when_password_missing",
			credentials: auth.Credentials{Email: "sita@example.np"},
			field:       "password",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := authmock.NewAPI(gomock.NewController(t))
			svc, _, _ := newAuthService(api)

			_, err := svc.Login(context.Background(), tt.credentials)

			require.ErrorIs(t, err, validation.ErrInvalid)
			var fieldErrs validation.Errors
			require.ErrorAs(t, err, &fieldErrs)
			assert.NotEmpty(t, fieldErrs.Field(tt.field))
		})
	}
}

func TestAuthService_Login_StartsSessionFromClaims(t *testing.T) {
	ctx := context.Background()
	api := authmock.NewAPI(gomock.NewController(t))
	svc, manager, _ := newAuthService(api)

	token := tokenExpiringAt(t, time.Now().Add(time.Hour))
	api.EXPECT().Login(gomock.Any(), auth.Credentials{Email: "sita@example.np", Password: "secret"}).
		Return(auth.LoginResult{Token: token, RefreshToken: "refresh-1", Redirect: "/evowner/dashboard", Message: "Login successful"}, nil)

	outcome, err := svc.Login(ctx, auth.Credentials{Email: " sita@example.np ", Password: "secret"})
	require.NoError(t, err)

	assert.False(t, outcome.OTPRequired)
	assert.Equal(t, "/evowner/dashboard", outcome.Redirect)
	require.True(t, outcome.State.Authenticated)
	assert.Equal(t, "17", outcome.State.User.UserID.String())
	assert.Equal(t, "ROLE_EV_OWNER", outcome.State.User.Role)
	assert.Equal(t, "sita@example.np", outcome.State.User.Email)
	assert.True(t, manager.State().Authenticated)
}

func TestAuthService_Login_ReturnsOTPChallenge(t *testing.T) {
	api := authmock.NewAPI(gomock.NewController(t))
	svc, manager, _ := newAuthService(api)
	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(auth.LoginResult{Message: "OTP sent to email", Email: "sita@example.np"}, nil)

	outcome, err := svc.Login(context.Background(), auth.Credentials{Email: "sita@example.np", Password: "secret"})
	require.NoError(t, err)

	assert.True(t, outcome.OTPRequired)
	assert.Equal(t, "sita@example.np", outcome.Email)
	assert.False(t, manager.State().Authenticated)
}

func TestAuthService_Login_RejectsExpiredToken(t *testing.T) {
	api := authmock.NewAPI(gomock.NewController(t))
	svc, manager, _ := newAuthService(api)
	api.EXPECT().Login(gomock.Any(), gomock.Any()).Return(auth.LoginResult{Token: tokenExpiringAt(t, time.Now().Add(-time.Minute))}, nil)

	_, err := svc.Login(context.Background(), auth.Credentials{Email: "sita@example.np", Password: "secret"})

	assert.Error(t, err)
	assert.False(t, manager.State().Authenticated)
}

func TestAuthService_VerifyOTP(t *testing.T) {
	api := authmock.NewAPI(gomock.NewController(t))
	svc, manager, _ := newAuthService(api)

	_, err := svc.VerifyOTP(context.Background(), auth.OTPVerification{Email: "sita@example.np", Code: "12ab"})
	require.ErrorIs(t, err, validation.ErrInvalid)

	api.EXPECT().VerifyOTP(gomock.Any(), auth.OTPVerification{Email: "sita@example.np", Code: "123456"}).
		Return(auth.LoginResult{Token: tokenExpiringAt(t, time.Now().Add(time.Hour)), RefreshToken: "refresh-1"}, nil)

	_, err = svc.VerifyOTP(context.Background(), auth.OTPVerification{Email: "sita@example.np", Code: "123456"})
	require.NoError(t, err)
	assert.True(t, manager.State().Authenticated)
}

func TestAuthService_Logout_ClearsLocallyEvenWhenBackendFails(t *testing.T) {
	ctx := context.Background()
	api := authmock.NewAPI(gomock.NewController(t))
	svc, manager, pool := newAuthService(api)
	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour)))))

	api.EXPECT().Logout(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	svc.Logout(ctx)
	assert.False(t, manager.State().Authenticated)

	pool.Wait()
}
