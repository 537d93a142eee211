package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	sessionhttp "github.com/bijuliyatra/bijuli-client/internal/session/infra/http"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
)

func newAuthAPI(t *testing.T, register func(r *mux.Router)) auth.API {
	t.Helper()

	router := mux.NewRouter()
	register(router)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return sessionhttp.NewAuthAPI(pkghttp.NewClient(pkghttp.WithClientDestination("bijuli-api", srv.URL)))
}

func TestAuthAPI_Login(t *testing.T) {
	api := newAuthAPI(t, func(r *mux.Router) {
		r.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))

			switch in["email"] {
			case "otp@example.np":
				_, _ = w.Write([]byte(`{"message":"OTP sent to email","email":"otp@example.np"}`))
			case "wrong@example.np":
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			default:
				assert.Equal(t, "secret", in["password"])
				_, _ = w.Write([]byte(`{"message":"Login successful","token":"t","refreshToken":"r","role":"ROLE_EV_OWNER","userId":17,"redirect":"/evowner/dashboard"}`))
			}
		}).Methods(http.MethodPost)
	})
	ctx := context.Background()

	result, err := api.Login(ctx, auth.Credentials{Email: "sita@example.np", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, auth.LoginResult{
		Token:        "t",
		RefreshToken: "r",
		Role:         "ROLE_EV_OWNER",
		UserID:       "17",
		Redirect:     "/evowner/dashboard",
		Message:      "Login successful",
	}, result)
	assert.False(t, result.OTPRequired())

	result, err = api.Login(ctx, auth.Credentials{Email: "otp@example.np", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, result.OTPRequired())
	assert.Equal(t, "otp@example.np", result.Email)

	_, err = api.Login(ctx, auth.Credentials{Email: "wrong@example.np", Password: "secret"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "Invalid email or password", pkghttp.UserMessage(err))
}

func TestAuthAPI_VerifyOTP(t *testing.T) {
	api := newAuthAPI(t, func(r *mux.Router) {
		r.HandleFunc("/auth/login/verify-otp", func(w http.ResponseWriter, r *http.Request) {
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, map[string]string{"email": "sita@example.np", "otpCode": "123456"}, in)
			_, _ = w.Write([]byte(`{"token":"t","refreshToken":"r","userId":"17"}`))
		}).Methods(http.MethodPost)
	})

	result, err := api.VerifyOTP(context.Background(), auth.OTPVerification{Email: "sita@example.np", Code: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "t", result.Token)
	assert.Equal(t, "17", result.UserID)
}

func TestAuthAPI_RefreshAndLogout(t *testing.T) {
	api := newAuthAPI(t, func(r *mux.Router) {
		r.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			if in["refreshToken"] != "r" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"accessToken":"fresh"}`))
		}).Methods(http.MethodPost)
		r.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"message":"Logged out successfully"}`))
		}).Methods(http.MethodPost)
	})
	ctx := context.Background()

	token, err := api.Refresh(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	_, err = api.Refresh(ctx, "revoked")
	var apiErr *pkghttp.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	assert.NoError(t, api.Logout(ctx, "t"))
}
