package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
)

var (
	loginRoute     = pkghttp.Route{Method: http.MethodPost, URL: "/auth/login"}
	verifyOTPRoute = pkghttp.Route{Method: http.MethodPost, URL: "/auth/login/verify-otp"}
	refreshRoute   = pkghttp.Route{Method: http.MethodPost, URL: "/auth/refresh"}
	logoutRoute    = pkghttp.Route{Method: http.MethodPost, URL: "/auth/logout"}
)

type (
	LoginOut struct {
		Message      string                   `json:"message"`
		Token        string                   `json:"token"`
		RefreshToken string                   `json:"refreshToken"`
		Role         string                   `json:"role"`
		Redirect     string                   `json:"redirect"`
		UserID       pkgstrings.NumericString `json:"userId"`
		Email        string                   `json:"email"`
		Fullname     string                   `json:"fullname"`
	}

	RefreshIn struct {
		RefreshToken string `json:"refreshToken"`
	}

	RefreshOut struct {
		AccessToken string `json:"accessToken"`
		Token       string `json:"token"`
	}
)

// authAPI must be backed by a client without auth retry, otherwise a rejected refresh would recurse.
type authAPI struct {
	client pkghttp.Client
}

func NewAuthAPI(client pkghttp.Client) auth.API {
	return authAPI{client: client}
}

func (a authAPI) Login(ctx context.Context, credentials auth.Credentials) (auth.LoginResult, error) {
	return a.login(ctx, loginRoute, credentials)
}

func (a authAPI) VerifyOTP(ctx context.Context, verification auth.OTPVerification) (auth.LoginResult, error) {
	return a.login(ctx, verifyOTPRoute, verification)
}

func (a authAPI) Refresh(ctx context.Context, refreshToken string) (string, error) {
	req := a.client.NewRequest(ctx).SetBody(RefreshIn{RefreshToken: refreshToken})
	resp, err := a.client.Send(req, refreshRoute)
	if err != nil {
		return "", fmt.Errorf("request auth.refresh: %w", err)
	}

	body, err := pkghttp.ParseJSONBody[RefreshOut](resp)
	if err != nil {
		return "", fmt.Errorf("auth.refresh response: %w", err)
	}

	if body.AccessToken != "" {
		return body.AccessToken, nil
	}
	return body.Token, nil
}

func (a authAPI) Logout(ctx context.Context, accessToken string) error {
	req := a.client.NewRequest(ctx).SetAuthToken(accessToken)
	resp, err := a.client.Send(req, logoutRoute)
	if err != nil {
		return fmt.Errorf("request auth.logout: %w", err)
	}

	return pkghttp.CheckResponse(resp)
}

func (a authAPI) login(ctx context.Context, route pkghttp.Route, in any) (auth.LoginResult, error) {
	resp, err := a.client.Send(a.client.NewRequest(ctx).SetBody(in), route)
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("request auth.login: %w", err)
	}

	body, err := pkghttp.ParseJSONBody[LoginOut](resp)
	var apiErr *pkghttp.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return auth.LoginResult{}, fmt.Errorf("%w: %w", auth.ErrInvalidCredentials, apiErr)
	}
	if err != nil {
		return auth.LoginResult{}, fmt.Errorf("auth.login response: %w", err)
	}

	return auth.LoginResult{
		Token:        body.Token,
		RefreshToken: body.RefreshToken,
		Role:         body.Role,
		UserID:       body.UserID.String(),
		Email:        body.Email,
		Fullname:     body.Fullname,
		Redirect:     body.Redirect,
		Message:      body.Message,
	}, nil
}
