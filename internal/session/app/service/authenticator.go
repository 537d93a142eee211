package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

const DefaultLoginRoute = "/login"

var ErrNoRefreshToken = errors.New("no refresh token stored")

// RedirectFunc sends the user to route, the way of doing it belongs to the front end.
type RedirectFunc func(ctx context.Context, route string)

// Authenticator renews access tokens for the authorized http client.
type Authenticator struct {
	manager    *Manager
	store      *SessionStore
	api        auth.API
	loginRoute string
	redirect   RedirectFunc
	logger     log.Logger

	refreshMu sync.Mutex
}

func NewAuthenticator(
	manager *Manager,
	store *SessionStore,
	api auth.API,
	loginRoute string,
	redirect RedirectFunc,
	logger log.Logger,
) *Authenticator {
	if loginRoute == "" {
		loginRoute = DefaultLoginRoute
	}
	if redirect == nil {
		redirect = func(context.Context, string) {}
	}
	return &Authenticator{
		manager:    manager,
		store:      store,
		api:        api,
		loginRoute: loginRoute,
		redirect:   redirect,
		logger:     logger,
	}
}

func (a *Authenticator) AccessToken(ctx context.Context) (string, bool) {
	return a.manager.AccessToken(ctx)
}

func (a *Authenticator) Refresh(ctx context.Context) (string, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	refreshToken, err := a.store.RefreshToken(ctx)
	if err != nil {
		return "", err
	}
	if refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	token, err := a.api.Refresh(ctx, refreshToken)
	if err != nil {
		return "", fmt.Errorf("refresh access token: %w", err)
	}

	err = a.manager.UpdateAccessToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("store refreshed token: %w", err)
	}

	a.logger.Debug(ctx, "access token refreshed")
	return token, nil
}

// Expire drops the session and sends the user to the login route.
func (a *Authenticator) Expire(ctx context.Context) {
	a.logger.WithField("route", a.loginRoute).Warn(ctx, "session expired, redirecting to login")
	a.manager.Logout(ctx)
	a.redirect(ctx, a.loginRoute)
}
