package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

type (
	TokenSource interface {
		AccessToken(ctx context.Context) (string, bool)
	}

	// Authenticator renews the access token after a 401 answer.
	// Expire is called when the renewal is impossible, the session must be dropped then.
	Authenticator interface {
		Refresh(ctx context.Context) (string, error)
		Expire(ctx context.Context)
	}
)

func WithBearerToken(source TokenSource) ClientOption {
	return func(c *ClientImpl) {
		c.RESTClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if req.Header.Get(HeaderAuthorization) != "" {
				return nil
			}

			token, ok := source.AccessToken(req.Context())
			if !ok || token == "" {
				return nil
			}

			req.SetHeader(HeaderAuthorization, BearerPrefix+token)
			return nil
		})
	}
}

func WithAuthRetry(auth Authenticator) ClientOption {
	return func(c *ClientImpl) {
		c.authenticator = auth
	}
}

func withAuthRetry(req *resty.Request, route Route, auth Authenticator) (*resty.Response, error) {
	retried := false
	for {
		resp, err := execute(req, route)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusUnauthorized {
			return resp, nil
		}
		if retried {
			return resp, fmt.Errorf("%w: %s %s rejected after token refresh", ErrUnauthorized, route.Method, route.URL)
		}

		token, err := auth.Refresh(req.Context())
		if err != nil || strings.TrimSpace(token) == "" {
			auth.Expire(req.Context())
			if err == nil {
				err = errEmptyRefreshedToken
			}
			return resp, fmt.Errorf("%w: refresh token: %w", ErrUnauthorized, err)
		}

		req.SetHeader(HeaderAuthorization, BearerPrefix+token)
		retried = true
	}
}
