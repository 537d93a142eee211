package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	"github.com/bijuliyatra/bijuli-client/internal/session/domain"
)

// StoredSession is the raw persisted state, nothing here is validated yet.
type StoredSession struct {
	Token        string
	RefreshToken string
	User         *domain.User
}

type SessionStore struct {
	storage storage.Storage
}

func NewSessionStore(s storage.Storage) *SessionStore {
	return &SessionStore{storage: s}
}

// Get treats an unparsable user record as absent.
func (s *SessionStore) Get(ctx context.Context) (StoredSession, error) {
	var result StoredSession

	token, _, err := s.storage.Get(ctx, storage.KeyAuthToken)
	if err != nil {
		return StoredSession{}, fmt.Errorf("get %s: %w", storage.KeyAuthToken, err)
	}
	result.Token = token

	refreshToken, _, err := s.storage.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return StoredSession{}, fmt.Errorf("get %s: %w", storage.KeyRefreshToken, err)
	}
	result.RefreshToken = refreshToken

	rawUser, ok, err := s.storage.Get(ctx, storage.KeyUser)
	if err != nil {
		return StoredSession{}, fmt.Errorf("get %s: %w", storage.KeyUser, err)
	}
	if ok && rawUser != "" {
		var user domain.User
		if json.Unmarshal([]byte(rawUser), &user) == nil {
			result.User = &user
		}
	}

	return result, nil
}

// Set writes the access token last so that readers never observe a token without its user.
func (s *SessionStore) Set(ctx context.Context, session domain.Session) error {
	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	writes := []struct {
		key   storage.Key
		value string
	}{
		{storage.KeyRefreshToken, session.RefreshToken},
		{storage.KeyUserID, session.User.UserID.String()},
		{storage.KeyUserRole, session.User.Role},
		{storage.KeyUser, string(rawUser)},
		{storage.KeyAuthToken, session.Token},
	}
	for _, w := range writes {
		if w.value == "" {
			err = s.storage.Remove(ctx, w.key)
		} else {
			err = s.storage.Set(ctx, w.key, w.value)
		}
		if err != nil {
			return fmt.Errorf("set %s: %w", w.key, err)
		}
	}

	return nil
}

func (s *SessionStore) SetAccessToken(ctx context.Context, token string) error {
	err := s.storage.Set(ctx, storage.KeyAuthToken, token)
	if err != nil {
		return fmt.Errorf("set %s: %w", storage.KeyAuthToken, err)
	}
	return nil
}

func (s *SessionStore) RefreshToken(ctx context.Context) (string, error) {
	token, _, err := s.storage.Get(ctx, storage.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", storage.KeyRefreshToken, err)
	}
	return token, nil
}

// Clear removes every session key, a failure on one key does not stop the others.
func (s *SessionStore) Clear(ctx context.Context) error {
	var errs []error
	for _, key := range storage.AllKeys {
		err := s.storage.Remove(ctx, key)
		if err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (s *SessionStore) ClearKeys(ctx context.Context, keys ...storage.Key) error {
	err := s.storage.Remove(ctx, keys...)
	if err != nil {
		return fmt.Errorf("remove %v: %w", keys, err)
	}
	return nil
}

func (s *SessionStore) Subscribe(ctx context.Context, listener storage.Listener) (func(), error) {
	return s.storage.Subscribe(ctx, listener)
}
