package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	"github.com/bijuliyatra/bijuli-client/internal/session/domain"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	"github.com/bijuliyatra/bijuli-client/pkg/metric"
	pkgstrings "github.com/bijuliyatra/bijuli-client/pkg/strings"
	pkgtime "github.com/bijuliyatra/bijuli-client/pkg/time"
	"github.com/bijuliyatra/bijuli-client/pkg/worker"
)

const DefaultSweepInterval = time.Minute

var ErrAlreadyRunning = errors.New("session manager is already running")

type (
	State struct {
		Authenticated bool
		Token         string
		User          *domain.User
	}

	LoginData struct {
		Token        string
		RefreshToken string
		UserID       string
		Role         string
		Email        string
		Fullname     string
	}

	ManagerOption func(*Manager)
)

func (s State) equal(other State) bool {
	if s.Authenticated != other.Authenticated || s.Token != other.Token {
		return false
	}
	if s.User == nil || other.User == nil {
		return s.User == other.User
	}
	return *s.User == *other.User
}

type Manager struct {
	store         *SessionStore
	clock         pkgtime.Clock
	logger        log.Logger
	metrics       metric.Metrics
	sweepInterval time.Duration

	running atomic.Bool

	mu          sync.Mutex
	state       State
	observers   map[int]func(State)
	nextObserve int
}

func WithSweepInterval(every time.Duration) ManagerOption {
	return func(m *Manager) {
		if every > 0 {
			m.sweepInterval = every
		}
	}
}

func WithMetrics(metrics metric.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

func NewManager(store *SessionStore, clock pkgtime.Clock, logger log.Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		clock:         clock,
		logger:        logger,
		metrics:       metric.Discard(),
		sweepInterval: DefaultSweepInterval,
		observers:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// AccessToken exposes the current token to outgoing requests.
func (m *Manager) AccessToken(context.Context) (string, bool) {
	state := m.State()
	return state.Token, state.Authenticated && state.Token != ""
}

// Subscribe returns the function removing the observer.
func (m *Manager) Subscribe(observer func(State)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextObserve
	m.nextObserve++
	m.observers[id] = observer

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.observers, id)
	}
}

// Bootstrap restores the session from storage, a broken session is wiped.
func (m *Manager) Bootstrap(ctx context.Context) (State, error) {
	stored, err := m.store.Get(ctx)
	if err != nil {
		return m.State(), fmt.Errorf("read session: %w", err)
	}

	state, ok := m.validate(ctx, stored)
	if !ok && (stored.Token != "" || stored.User != nil) {
		m.logger.Info(ctx, "stored session is invalid, clearing")
		err = m.store.ClearKeys(ctx, storage.KeyAuthToken, storage.KeyUser)
		if err != nil {
			m.logger.WithError(err).Error(ctx, "failed to clear invalid session")
		}
	}

	m.setState(state)
	return state, nil
}

func (m *Manager) Login(ctx context.Context, data LoginData) error {
	if !domain.IsTokenValid(data.Token, m.clock.Now(ctx)) {
		m.rejectLogin(ctx, domain.ErrInvalidToken)
		return domain.ErrInvalidToken
	}

	user := domain.User{
		UserID:   pkgstrings.NumericString(data.UserID),
		Role:     data.Role,
		Email:    data.Email,
		Fullname: data.Fullname,
	}
	if !user.IsValid() {
		m.rejectLogin(ctx, domain.ErrInvalidUser)
		return domain.ErrInvalidUser
	}

	err := m.store.Set(ctx, domain.Session{
		Token:        data.Token,
		RefreshToken: data.RefreshToken,
		User:         user,
	})
	if err != nil {
		// a partial write must not pair the new user with a stale token
		if clearErr := m.store.Clear(ctx); clearErr != nil {
			m.logger.WithError(clearErr).Error(ctx, "failed to clear partially written session")
		}
		return fmt.Errorf("persist session: %w", err)
	}

	m.setState(State{Authenticated: true, Token: data.Token, User: &user})
	m.metrics.With(metric.Labels{"result": "ok"}).Increment("session_logins_total")
	m.logger.With(log.Fields{
		"userID": user.UserID.String(),
		"role":   user.Role,
	}).Info(ctx, "session started")
	return nil
}

// Logout always ends up unauthenticated, storage failures are only logged.
func (m *Manager) Logout(ctx context.Context) {
	err := m.store.Clear(ctx)
	if err != nil {
		m.logger.WithError(err).Error(ctx, "failed to clear session storage")
	}

	if m.setState(State{}) {
		m.logger.Info(ctx, "session ended")
	}
}

// UpdateAccessToken stores a refreshed token for the current user.
func (m *Manager) UpdateAccessToken(ctx context.Context, token string) error {
	if !domain.IsTokenValid(token, m.clock.Now(ctx)) {
		return domain.ErrInvalidToken
	}

	err := m.store.SetAccessToken(ctx, token)
	if err != nil {
		return err
	}

	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	if state.User == nil {
		return m.Resync(ctx)
	}

	state.Authenticated = true
	state.Token = token
	m.setState(state)
	return nil
}

// SweepExpired logs out once the token in storage is no longer valid.
func (m *Manager) SweepExpired(ctx context.Context) {
	stored, err := m.store.Get(ctx)
	if err != nil {
		m.logger.WithError(err).Error(ctx, "failed to read session for expiry sweep")
		return
	}
	if stored.Token == "" || domain.IsTokenValid(stored.Token, m.clock.Now(ctx)) {
		return
	}

	m.logger.Info(ctx, "access token expired")
	m.metrics.Increment("session_expired_total")
	m.Logout(ctx)
}

// Resync re-reads storage and trusts nothing but what validates.
func (m *Manager) Resync(ctx context.Context) error {
	stored, err := m.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}

	state, _ := m.validate(ctx, stored)
	m.setState(state)
	return nil
}

// Run owns the expiry sweep and the storage subscription until ctx is done.
func (m *Manager) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer m.running.Store(false)

	unsubscribe, err := m.store.Subscribe(ctx, m.handleChange)
	if err != nil {
		return fmt.Errorf("subscribe to session storage: %w", err)
	}
	defer unsubscribe()

	err = worker.PeriodicalJob(m.SweepExpired, m.sweepInterval)(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (m *Manager) handleChange(ctx context.Context, change storage.Change) {
	if !change.IsResync() && change.Key != storage.KeyAuthToken && change.Key != storage.KeyUser {
		return
	}

	m.metrics.Increment("session_sync_events_total")
	err := m.Resync(ctx)
	if err != nil {
		m.logger.WithError(err).With(log.Fields{
			"key":     string(change.Key),
			"removed": change.Removed,
		}).Error(ctx, "failed to sync session after storage change")
	}
}

func (m *Manager) rejectLogin(ctx context.Context, reason error) {
	m.metrics.With(metric.Labels{"result": "rejected"}).Increment("session_logins_total")
	m.logger.WithError(reason).Error(ctx, "login rejected")
}

func (m *Manager) validate(ctx context.Context, stored StoredSession) (State, bool) {
	if !domain.IsTokenValid(stored.Token, m.clock.Now(ctx)) {
		return State{}, false
	}
	if stored.User == nil || !stored.User.IsValid() {
		return State{}, false
	}

	user := *stored.User
	return State{Authenticated: true, Token: stored.Token, User: &user}, true
}

// setState reports whether the state changed, observers are notified outside the lock.
func (m *Manager) setState(state State) bool {
	m.mu.Lock()
	if m.state.equal(state) {
		m.mu.Unlock()
		return false
	}
	m.state = state

	observers := make([]func(State), 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.mu.Unlock()

	for _, o := range observers {
		o(state)
	}
	return true
}
