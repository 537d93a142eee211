package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bijuliyatra/bijuli-client/internal/session/app/service"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	storagemock "github.com/bijuliyatra/bijuli-client/internal/session/app/storage/mock"
	"github.com/bijuliyatra/bijuli-client/internal/session/domain"
	"github.com/bijuliyatra/bijuli-client/internal/session/infra/memory"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	"github.com/bijuliyatra/bijuli-client/pkg/metric"
	pkgtime "github.com/bijuliyatra/bijuli-client/pkg/time"
)

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    "sita@example.np",
		"role":   "ROLE_EV_OWNER",
		"userId": 17,
		"exp":    exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func newManager(s storage.Storage, clock pkgtime.Clock) *service.Manager {
	return service.NewManager(service.NewSessionStore(s), clock, log.NewStub(), service.WithSweepInterval(10*time.Millisecond))
}

func validLogin(token string) service.LoginData {
	return service.LoginData{
		Token:        token,
		RefreshToken: "refresh-1",
		UserID:       "17",
		Role:         "ROLE_EV_OWNER",
		Email:        "sita@example.np",
		Fullname:     "Sita Sharma",
	}
}

func TestManager_Bootstrap(t *testing.T) {
	now := time.Unix(1_741_600_000, 0)
	clock := pkgtime.NewFixedClock(now)

	tests := []struct {
		name          string
		stored        map[storage.Key]string
		authenticated bool
		remaining     []storage.Key
	}{
		{
			name: "authenticated_with_valid_token_and_user",
			stored: map[storage.Key]string{
				storage.KeyAuthToken: tokenExpiringAt(t, now.Add(time.Hour)),
				storage.KeyUser:      `{"userId":17,"email":"sita@example.np"}`,
			},
			authenticated: true,
			remaining:     []storage.Key{storage.KeyAuthToken, storage.KeyUser},
		},
		{
			name: "clears_expired_token",
			stored: map[storage.Key]string{
				storage.KeyAuthToken:    tokenExpiringAt(t, now.Add(-time.Second)),
				storage.KeyRefreshToken: "refresh-1",
				storage.KeyUser:         `{"userId":"17"}`,
			},
			remaining: []storage.Key{storage.KeyRefreshToken},
		},
		{
			name: "clears_malformed_token",
			stored: map[storage.Key]string{
				storage.KeyAuthToken: "not-a-jwt",
				storage.KeyUser:      `{"userId":"17"}`,
			},
		},
		{
			name: "clears_user_without_identity",
			stored: map[storage.Key]string{
				storage.KeyAuthToken: tokenExpiringAt(t, now.Add(time.Hour)),
				storage.KeyUser:      `{"role":"ROLE_EV_OWNER"}`,
			},
		},
		{
			name: "clears_unparsable_user",
			stored: map[storage.Key]string{
				storage.KeyAuthToken: tokenExpiringAt(t, now.Add(time.Hour)),
				storage.KeyUser:      `{broken`,
			},
		},
		{
			name: "unauthenticated_on_empty_storage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := memory.NewStorage(memory.NewBackend())
			for key, value := range tt.stored {
				require.NoError(t, s.Set(ctx, key, value))
			}

			state, err := newManager(s, clock).Bootstrap(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.authenticated, state.Authenticated)

			var remaining []storage.Key
			for _, key := range storage.AllKeys {
				if _, ok, _ := s.Get(ctx, key); ok {
					remaining = append(remaining, key)
				}
			}
			assert.ElementsMatch(t, tt.remaining, remaining)
		})
	}
}

func TestManager_Login_RejectsWithoutStateChange(t *testing.T) {
	now := time.Unix(1_741_600_000, 0)

	tests := []struct {
		name    string
		data    service.LoginData
		wantErr error
	}{
		{
			name:    "error_when_token_missing",
			data:    service.LoginData{Email: "sita@example.np"},
			wantErr: domain.ErrInvalidToken,
		},
		{
			name:    "error_when_token_expired",
			data:    service.LoginData{Token: tokenExpiringAt(t, now), Email: "sita@example.np"},
			wantErr: domain.ErrInvalidToken,
		},
		{
			name:    "error_when_user_has_no_identity",
			data:    service.LoginData{Token: tokenExpiringAt(t, now.Add(time.Hour)), Role: "ROLE_EV_OWNER"},
			wantErr: domain.ErrInvalidUser,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			s := storagemock.NewStorage(ctrl)

			manager := newManager(s, pkgtime.NewFixedClock(now))
			err := manager.Login(context.Background(), tt.data)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, manager.State().Authenticated)
		})
	}
}

func TestManager_Login_WritesAccessTokenLast(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storagemock.NewStorage(ctrl)
	token := tokenExpiringAt(t, time.Now().Add(time.Hour))

	gomock.InOrder(
		s.EXPECT().Set(gomock.Any(), storage.KeyRefreshToken, "refresh-1").Return(nil),
		s.EXPECT().Set(gomock.Any(), storage.KeyUserID, "17").Return(nil),
		s.EXPECT().Set(gomock.Any(), storage.KeyUserRole, "ROLE_EV_OWNER").Return(nil),
		s.EXPECT().Set(gomock.Any(), storage.KeyUser, gomock.Any()).Return(nil),
		s.EXPECT().Set(gomock.Any(), storage.KeyAuthToken, token).Return(nil),
	)

	manager := newManager(s, pkgtime.NewAdjustableClock())
	require.NoError(t, manager.Login(context.Background(), validLogin(token)))

	state := manager.State()
	assert.True(t, state.Authenticated)
	assert.Equal(t, token, state.Token)
	assert.Equal(t, "Sita Sharma", state.User.Fullname)
}

func TestManager_Login_StorageFailureKeepsUnauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storagemock.NewStorage(ctrl)
	s.EXPECT().Set(gomock.Any(), storage.KeyRefreshToken, gomock.Any()).Return(errors.New("disk full"))
	s.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(nil).Times(len(storage.AllKeys))

	manager := newManager(s, pkgtime.NewAdjustableClock())
	err := manager.Login(context.Background(), validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour))))

	assert.Error(t, err)
	assert.False(t, manager.State().Authenticated)
}

func TestManager_Login_PartialWriteClearsPreviousSession(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewBackend()
	previous := memory.NewStorage(backend)
	staleToken := tokenExpiringAt(t, time.Now().Add(time.Hour))
	require.NoError(t, previous.Set(ctx, storage.KeyAuthToken, staleToken))
	require.NoError(t, previous.Set(ctx, storage.KeyUser, `{"userId":"5","email":"ram@example.np"}`))

	ctrl := gomock.NewController(t)
	s := storagemock.NewStorage(ctrl)
	shared := memory.NewStorage(backend)
	s.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, key storage.Key, value string) error {
			if key == storage.KeyUserID {
				return errors.New("disk full")
			}
			return shared.Set(ctx, key, value)
		},
	).Times(2)
	s.EXPECT().Remove(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, keys ...storage.Key) error {
			return shared.Remove(ctx, keys...)
		},
	).Times(len(storage.AllKeys))

	manager := newManager(s, pkgtime.NewAdjustableClock())
	err := manager.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour))))

	assert.Error(t, err)
	assert.False(t, manager.State().Authenticated)
	for _, key := range storage.AllKeys {
		_, ok, err := shared.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestManager_Logout_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStorage(memory.NewBackend())
	manager := newManager(s, pkgtime.NewAdjustableClock())
	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour)))))

	var transitions []service.State
	manager.Subscribe(func(state service.State) {
		transitions = append(transitions, state)
	})

	manager.Logout(ctx)
	manager.Logout(ctx)

	assert.False(t, manager.State().Authenticated)
	assert.Len(t, transitions, 1)
	for _, key := range storage.AllKeys {
		_, ok, err := s.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
}

func TestManager_Logout_StorageErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storagemock.NewStorage(ctrl)
	s.EXPECT().Remove(gomock.Any(), gomock.Any()).Return(errors.New("storage unavailable")).Times(len(storage.AllKeys))

	manager := newManager(s, pkgtime.NewAdjustableClock())
	assert.NotPanics(t, func() {
		manager.Logout(context.Background())
	})
	assert.False(t, manager.State().Authenticated)
}

func TestManager_SweepExpired_Boundary(t *testing.T) {
	exp := time.Unix(1_741_600_000, 0)
	clock := pkgtime.NewAdjustableClock()
	s := memory.NewStorage(memory.NewBackend())
	manager := newManager(s, clock)

	ctx := clock.Set(context.Background(), exp.Add(-time.Hour))
	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, exp))))

	manager.SweepExpired(clock.Set(ctx, exp.Add(-time.Millisecond)))
	assert.True(t, manager.State().Authenticated)

	manager.SweepExpired(clock.Set(ctx, exp))
	assert.False(t, manager.State().Authenticated)

	_, ok, err := s.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_SweepExpired_ClearsExpiredTokenWrittenByAnotherInstance(t *testing.T) {
	now := time.Unix(1_741_600_000, 0)
	ctx := context.Background()
	backend := memory.NewBackend()

	other := memory.NewStorage(backend)
	require.NoError(t, other.Set(ctx, storage.KeyUser, `{"userId":"17","email":"sita@example.np"}`))
	require.NoError(t, other.Set(ctx, storage.KeyAuthToken, tokenExpiringAt(t, now.Add(-time.Minute))))

	s := memory.NewStorage(backend)
	manager := newManager(s, pkgtime.NewFixedClock(now))
	require.NoError(t, manager.Resync(ctx))
	require.False(t, manager.State().Authenticated)

	manager.SweepExpired(ctx)

	_, ok, err := s.Get(ctx, storage.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_RecordsMetrics(t *testing.T) {
	exp := time.Unix(1_741_600_000, 0)
	clock := pkgtime.NewAdjustableClock()
	registry := metric.NewRegistry()
	manager := service.NewManager(
		service.NewSessionStore(memory.NewStorage(memory.NewBackend())),
		clock,
		log.NewStub(),
		service.WithMetrics(registry),
	)

	ctx := clock.Set(context.Background(), exp.Add(-time.Hour))
	assert.ErrorIs(t, manager.Login(ctx, service.LoginData{}), domain.ErrInvalidToken)
	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, exp))))
	manager.SweepExpired(clock.Set(ctx, exp))

	assert.Equal(t, map[string]int64{
		`session_logins_total{result="ok"}`:       1,
		`session_logins_total{result="rejected"}`: 1,
		"session_expired_total":                   1,
	}, registry.Snapshot().Counters)
}

func TestManager_Run_SweepsExpiredToken(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := newManager(memory.NewStorage(memory.NewBackend()), pkgtime.NewAdjustableClock())
	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Second)))))

	done := make(chan error, 1)
	go func() { done <- manager.Run(ctx) }()

	assert.Eventually(t, func() bool {
		return !manager.State().Authenticated
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestManager_Run_OnlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	s := storagemock.NewStorage(ctrl)

	subscribed := make(chan struct{})
	s.EXPECT().Subscribe(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, storage.Listener) (func(), error) {
		close(subscribed)
		return func() {}, nil
	})
	s.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", false, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	manager := newManager(s, pkgtime.NewAdjustableClock())

	done := make(chan error, 1)
	go func() { done <- manager.Run(ctx) }()
	<-subscribed

	assert.ErrorIs(t, manager.Run(ctx), service.ErrAlreadyRunning)

	cancel()
	assert.NoError(t, <-done)
}

func TestManager_CrossInstanceSync(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend := memory.NewBackend()
	first := newManager(memory.NewStorage(backend), pkgtime.NewAdjustableClock())
	second := newManager(memory.NewStorage(backend), pkgtime.NewAdjustableClock())

	var wg sync.WaitGroup
	for _, m := range []*service.Manager{first, second} {
		wg.Add(1)
		go func(m *service.Manager) {
			defer wg.Done()
			_ = m.Run(ctx)
		}(m)
	}
	defer wg.Wait()
	defer cancel()

	// give both subscriptions time to register
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, first.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour)))))
	assert.Eventually(t, func() bool {
		return second.State().Authenticated
	}, time.Second, 5*time.Millisecond)

	first.Logout(ctx)
	assert.Eventually(t, func() bool {
		return !second.State().Authenticated
	}, time.Second, 5*time.Millisecond)
}

func TestManager_Subscribe_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	manager := newManager(memory.NewStorage(memory.NewBackend()), pkgtime.NewAdjustableClock())

	var calls int
	unsubscribe := manager.Subscribe(func(service.State) { calls++ })

	require.NoError(t, manager.Login(ctx, validLogin(tokenExpiringAt(t, time.Now().Add(time.Hour)))))
	unsubscribe()
	manager.Logout(ctx)

	assert.Equal(t, 1, calls)
}
