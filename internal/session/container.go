package session

import (
	"fmt"
	"time"

	sqlsession "github.com/bijuliyatra/bijuli-client/data/sql/session"
	"github.com/bijuliyatra/bijuli-client/internal/pkg/cmd"
	commonhttp "github.com/bijuliyatra/bijuli-client/internal/pkg/http"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/auth"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/service"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/storage"
	sessionhttp "github.com/bijuliyatra/bijuli-client/internal/session/infra/http"
	"github.com/bijuliyatra/bijuli-client/internal/session/infra/memory"
	sessionredis "github.com/bijuliyatra/bijuli-client/internal/session/infra/redis"
	sessionsql "github.com/bijuliyatra/bijuli-client/internal/session/infra/sql"
	"github.com/bijuliyatra/bijuli-client/pkg/env"
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
	"github.com/bijuliyatra/bijuli-client/pkg/lazy"
	"github.com/bijuliyatra/bijuli-client/pkg/worker"
)

const (
	StorageMemory = "memory"
	StorageSQL    = "sql"
	StorageRedis  = "redis"

	defaultNamespace = "default"
)

var processBackend = memory.NewBackend()

type DependencyContainer struct {
	Manager          lazy.Loader[*service.Manager]
	AuthService      lazy.Loader[*service.AuthService]
	AuthorizedClient lazy.Loader[pkghttp.Client]

	backgroundJobs worker.Pool
}

// StorageKind reads SESSION_STORAGE, memory by default.
// Memory storage lives as long as the process, so short-lived commands need sql or redis.
func StorageKind() (string, error) {
	return env.ParseOrDefault("SESSION_STORAGE", StorageMemory)
}

// NewDependencyContainer picks the storage backend with StorageKind.
func NewDependencyContainer(
	infra *cmd.InfrastructureContainer,
	redirect service.RedirectFunc,
) *DependencyContainer {
	backgroundJobs := worker.NewPool(worker.MaxWorkersCountNumCPU)

	sessionStorage := storageProvider(infra)
	store := lazy.New(func() (*service.SessionStore, error) {
		return service.NewSessionStore(sessionStorage.MustLoad()), nil
	})
	manager := managerProvider(infra, store)
	authAPI := authAPIProvider(infra)
	authenticator := lazy.New(func() (*service.Authenticator, error) {
		return service.NewAuthenticator(
			manager.MustLoad(),
			store.MustLoad(),
			authAPI.MustLoad(),
			env.Must(env.ParseOrDefault("LOGIN_ROUTE", service.DefaultLoginRoute)),
			redirect,
			infra.Logger.MustLoad(),
		), nil
	})

	return &DependencyContainer{
		Manager: manager,
		AuthService: lazy.New(func() (*service.AuthService, error) {
			return service.NewAuthService(
				authAPI.MustLoad(),
				manager.MustLoad(),
				backgroundJobs,
				infra.Logger.MustLoad(),
			), nil
		}),
		AuthorizedClient: lazy.New(func() (pkghttp.Client, error) {
			return infra.HTTPClientFactory.MustLoad().MustInitClient(
				commonhttp.DestinationBijuliAPI,
				pkghttp.WithBearerToken(authenticator.MustLoad()),
				pkghttp.WithAuthRetry(authenticator.MustLoad()),
			), nil
		}),
		backgroundJobs: backgroundJobs,
	}
}

// Wait blocks until fire-and-forget backend calls are done.
func (c *DependencyContainer) Wait() {
	c.backgroundJobs.Wait()
}

func storageProvider(
	infra *cmd.InfrastructureContainer,
) lazy.Loader[storage.Storage] {
	return lazy.New(func() (storage.Storage, error) {
		namespace := env.Must(env.ParseOrDefault("SESSION_NAMESPACE", defaultNamespace))
		kind := env.Must(StorageKind())

		switch kind {
		case StorageMemory:
			return memory.NewStorage(processBackend), nil
		case StorageSQL:
			infra.DBMigrations.MustLoad().MustRegister("session", sqlsession.Migrations)
			return sessionsql.NewStorage(
				infra.DB.MustLoad(),
				infra.DBListener.MustLoad(),
				namespace,
				infra.Logger.MustLoad(),
			), nil
		case StorageRedis:
			return sessionredis.NewStorage(
				infra.Redis.MustLoad().Client,
				namespace,
				infra.Logger.MustLoad(),
			), nil
		default:
			return nil, fmt.Errorf("unknown session storage %q", kind)
		}
	})
}

func managerProvider(
	infra *cmd.InfrastructureContainer,
	store lazy.Loader[*service.SessionStore],
) lazy.Loader[*service.Manager] {
	return lazy.New(func() (*service.Manager, error) {
		sweepInterval := env.Must(env.ParseOrDefault[time.Duration]("SESSION_EXPIRY_SWEEP_INTERVAL", service.DefaultSweepInterval))
		return service.NewManager(
			store.MustLoad(),
			infra.Clock.MustLoad(),
			infra.Logger.MustLoad(),
			service.WithSweepInterval(sweepInterval),
			service.WithMetrics(infra.Metrics.MustLoad()),
		), nil
	})
}

// authAPIProvider builds a client without auth retry, token refresh goes through it.
func authAPIProvider(
	infra *cmd.InfrastructureContainer,
) lazy.Loader[auth.API] {
	return lazy.New(func() (auth.API, error) {
		return sessionhttp.NewAuthAPI(
			infra.HTTPClientFactory.MustLoad().MustInitClient(commonhttp.DestinationBijuliAPI),
		), nil
	})
}
