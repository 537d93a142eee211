package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	commonhttp "github.com/bijuliyatra/bijuli-client/internal/pkg/http"
	"github.com/bijuliyatra/bijuli-client/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/pkg/env"
	"github.com/bijuliyatra/bijuli-client/pkg/http"
	"github.com/bijuliyatra/bijuli-client/pkg/lazy"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
	"github.com/bijuliyatra/bijuli-client/pkg/metric"
	"github.com/bijuliyatra/bijuli-client/pkg/observability"
	"github.com/bijuliyatra/bijuli-client/pkg/redis"
	"github.com/bijuliyatra/bijuli-client/pkg/sql"
	pkgtime "github.com/bijuliyatra/bijuli-client/pkg/time"
)

type InfrastructureContainer struct {
	HTTPClientFactory lazy.Loader[HTTPClientFactory]
	DBMigrations      lazy.Loader[SQLMigrations]
	DB                lazy.Loader[sql.Database]
	DBListener        lazy.Loader[sql.Listener]
	Redis             lazy.Loader[*redis.Client]
	Observer          lazy.Loader[observability.Observer]
	Clock             lazy.Loader[pkgtime.Clock]
	Metrics           lazy.Loader[*metric.Registry]
	Logger            lazy.Loader[log.Logger]
}

func NewInfrastructureContainer(ctx context.Context) *InfrastructureContainer {
	metrics := metricsProvider()
	logger := loggerProvider()
	observer := observerProvider(logger)

	sqlConfig := sqlConfigProvider()
	db := sqlDatabaseProvider(ctx, sqlConfig, logger)

	return &InfrastructureContainer{
		HTTPClientFactory: httpClientFactoryProvider(observer, metrics, logger),
		DBMigrations:      sqlMigrationsProvider(ctx, db, logger),
		DB:                db,
		DBListener:        sqlListenerProvider(sqlConfig, logger),
		Redis:             redisProvider(ctx, logger),
		Observer:          observer,
		Clock:             lazy.Value[pkgtime.Clock](pkgtime.NewAdjustableClock()),
		Metrics:           metrics,
		Logger:            logger,
	}
}

func (i *InfrastructureContainer) Close(ctx context.Context) {
	if cmd.LogPanic(ctx, i.Logger.MustLoad(), recover()) {
		defer os.Exit(1)
	}

	i.Redis.IfLoaded(func(client *redis.Client) { client.Close(ctx) })
	i.DB.IfLoaded(func(db sql.Database) { db.Close(ctx) })
}

func metricsProvider() lazy.Loader[*metric.Registry] {
	return lazy.Value(metric.NewRegistry())
}

func loggerProvider() lazy.Loader[log.Logger] {
	return lazy.New(func() (log.Logger, error) {
		logLevel, err := env.Parse[string]("LOG_LEVEL")
		if err != nil {
			return log.New(log.LevelInfo), nil
		}

		return log.New(log.ParseLevel(logLevel)), nil
	})
}

func observerProvider(
	logger lazy.Loader[log.Logger],
) lazy.Loader[observability.Observer] {
	return lazy.New(func() (observability.Observer, error) {
		return observability.New(observability.WithRequestIDLogging(logger.MustLoad())), nil
	})
}

func sqlConfigProvider() lazy.Loader[*sql.Config] {
	return lazy.New(func() (*sql.Config, error) {
		sqlConfig := &sql.Config{
			DSN: sql.DSN{
				User:     env.Must(env.Parse[string]("SQL_USER")),
				Password: env.Must(env.Parse[string]("SQL_PASSWORD")),
				Address:  env.Must(env.Parse[string]("SQL_ADDRESS")),
				Database: env.Must(env.Parse[string]("SQL_DATABASE")),
			},
		}
		sqlConnTimeout := env.Must(env.ParseOptional[time.Duration]("SQL_CONNECTION_TIMEOUT"))
		if sqlConnTimeout != nil {
			sqlConfig.ConnectionTimeout = *sqlConnTimeout
		}

		return sqlConfig, nil
	})
}

func sqlDatabaseProvider(
	ctx context.Context,
	config lazy.Loader[*sql.Config],
	logger lazy.Loader[log.Logger],
) lazy.Loader[sql.Database] {
	return lazy.New(func() (sql.Database, error) {
		db, err := sql.NewDatabase(ctx, config.MustLoad(), logger.MustLoad())
		if err != nil {
			panic(fmt.Errorf("open sql connection: %w", err))
		}

		return db, nil
	})
}

func sqlMigrationsProvider(
	ctx context.Context,
	db lazy.Loader[sql.Database],
	logger lazy.Loader[log.Logger],
) lazy.Loader[SQLMigrations] {
	return lazy.New(func() (SQLMigrations, error) {
		return NewSQLMigrations(ctx, db.MustLoad(), logger.MustLoad()), nil
	})
}

func sqlListenerProvider(
	config lazy.Loader[*sql.Config],
	logger lazy.Loader[log.Logger],
) lazy.Loader[sql.Listener] {
	return lazy.New(func() (sql.Listener, error) {
		return sql.NewListener(config.MustLoad(), logger.MustLoad()), nil
	})
}

func redisProvider(
	ctx context.Context,
	logger lazy.Loader[log.Logger],
) lazy.Loader[*redis.Client] {
	return lazy.New(func() (*redis.Client, error) {
		config := redis.Config{
			Address:  env.Must(env.Parse[string]("REDIS_ADDRESS")),
			Password: env.Must(env.ParseOrDefault("REDIS_PASSWORD", "")),
			DB:       env.Must(env.ParseOrDefault("REDIS_DB", 0)),
		}
		connTimeout := env.Must(env.ParseOptional[time.Duration]("REDIS_CONNECTION_TIMEOUT"))
		if connTimeout != nil {
			config.ConnectionTimeout = *connTimeout
		}

		client, err := redis.NewClient(ctx, config, logger.MustLoad())
		if err != nil {
			panic(fmt.Errorf("open redis connection: %w", err))
		}

		return client, nil
	})
}

func httpClientFactoryProvider(
	observer lazy.Loader[observability.Observer],
	metrics lazy.Loader[*metric.Registry],
	logger lazy.Loader[log.Logger],
) lazy.Loader[HTTPClientFactory] {
	return lazy.New(func() (HTTPClientFactory, error) {
		opts := []http.ClientOption{
			http.WithRequestObservability(observer.MustLoad(), commonhttp.RequestIDHeader),
			http.WithRequestMetrics(metrics.MustLoad()),
			http.WithRequestLogging(logger.MustLoad(), log.LevelDebug, log.LevelWarn),
		}

		timeout := env.Must(env.ParseOptional[time.Duration]("HTTP_CLIENT_TIMEOUT"))
		if timeout != nil {
			opts = append(opts, http.WithTimeout(*timeout))
		}

		return NewHTTPClientFactory(opts...), nil
	})
}
