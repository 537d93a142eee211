package main

import (
	"context"

	"github.com/bijuliyatra/bijuli-client/internal/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/internal/session"
	"github.com/bijuliyatra/bijuli-client/internal/session/app/service"
	pkgcmd "github.com/bijuliyatra/bijuli-client/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/pkg/env"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

func main() {
	ctx := context.Background()
	if err := env.LoadDotEnv(); err != nil {
		panic(err)
	}

	infra := cmd.NewInfrastructureContainer(ctx)
	defer infra.Close(ctx)
	logger := infra.Logger.MustLoad()

	container := session.NewDependencyContainer(infra, func(ctx context.Context, route string) {
		logger.WithField("route", route).Info(ctx, "login required")
	})
	defer container.Wait()

	manager := container.Manager.MustLoad()
	manager.Subscribe(func(state service.State) {
		fields := log.Fields{"authenticated": state.Authenticated}
		if state.User != nil {
			fields["userID"] = state.User.UserID.String()
			fields["role"] = state.User.Role
		}
		logger.With(fields).Info(ctx, "session state changed")
	})

	logger.Info(ctx, "app is starting")
	_, err := manager.Bootstrap(ctx)
	if err != nil {
		logger.WithError(err).Warn(ctx, "failed to restore session, starting unauthenticated")
	}

	logger.Info(ctx, "app is ready")
	pkgcmd.MustRun(ctx, logger,
		pkgcmd.TermSignalAwaiter,
		manager.Run,
	)

	snapshot := infra.Metrics.MustLoad().Snapshot()
	logger.WithField("counters", snapshot.Counters).Info(ctx, "app is stopped")
}
