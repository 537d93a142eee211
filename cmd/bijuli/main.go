package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bijuliyatra/bijuli-client/internal/booking"
	"github.com/bijuliyatra/bijuli-client/internal/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/internal/session"
	pkgcmd "github.com/bijuliyatra/bijuli-client/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/pkg/env"
)

const usage = `usage: bijuli <command> [flags]

commands:
  login       sign in with email and password
  verify-otp  complete a sign in that requires an emailed code
  logout      end the session
  status      show the current session
  slots       show start slots of a station for a date
  book        reserve a charging slot
  bookings    list your bookings
  cancel      cancel a booking
`

var (
	errUsage           = errors.New("invalid usage")
	errVolatileSession = errors.New("session storage does not survive between runs, set SESSION_STORAGE to sql or redis")
)

func main() {
	ctx := context.Background()
	if err := env.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if _, ok := os.LookupEnv("LOG_LEVEL"); !ok {
		_ = os.Setenv("LOG_LEVEL", "error")
	}

	err := run(ctx, os.Args[1:], os.Stdout)
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "error: "+describeError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	kind, err := session.StorageKind()
	if err != nil {
		return err
	}
	if kind == session.StorageMemory {
		return errVolatileSession
	}

	infra := cmd.NewInfrastructureContainer(ctx)
	defer infra.Close(ctx)

	sessions := session.NewDependencyContainer(infra, func(_ context.Context, route string) {
		fmt.Fprintf(out, "session expired, sign in again (%s)\n", route)
	})
	defer sessions.Wait()
	bookings := booking.NewDependencyContainer(infra, sessions.AuthorizedClient)

	_, err = sessions.Manager.MustLoad().Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	app := &application{
		out:      out,
		sessions: sessions,
		bookings: bookings,
	}

	command, ok := app.commands()[args[0]]
	if !ok {
		return errUsage
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if pkgcmd.TermSignalAwaiter(ctx) == nil {
			cancel()
		}
	}()

	return command(ctx, args[1:])
}
