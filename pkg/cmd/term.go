package cmd

import (
	"context"
	"os/signal"
	"syscall"
)

// TermSignalAwaiter returns nil once SIGTERM or SIGINT arrives, ctx error if ctx is done first.
func TermSignalAwaiter(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	<-sigCtx.Done()
	return ctx.Err()
}
