package cmd_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bijuliyatra/bijuli-client/pkg/cmd"
	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

func TestRun_StopsOtherJobsWhenOneCompletes(t *testing.T) {
	stopped := make(chan struct{})

	err := cmd.Run(context.Background(), log.NewStub(),
		func(ctx context.Context) error {
			<-ctx.Done()
			close(stopped)
			return ctx.Err()
		},
		func(context.Context) error {
			return nil
		},
	)

	assert.NoError(t, err)
	<-stopped
}

func TestRun_ReturnsJobError(t *testing.T) {
	expected := errors.New("listener failed")

	err := cmd.Run(context.Background(), log.NewStub(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
		func(context.Context) error {
			return expected
		},
	)

	assert.ErrorIs(t, err, expected)
}

func TestTermSignalAwaiter_ReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, cmd.TermSignalAwaiter(ctx), context.Canceled)
}

func TestLogPanic(t *testing.T) {
	ctx := context.Background()
	assert.False(t, cmd.LogPanic(ctx, log.NewStub(), nil))

	caught := func() (caught bool) {
		defer func() {
			caught = cmd.LogPanic(ctx, log.NewStub(), recover())
		}()
		panic(errors.New("storage unreachable"))
	}()
	assert.True(t, caught)
}
