package cmd

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/bijuliyatra/bijuli-client/pkg/log"
)

// LogPanic reports a value returned by recover, it must be called as LogPanic(ctx, logger, recover()) from a deferred function.
func LogPanic(ctx context.Context, logger log.Logger, recovered any) bool {
	if recovered == nil {
		return false
	}

	logger.With(log.Fields{
		"panic": fmt.Sprint(recovered),
		"stack": string(debug.Stack()),
	}).Error(ctx, "app failed with panic")
	return true
}
