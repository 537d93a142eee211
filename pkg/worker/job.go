package worker

import (
	"context"
	"time"
)

type (
	Job      func(context.Context)
	ErrorJob func(context.Context) error
)

// PeriodicalJob runs job on every tick until ctx is done.
func PeriodicalJob(job Job, every time.Duration) ErrorJob {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				job(ctx)
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
