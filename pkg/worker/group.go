package worker

import (
	"context"
	"sync"
)

type Group interface {
	Do(ErrorJob)
	Wait() error
}

type failFastGroup struct {
	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup

	firstErr sync.Once
	err      error
}

// NewFailFastGroup cancels the context of every running job after the first error.
func NewFailFastGroup(ctx context.Context) Group {
	ctx, cancel := context.WithCancel(ctx)
	return &failFastGroup{ctx: ctx, cancel: cancel}
}

func (g *failFastGroup) Do(job ErrorJob) {
	g.jobs.Add(1)
	go func() {
		defer g.jobs.Done()

		err := job(g.ctx)
		if err == nil {
			return
		}

		g.firstErr.Do(func() {
			g.err = err
			g.cancel()
		})
	}()
}

// Wait returns the first job error.
func (g *failFastGroup) Wait() error {
	g.jobs.Wait()
	g.cancel()
	return g.err
}
