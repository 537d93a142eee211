package worker

import (
	"runtime"
	"sync"
)

const (
	MaxWorkersCountNumCPU    = -1
	MaxWorkersCountUnlimited = 0
)

type SimpleJob func()

// Pool runs jobs in background goroutines, Do blocks while all workers are busy.
type Pool interface {
	Do(SimpleJob)
	Wait()
}

type pool struct {
	wg    sync.WaitGroup
	slots chan struct{}
}

func NewPool(maxWorkers int) Pool {
	if maxWorkers <= MaxWorkersCountNumCPU {
		maxWorkers = runtime.NumCPU()
	}

	p := &pool{}
	if maxWorkers > 0 {
		p.slots = make(chan struct{}, maxWorkers)
	}
	return p
}

func (p *pool) Do(job SimpleJob) {
	p.wg.Add(1)
	if p.slots != nil {
		p.slots <- struct{}{}
	}

	go func() {
		defer p.wg.Done()
		if p.slots != nil {
			defer func() { <-p.slots }()
		}

		job()
	}()
}

func (p *pool) Wait() {
	p.wg.Wait()
}
