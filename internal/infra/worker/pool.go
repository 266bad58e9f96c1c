// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Pool is a small bounded worker pool used for best-effort fan-out work
// (notification deliveries). Saturation is reported to the caller instead of
// blocking the submitting workflow.
type Pool struct {
	wg   sync.WaitGroup
	jobs chan func(ctx context.Context) error
	quit chan struct{}
	n    int
	log  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	compLog := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{
		jobs: make(chan func(ctx context.Context) error, workers*4),
		quit: make(chan struct{}),
		n:    workers,
		log:  &compLog,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.log.Warn().Int("worker", id).Err(err).Msg("task error")
					}
				}
			}
		}(i)
	}
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

func (p *Pool) Submit(task func(ctx context.Context) error) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		// drop when saturated; callers fall back to inline delivery
		return errors.New("worker queue full")
	}
}
