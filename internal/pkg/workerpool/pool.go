package workerpool

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Job func(ctx context.Context)

type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	log    *zap.Logger
}

func NewWorkerPool(ctx context.Context, log *zap.Logger, workerCount int, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	pool := &WorkerPool{
		queue: make(chan Job, queueSize),
		log:   log,
	}

	for range workerCount {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.log.Debug("Worker received shutdown signal")
			return
		case job, ok := <-p.queue:
			if !ok {
				// queue closed
				return
			}
			job(ctx)
			p.wg.Done()
		}
	}
}

// Submit enqueues job and reports whether it was accepted. A full queue or a
// pool that is shutting down drops the job.
func (p *WorkerPool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.log.Warn("Worker pool closed: job dropped")
		return false
	}

	p.wg.Add(1)
	select {
	case p.queue <- job:
		return true
	default:
		p.wg.Done()
		p.log.Warn("Worker pool queue full: job dropped")
		return false
	}
}

func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		p.log.Warn("Worker pool shutdown timed out")
	case <-done:
		p.log.Info("Worker pool shutdown complete")
	}
}

// WithRetry wraps job so it is attempted up to retries times, delay apart.
// onFailure runs once after the last attempt fails.
func WithRetry(log *zap.Logger, retries int, delay time.Duration, job func(ctx context.Context) error, onFailure func(err error)) Job {
	if retries < 1 {
		retries = 1
	}
	return func(ctx context.Context) {
		var err error
		for i := range retries {
			if ctx.Err() != nil {
				log.Warn("Job canceled before execution")
				return
			}

			err = job(ctx)
			if err == nil {
				return // success
			}
			log.Warn("Job failed", zap.Int("attempt", i+1), zap.Int("retries", retries), zap.Error(err))

			if i+1 < retries {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}
		log.Error("Job failed after max retries", zap.Error(err))
		if onFailure != nil {
			onFailure(err)
		}
	}
}
