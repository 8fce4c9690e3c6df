package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ConfirmFunc performs the deferred state transition for one order.
type ConfirmFunc func(ctx context.Context, orderID int64) error

type job struct {
	orderID int64
	fireAt  time.Time
}

// Scheduler runs confirmation jobs on a fixed-size worker pool, each job
// firing once after the configured delay. Delivery is at-most-once: a job
// pending at shutdown is dropped and the order stays PENDING, and a failed
// job is logged, never retried. The scheduling request path only pays for a
// channel send.
type Scheduler struct {
	delay   time.Duration
	workers int
	confirm ConfirmFunc
	logger  *zap.Logger

	jobs chan job
	wg   sync.WaitGroup
}

func New(workers int, delay time.Duration, confirm ConfirmFunc, logger *zap.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		delay:   delay,
		workers: workers,
		confirm: confirm,
		logger:  logger,
		jobs:    make(chan job, workers*16),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(s.workers)
	for i := 0; i < s.workers; i++ {
		go s.worker(ctx)
	}
}

// Schedule enqueues a confirmation firing delay from now. When the queue is
// full the job is dropped with a warning rather than blocking the caller.
func (s *Scheduler) Schedule(orderID int64) {
	j := job{orderID: orderID, fireAt: time.Now().Add(s.delay)}
	select {
	case s.jobs <- j:
	default:
		s.logger.Warn("confirmation queue full, dropping job", zap.Int64("order_id", orderID))
	}
}

// Wait blocks until all workers have exited after the Start context is done.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.jobs:
			if !s.sleepUntil(ctx, j.fireAt) {
				return
			}
			if err := s.confirm(ctx, j.orderID); err != nil {
				s.logger.Error("confirmation job failed",
					zap.Int64("order_id", j.orderID),
					zap.Error(err),
				)
				continue
			}
			s.logger.Info("order confirmed", zap.Int64("order_id", j.orderID))
		}
	}
}

func (s *Scheduler) sleepUntil(ctx context.Context, t time.Time) bool {
	d := time.Until(t)
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
