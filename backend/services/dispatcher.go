package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PromotionScheduler queues a verified-expert check without waiting for it.
type PromotionScheduler interface {
	Schedule(userID uint) bool
}

type Evaluator interface {
	Evaluate(ctx context.Context, userID uint) (Outcome, error)
}

type DispatcherConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// EvaluationDispatcher runs evaluations on a fixed pool of workers fed by a
// buffered queue. Each task gets its own context; the request that
// scheduled it has already returned.
type EvaluationDispatcher struct {
	evaluator Evaluator
	cfg       DispatcherConfig
	log       *zap.Logger

	queue chan uint
	wg    sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool
}

func NewEvaluationDispatcher(evaluator Evaluator, cfg DispatcherConfig, log *zap.Logger) *EvaluationDispatcher {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &EvaluationDispatcher{
		evaluator: evaluator,
		cfg:       cfg,
		log:       log.Named("evaluation-dispatcher"),
		queue:     make(chan uint, cfg.QueueSize),
	}
}

func (d *EvaluationDispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	d.log.Info("starting evaluation workers", zap.Int("workers", d.cfg.Workers), zap.Int("queue_size", d.cfg.QueueSize))
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.runLoop(i + 1)
	}
}

// Schedule enqueues an evaluation for userID. It never blocks: when the
// queue is full or the dispatcher is stopped the task is dropped and false
// is returned.
func (d *EvaluationDispatcher) Schedule(userID uint) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.log.Warn("evaluation dropped, dispatcher stopped", zap.Uint("user_id", userID))
		return false
	}

	select {
	case d.queue <- userID:
		return true
	default:
		d.log.Warn("evaluation dropped, queue full", zap.Uint("user_id", userID), zap.Int("queue_size", d.cfg.QueueSize))
		return false
	}
}

// Stop refuses new work, lets the workers drain the queue and waits for
// them, or for ctx to expire.
func (d *EvaluationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.log.Info("evaluation workers stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for evaluation workers: %w", ctx.Err())
	}
}

func (d *EvaluationDispatcher) runLoop(workerID int) {
	defer d.wg.Done()
	for userID := range d.queue {
		d.run(workerID, userID)
	}
}

func (d *EvaluationDispatcher) run(workerID int, userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("evaluation panicked", zap.Int("worker_id", workerID), zap.Uint("user_id", userID), zap.Any("panic", r))
		}
	}()

	outcome, err := d.evaluator.Evaluate(ctx, userID)
	if err != nil {
		d.log.Error("evaluation failed", zap.Int("worker_id", workerID), zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	d.log.Debug("evaluation finished", zap.Int("worker_id", workerID), zap.Uint("user_id", userID), zap.Stringer("outcome", outcome))
}
