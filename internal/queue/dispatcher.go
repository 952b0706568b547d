// Package queue implements the asynchronous job orchestrator: delayed
// dispatch, a worker pool, retry with per-task backoff schedules, overlap
// prevention keyed by order identifier, and terminal-failure callbacks.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// execution tracks one task through its retry attempts.
type execution struct {
	task    Task
	attempt int
}

// Dispatcher schedules tasks onto a pool of workers. A task's delay is a
// scheduling hint: the task never runs before the delay elapses. Workers pull
// ready tasks and execute them in parallel; terminal failures invoke the
// task's Failed callback and never crash a worker.
type Dispatcher struct {
	logger zerolog.Logger
	ready  chan *execution
	locks  *keyedMutex

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	pending sync.WaitGroup

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

// NewDispatcher creates a dispatcher and starts its worker pool.
func NewDispatcher(workers int, logger zerolog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		logger: logger.With().Str("component", "queue").Logger(),
		ready:  make(chan *execution, 64),
		locks:  newKeyedMutex(),
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[*time.Timer]struct{}),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		group.Go(func() error {
			d.worker(groupCtx)
			return nil
		})
	}
	d.group = group

	d.logger.Info().Int("workers", workers).Msg("job dispatcher started")

	return d
}

// Dispatch schedules the task to run once the delay has elapsed. Dispatch
// after Close is dropped with a warning.
func (d *Dispatcher) Dispatch(task Task, delay time.Duration) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn().Str("task", task.Name()).Msg("dispatch after close, task dropped")
		return
	}
	d.pending.Add(1)
	d.mu.Unlock()

	d.logger.Debug().
		Str("task", task.Name()).
		Dur("delay", delay).
		Msg("task dispatched")

	d.schedule(&execution{task: task, attempt: 1}, delay)
}

// Close stops accepting new tasks, waits for in-flight and scheduled work up
// to the context deadline, then stops the workers.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		d.logger.Warn().Msg("shutdown deadline reached with tasks still pending")
	}

	d.cancel()
	_ = d.group.Wait()

	d.mu.Lock()
	for timer := range d.timers {
		timer.Stop()
	}
	d.mu.Unlock()

	d.logger.Info().Msg("job dispatcher stopped")
	return nil
}

func (d *Dispatcher) schedule(e *execution, delay time.Duration) {
	if delay <= 0 {
		d.enqueue(e)
		return
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.timers, timer)
		d.mu.Unlock()
		d.enqueue(e)
	})

	d.mu.Lock()
	d.timers[timer] = struct{}{}
	d.mu.Unlock()
}

func (d *Dispatcher) enqueue(e *execution) {
	select {
	case d.ready <- e:
	case <-d.ctx.Done():
		d.pending.Done()
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-d.ready:
			d.run(ctx, e)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, e *execution) {
	task := e.task

	if key := task.OverlapKey(); key != "" {
		unlock := d.locks.Lock(key)
		defer unlock()
	}

	err := d.safeRun(ctx, task)
	if err == nil {
		d.logger.Debug().
			Str("task", task.Name()).
			Int("attempt", e.attempt).
			Msg("task completed")
		d.pending.Done()
		return
	}

	// Only failures explicitly marked retryable consume the retry budget;
	// anything unexpected fails fast on the first occurrence.
	if IsRetryable(err) && e.attempt < task.MaxAttempts() {
		delay := backoffDelay(task.Backoff(), e.attempt)
		d.logger.Warn().
			Err(err).
			Str("task", task.Name()).
			Int("attempt", e.attempt).
			Dur("retry_in", delay).
			Msg("task failed, retrying")
		e.attempt++
		d.schedule(e, delay)
		return
	}

	d.logger.Error().
		Err(err).
		Str("task", task.Name()).
		Int("attempt", e.attempt).
		Msg("task failed terminally")

	d.safeFailed(ctx, task, err)
	d.pending.Done()
}

func (d *Dispatcher) safeRun(ctx context.Context, task Task) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task %s panicked: %v", task.Name(), rec)
		}
	}()
	return task.Run(ctx)
}

func (d *Dispatcher) safeFailed(ctx context.Context, task Task, taskErr error) {
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.Error().
				Interface("panic", rec).
				Str("task", task.Name()).
				Msg("failure callback panicked")
		}
	}()
	task.Failed(ctx, taskErr)
}

// backoffDelay returns the wait before retrying after the given failed
// attempt (1-based). The last schedule entry applies to later attempts.
func backoffDelay(backoff []time.Duration, attempt int) time.Duration {
	if len(backoff) == 0 {
		return 10 * time.Second
	}
	if attempt > len(backoff) {
		return backoff[len(backoff)-1]
	}
	return backoff[attempt-1]
}
