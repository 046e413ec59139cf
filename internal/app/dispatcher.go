package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadgen-service/internal/domain"
)

// NotificationQueue buffers notifications between the request path and the
// dispatcher (in-memory, Redis, etc).
type NotificationQueue interface {
	Enqueue(ctx context.Context, n domain.Notification) error
	// Dequeue blocks until a notification is available or ctx is done.
	Dequeue(ctx context.Context) (domain.Notification, error)
}

// Notifier delivers a notification, typically as an email. It reports
// success as a bool and must not panic or return errors to the caller.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) bool
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n domain.Notification) bool

func (f NotifierFunc) Notify(ctx context.Context, n domain.Notification) bool { return f(ctx, n) }

// Dispatcher drains the queue with a fixed pool of workers.
type Dispatcher struct {
	queue    NotificationQueue
	notifier Notifier
	workers  int
	timeout  time.Duration
	retry    time.Duration
	logger   *zap.Logger
}

func NewDispatcher(queue NotificationQueue, notifier Notifier, workers int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		queue:    queue,
		notifier: notifier,
		workers:  workers,
		timeout:  15 * time.Second,
		retry:    time.Second,
		logger:   logger,
	}
}

// Run blocks until ctx is canceled. It returns nil on a clean shutdown.
func (d *Dispatcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < d.workers; i++ {
		worker := i
		g.Go(func() error {
			return d.work(ctx, worker)
		})
	}
	return g.Wait()
}

func (d *Dispatcher) work(ctx context.Context, worker int) error {
	log := d.logger.With(zap.Int("worker", worker))
	for {
		n, err := d.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Warn("dequeue failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(d.retry):
			}
			continue
		}
		d.deliver(ctx, log, n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, log *zap.Logger, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			log.Error("notifier panicked", zap.String("kind", string(n.Kind)), zap.Any("panic", r))
		}
	}()
	if !d.notifier.Notify(ctx, n) {
		log.Warn("notification not delivered", zap.String("kind", string(n.Kind)))
		return
	}
	log.Debug("notification delivered", zap.String("kind", string(n.Kind)))
}
