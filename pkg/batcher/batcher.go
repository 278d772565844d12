// Package batcher buffers items and hands them to a callback in rate limited batches.
package batcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

// ErrStopped is returned by Add and Flush after Stop.
var ErrStopped = fmt.Errorf("batcher stopped: %w", context.Canceled)

// Batcher buffers items and flushes them by size, by interval or on request.
// A failed flush is logged and its items are dropped.
type Batcher[T any] struct {
	flush         func(context.Context, []T) error
	items         chan T
	flushRequests chan chan struct{}
	flushSize     int
	flushInterval time.Duration
	rl            ratelimit.Limiter
	logger        *zap.Logger

	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New constructs a Batcher calling flush with at most flushSize items and at
// most rps times per second.
func New[T any](logger *zap.Logger, flush func(context.Context, []T) error, flushSize int, flushInterval time.Duration, rps int) *Batcher[T] {
	if flushSize < 1 {
		flushSize = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Batcher[T]{
		logger:        logger,
		flush:         flush,
		items:         make(chan T, flushSize*2),
		flushRequests: make(chan chan struct{}),
		flushSize:     flushSize,
		flushInterval: flushInterval,
		rl:            ratelimit.New(rps),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the background flushing loop. It must be called once.
func (b *Batcher[T]) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

// Stop flushes what is buffered and stops the background loop. Safe to call twice.
func (b *Batcher[T]) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})
	b.wg.Wait()
}

// Add queues an item, blocking while the queue is full.
func (b *Batcher[T]) Add(ctx context.Context, item T) error {
	select {
	case <-b.stop:
		return ErrStopped
	default:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case <-b.done:
		return ErrStopped
	case b.items <- item:
		return nil
	}
}

// Flush hands every item added so far to the callback and waits until it returned.
func (b *Batcher[T]) Flush(ctx context.Context) error {
	reply := make(chan struct{})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.stop:
		return ErrStopped
	case <-b.done:
		return ErrStopped
	case b.flushRequests <- reply:
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-reply:
		return nil
	}
}

func (b *Batcher[T]) run(ctx context.Context) {
	defer b.wg.Done()
	defer close(b.done)

	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	buf := make([]T, 0, b.flushSize)

	send := func(ctx context.Context) {
		for len(buf) > 0 {
			n := min(len(buf), b.flushSize)
			batch := make([]T, n)
			copy(batch, buf[:n])
			buf = append(buf[:0], buf[n:]...)

			b.rl.Take()
			if err := b.flush(ctx, batch); err != nil {
				b.logger.Error("batch not flushed", zap.Int("size", len(batch)), zap.Error(err))
				continue
			}
			b.logger.Debug("batch flushed", zap.Int("size", len(batch)))
		}
	}

	// collect moves what is already queued into buf.
	collect := func() {
		for {
			select {
			case item := <-b.items:
				buf = append(buf, item)
			default:
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			collect()
			send(context.WithoutCancel(ctx))
			return

		case <-b.stop:
			collect()
			send(context.WithoutCancel(ctx))
			return

		case reply := <-b.flushRequests:
			collect()
			send(ctx)
			close(reply)

		case item := <-b.items:
			buf = append(buf, item)
			if len(buf) >= b.flushSize {
				send(ctx)
			}

		case <-ticker.C:
			send(ctx)
		}
	}
}
