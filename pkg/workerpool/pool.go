package workerpool

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("workerpool: pool closed")

// Pool is a fixed set of workers consuming a bounded queue.
// Submit blocks while all workers are busy and the queue is full.
type Pool[T, R any] struct {
	fn    func(context.Context, T) (R, error)
	tasks chan task[T, R]
	quit  chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
}

type task[T, R any] struct {
	ctx    context.Context
	item   T
	handle *Handle[R]
}

// Handle is a pending result of a submitted item.
type Handle[R any] struct {
	done  chan struct{}
	value R
	err   error
}

// Result waits for the item to be processed or for ctx to be done.
func (h *Handle[R]) Result(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Done is closed once the result is available.
func (h *Handle[R]) Done() <-chan struct{} {
	return h.done
}

func (h *Handle[R]) resolve(value R, err error) {
	h.value = value
	h.err = err
	close(h.done)
}

// New starts workers goroutines that apply fn to submitted items.
// capacity is the number of items that may wait in the queue.
func New[T, R any](workers, capacity int, fn func(context.Context, T) (R, error)) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool[T, R]{
		fn:    fn,
		tasks: make(chan task[T, R], capacity),
		quit:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit enqueues item, blocking while the queue is full.
func (p *Pool[T, R]) Submit(ctx context.Context, item T) (*Handle[R], error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrPoolClosed
	}

	h := &Handle[R]{done: make(chan struct{})}
	select {
	case p.tasks <- task[T, R]{ctx: ctx, item: item, handle: h}:
		return h, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-p.quit:
		return nil, ErrPoolClosed
	}
}

// Close rejects new work and waits until queued items are finished.
// Items whose submit context is already done are resolved with its error.
func (p *Pool[T, R]) Close() {
	p.once.Do(func() {
		close(p.quit)
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool[T, R]) work() {
	defer p.wg.Done()
	for t := range p.tasks {
		if err := t.ctx.Err(); err != nil {
			var zero R
			t.handle.resolve(zero, err)
			continue
		}
		value, err := p.fn(t.ctx, t.item)
		t.handle.resolve(value, err)
	}
}
