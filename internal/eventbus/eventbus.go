// Package eventbus is an in-process typed publish/subscribe mechanism.
// Publishing never blocks: a subscriber whose buffer is full misses the event.
package eventbus

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// Metrics counts delivered and dropped events.
type Metrics interface {
	ObserveDelivered(event string)
	ObserveDropped(event string)
}

// Named events report their own metric label.
type Named interface {
	EventName() string
}

type subscriber struct {
	id    uint64
	send  func(any) bool
	close func()
}

// Bus fans events out to subscribers of the event's type.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type][]subscriber
	nextID uint64
	closed bool

	metrics Metrics
	logger  *zap.Logger
}

// New creates an empty bus.
func New(logger *zap.Logger, metrics Metrics) *Bus {
	return &Bus{
		subs:    make(map[reflect.Type][]subscriber),
		metrics: metrics,
		logger:  logger.Named("eventbus"),
	}
}

// Receiver is one subscription to events of type E.
type Receiver[E any] struct {
	bus  *Bus
	typ  reflect.Type
	id   uint64
	ch   chan E
	once sync.Once
}

// C returns the channel events are delivered on. It is closed by Close.
func (r *Receiver[E]) C() <-chan E {
	return r.ch
}

// Close unsubscribes and closes the channel.
func (r *Receiver[E]) Close() {
	r.once.Do(func() {
		r.bus.unsubscribe(r.typ, r.id)
	})
}

// Subscribe registers a receiver for events of type E buffering up to capacity events.
func Subscribe[E any](b *Bus, capacity int) *Receiver[E] {
	if capacity < 1 {
		capacity = 1
	}
	r := &Receiver[E]{
		bus: b,
		typ: reflect.TypeOf((*E)(nil)).Elem(),
		ch:  make(chan E, capacity),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(r.ch)
		r.once.Do(func() {})
		return r
	}
	b.nextID++
	r.id = b.nextID
	b.subs[r.typ] = append(b.subs[r.typ], subscriber{
		id: r.id,
		send: func(v any) bool {
			select {
			case r.ch <- v.(E):
				return true
			default:
				return false
			}
		},
		close: func() { close(r.ch) },
	})
	return r
}

// Publish delivers event to every subscriber of its type without blocking.
// It returns the number of subscribers that received it.
func Publish[E any](b *Bus, event E) int {
	typ := reflect.TypeOf((*E)(nil)).Elem()
	name := eventName(typ, event)

	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, s := range b.subs[typ] {
		if s.send(event) {
			delivered++
			b.metrics.ObserveDelivered(name)
			continue
		}
		b.metrics.ObserveDropped(name)
		b.logger.Warn("subscriber buffer full, event dropped", zap.String("event", name))
	}
	return delivered
}

// Close closes every receiver. Later subscriptions get a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for typ, subs := range b.subs {
		for _, s := range subs {
			s.close()
		}
		delete(b.subs, typ)
	}
}

func (b *Bus) unsubscribe(typ reflect.Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.subs[typ]
	for i, s := range subs {
		if s.id != id {
			continue
		}
		s.close()
		b.subs[typ] = append(subs[:i:i], subs[i+1:]...)
		return
	}
}

func eventName(typ reflect.Type, event any) string {
	if n, ok := event.(Named); ok {
		return n.EventName()
	}
	return typ.String()
}
