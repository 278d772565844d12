package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventBusPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eventbus",
		Name:      "delivered_total",
		Help:      "Count of events delivered to subscribers.",
	}, []string{"event"})
	eventBusDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "eventbus",
		Name:      "dropped_total",
		Help:      "Count of events dropped because a subscriber buffer was full.",
	}, []string{"event"})
)

// EventBus tracks event delivery.
type EventBus struct{}

// NewEventBus creates an EventBus metrics collector.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// ObserveDelivered counts an event handed to a subscriber.
func (m EventBus) ObserveDelivered(event string) {
	eventBusPublishedTotal.WithLabelValues(orUnknown(event)).Inc()
}

// ObserveDropped counts an event a subscriber could not take.
func (m EventBus) ObserveDropped(event string) {
	eventBusDroppedTotal.WithLabelValues(orUnknown(event)).Inc()
}
