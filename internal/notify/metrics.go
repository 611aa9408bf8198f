package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for notification delivery.
type Metrics struct {
	Delivered    prometheus.Counter
	Failed       prometheus.Counter
	Dropped      *prometheus.CounterVec
	QueueDepth   prometheus.Gauge
	BreakerState prometheus.Gauge
}

// NewMetrics registers the notification metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Delivered: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmatrix_notify_delivered_total",
			Help: "Tier upgrade notifications delivered",
		}),
		Failed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmatrix_notify_failed_total",
			Help: "Tier upgrade notifications whose delivery failed",
		}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_notify_dropped_total",
			Help: "Tier upgrade notifications dropped before delivery by reason",
		}, []string{"reason"}), // reason: "queue_full", "circuit_open", "closed"
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trustmatrix_notify_queue_depth",
			Help: "Notifications waiting for delivery",
		}),
		BreakerState: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trustmatrix_notify_circuit_open",
			Help: "Current circuit state (0=closed, 1=open)",
		}),
	}
}

func (m *Metrics) incDelivered() {
	if m != nil {
		m.Delivered.Inc()
	}
}

func (m *Metrics) incFailed() {
	if m != nil {
		m.Failed.Inc()
	}
}

func (m *Metrics) incDropped(reason string) {
	if m != nil {
		m.Dropped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) setQueueDepth(n int) {
	if m != nil {
		m.QueueDepth.Set(float64(n))
	}
}

func (m *Metrics) setBreakerOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.BreakerState.Set(1)
	} else {
		m.BreakerState.Set(0)
	}
}
