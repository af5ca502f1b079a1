package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/store"
)

// QueueMetrics keeps prometheus series in step with the queue store.
type QueueMetrics struct {
	queueLength     *prometheus.GaugeVec
	queueOperations *prometheus.CounterVec
	queuesTotal     prometheus.Gauge
	waitSeconds     prometheus.Histogram
}

func NewQueueMetrics(reg prometheus.Registerer) *QueueMetrics {
	factory := promauto.With(reg)
	return &QueueMetrics{
		queueLength: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "queue_customers",
				Help: "Current number of customers per queue and status",
			},
			[]string{"queue_id", "status"},
		),
		queueOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_operations_total",
				Help: "Total applied queue store mutations",
			},
			[]string{"operation"},
		),
		queuesTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "queues_total",
				Help: "Current number of queues in the store",
			},
		),
		waitSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "queue_wait_seconds",
				Help:    "Time between joining and being served",
				Buckets: prometheus.ExponentialBuckets(15, 2, 10),
			},
		),
	}
}

// QueueChanged implements store.Listener.
func (m *QueueMetrics) QueueChanged(ev store.Event) {
	m.queueOperations.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case store.EventQueueCreated:
		m.queuesTotal.Inc()
	case store.EventQueueDeleted:
		m.queuesTotal.Dec()
		m.queueLength.DeleteLabelValues(ev.QueueID, "waiting")
		m.queueLength.DeleteLabelValues(ev.QueueID, "served")
		return
	case store.EventCustomerServed:
		m.observeWait(ev)
	}

	if ev.Queue != nil {
		stats := ev.Queue.Stats()
		m.queueLength.WithLabelValues(ev.QueueID, "waiting").Set(float64(stats.Waiting))
		m.queueLength.WithLabelValues(ev.QueueID, "served").Set(float64(stats.Served))
	}
}

func (m *QueueMetrics) observeWait(ev store.Event) {
	if ev.Queue == nil {
		return
	}
	for _, c := range ev.Queue.Customers {
		if c.ID != ev.CustomerID {
			continue
		}
		joinedAt, err := models.ParseTimestamp(c.JoinedAt)
		if err != nil {
			return
		}
		m.waitSeconds.Observe(ev.At.Sub(joinedAt).Seconds())
		return
	}
}
