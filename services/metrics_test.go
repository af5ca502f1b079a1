package services

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/store"
)

func TestQueueMetricsFollowStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueueMetrics(reg)
	s := store.New(store.WithListener(m))

	_, err := s.Create("q", "Q")
	require.NoError(t, err)
	amy, _ := s.Join("q", "Amy")
	_, _ = s.Join("q", "Ben")
	require.NoError(t, s.Serve("q", amy.ID))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queuesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueLength.WithLabelValues("q", "waiting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queueLength.WithLabelValues("q", "served")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queueOperations.WithLabelValues("customer_joined")))
	assert.Equal(t, uint64(1), waitSampleCount(t, reg))

	require.NoError(t, s.Delete("q"))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.queuesTotal))
	assert.Equal(t, 0, testutil.CollectAndCount(m.queueLength))
}

func waitSampleCount(t *testing.T, reg *prometheus.Registry) uint64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == "queue_wait_seconds" {
			return mf.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	t.Fatal("queue_wait_seconds not registered")
	return 0
}

func TestQueueMetricsNoSeriesLeftAfterConcurrentDelete(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewQueueMetrics(reg)

	entered := make(chan struct{})
	release := make(chan struct{})
	slow := store.ListenerFunc(func(ev store.Event) {
		if ev.Type == store.EventCustomerJoined {
			close(entered)
			<-release
		}
	})
	s := store.New(store.WithListener(slow), store.WithListener(m))
	_, err := s.Create("q", "Q")
	require.NoError(t, err)

	joined := make(chan struct{})
	go func() {
		defer close(joined)
		_, _ = s.Join("q", "Amy")
	}()
	<-entered

	deleted := make(chan error, 1)
	go func() { deleted <- s.Delete("q") }()
	time.Sleep(20 * time.Millisecond)
	close(release)

	<-joined
	require.NoError(t, <-deleted)
	assert.Equal(t, 0, testutil.CollectAndCount(m.queueLength))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.queuesTotal))
}
