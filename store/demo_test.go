package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDemoDataIsIdempotent(t *testing.T) {
	s := newTestStore()

	assert.Equal(t, 2, s.EnsureDemoData())
	for i := 0; i < 5; i++ {
		assert.Equal(t, 0, s.EnsureDemoData())
	}

	queues := s.All()
	require.Len(t, queues, 2)

	cs, ok := s.Get(DemoQueueCustomerService)
	require.True(t, ok)
	assert.Equal(t, "Customer Service", cs.Name)
	assert.Equal(t, []string{"Alice Johnson", "Bob Smith", "Carol Davis"}, names(cs.Customers))
	assertPositionsContiguous(t, cs)

	ap, ok := s.Get(DemoQueueAppointments)
	require.True(t, ok)
	assert.Equal(t, "Appointments", ap.Name)
	assert.Len(t, ap.Customers, 2)
}

func TestEnsureDemoDataRecreatesOnlyMissingQueues(t *testing.T) {
	s := newTestStore()
	s.EnsureDemoData()

	cs, _ := s.Get(DemoQueueCustomerService)
	require.NoError(t, s.Serve(DemoQueueCustomerService, cs.Customers[0].ID))
	require.NoError(t, s.Delete(DemoQueueAppointments))

	assert.Equal(t, 1, s.EnsureDemoData())

	after, _ := s.Get(DemoQueueCustomerService)
	assert.Len(t, after.Served(), 1)
	assert.Len(t, s.All(), 2)
}

func TestEnsureDemoDataNotifiesListeners(t *testing.T) {
	counts := map[EventType]int{}
	s := newTestStore(WithListener(ListenerFunc(func(ev Event) {
		counts[ev.Type]++
	})))

	s.EnsureDemoData()
	s.EnsureDemoData()

	assert.Equal(t, 2, counts[EventQueueCreated])
	assert.Equal(t, 5, counts[EventCustomerJoined])
}
