package store

const (
	DemoQueueCustomerService = "demo-queue-123"
	DemoQueueAppointments    = "demo-queue-456"
)

var demoQueues = []struct {
	id        string
	name      string
	customers []string
}{
	{
		id:        DemoQueueCustomerService,
		name:      "Customer Service",
		customers: []string{"Alice Johnson", "Bob Smith", "Carol Davis"},
	},
	{
		id:        DemoQueueAppointments,
		name:      "Appointments",
		customers: []string{"David Wilson", "Emma Brown"},
	},
}

// EnsureDemoData creates each demo queue that is missing and fills it through
// the regular join path. Queues that already exist are left alone, so calling
// it repeatedly is safe. It returns the number of queues it created.
func (s *QueueStore) EnsureDemoData() int {
	var events []Event

	s.mu.Lock()
	for _, demo := range demoQueues {
		if _, exists := s.queues[demo.id]; exists {
			continue
		}
		q := s.insertQueue(demo.id, demo.name)
		snap := q.Snapshot()
		events = append(events, Event{Type: EventQueueCreated, QueueID: demo.id, Queue: &snap, At: q.CreatedAt})

		for _, name := range demo.customers {
			_, ev, err := s.join(demo.id, name)
			if err != nil {
				continue
			}
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		s.mu.Unlock()
		return 0
	}
	s.publishLocked(events...)

	created := 0
	for _, ev := range events {
		if ev.Type == EventQueueCreated {
			created++
		}
	}
	return created
}
