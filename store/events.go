package store

import (
	"time"

	"github.com/yeremiapane/queue-app/models"
)

type EventType string

const (
	EventQueueCreated    EventType = "queue_created"
	EventQueueDeleted    EventType = "queue_deleted"
	EventQueueStatus     EventType = "queue_status"
	EventCustomerJoined  EventType = "customer_joined"
	EventCustomerRemoved EventType = "customer_removed"
	EventCustomerServed  EventType = "customer_served"
)

// Event describes one applied mutation. Queue holds the state right after the
// mutation and is nil for EventQueueDeleted. Seq never decreases from one
// delivered event to the next.
type Event struct {
	Seq          uint64
	Type         EventType
	QueueID      string
	CustomerID   string
	CustomerName string
	Queue        *models.QueueSnapshot
	At           time.Time
}

// Listener is notified after every successful mutation, outside the store
// lock and in commit order. A listener must not mutate the store or call
// Observe, since both wait for the delivery in progress.
type Listener interface {
	QueueChanged(ev Event)
}

type ListenerFunc func(ev Event)

func (f ListenerFunc) QueueChanged(ev Event) {
	f(ev)
}
