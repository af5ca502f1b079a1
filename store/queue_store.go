package store

import (
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yeremiapane/queue-app/models"
)

// MaxNameLength bounds queue and customer names, counted in runes.
const MaxNameLength = 100

// QueueStore is the in-memory registry of queues. Every exported operation
// runs as a single critical section.
type QueueStore struct {
	mu        sync.RWMutex
	queues    map[string]*models.Queue
	order     []string
	listeners []Listener
	seq       *sequencer

	now        func() time.Time
	customerID func() string
	queueID    func() string
}

type Option func(*QueueStore)

func WithClock(now func() time.Time) Option {
	return func(s *QueueStore) {
		s.now = now
	}
}

// WithIDGenerators replaces the queue and customer id generators.
func WithIDGenerators(queueID, customerID func() string) Option {
	return func(s *QueueStore) {
		if queueID != nil {
			s.queueID = queueID
		}
		if customerID != nil {
			s.customerID = customerID
		}
	}
}

func WithListener(l Listener) Option {
	return func(s *QueueStore) {
		s.listeners = append(s.listeners, l)
	}
}

func New(opts ...Option) *QueueStore {
	s := &QueueStore{
		queues: make(map[string]*models.Queue),
		seq:    newSequencer(),
		now:    time.Now,
		customerID: func() string {
			return "customer-" + uuid.NewString()
		},
		queueID: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddListener registers l for all subsequent mutations.
func (s *QueueStore) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// NewQueueID returns a fresh identifier for Create.
func (s *QueueStore) NewQueueID() string {
	return s.queueID()
}

func (s *QueueStore) Create(id, name string) (models.QueueSnapshot, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" {
		return models.QueueSnapshot{}, validationError("Queue ID is required")
	}
	if name == "" {
		return models.QueueSnapshot{}, validationError("Queue name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return models.QueueSnapshot{}, validationError(fmt.Sprintf("Queue name must be at most %d characters", MaxNameLength))
	}

	s.mu.Lock()
	if _, exists := s.queues[id]; exists {
		s.mu.Unlock()
		return models.QueueSnapshot{}, ErrQueueExists
	}
	q := s.insertQueue(id, name)
	snap := q.Snapshot()
	s.publishLocked(Event{Type: EventQueueCreated, QueueID: id, Queue: &snap, At: q.CreatedAt})
	return snap, nil
}

func (s *QueueStore) Join(queueID, name string) (models.CustomerSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.CustomerSnapshot{}, validationError("Name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return models.CustomerSnapshot{}, validationError(fmt.Sprintf("Name must be at most %d characters", MaxNameLength))
	}

	s.mu.Lock()
	customer, ev, err := s.join(queueID, name)
	if err != nil {
		s.mu.Unlock()
		return models.CustomerSnapshot{}, err
	}
	s.publishLocked(ev)
	return customer, nil
}

func (s *QueueStore) Remove(queueID, customerID string) error {
	s.mu.Lock()
	q, ok := s.queues[queueID]
	if !ok {
		s.mu.Unlock()
		return ErrQueueNotFound
	}
	idx := indexOfCustomer(q.Customers, customerID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrCustomerNotFound
	}
	removed := q.Customers[idx]
	customers := make([]models.Customer, 0, len(q.Customers)-1)
	customers = append(customers, q.Customers[:idx]...)
	customers = append(customers, q.Customers[idx+1:]...)
	q.Customers = recalculatePositions(customers)
	snap := q.Snapshot()
	s.publishLocked(Event{
		Type:         EventCustomerRemoved,
		QueueID:      queueID,
		CustomerID:   removed.ID,
		CustomerName: removed.Name,
		Queue:        &snap,
		At:           s.now(),
	})
	return nil
}

// Serve marks a customer as served. Serving an already served customer
// succeeds without changing anything.
func (s *QueueStore) Serve(queueID, customerID string) error {
	s.mu.Lock()
	q, ok := s.queues[queueID]
	if !ok {
		s.mu.Unlock()
		return ErrQueueNotFound
	}
	idx := indexOfCustomer(q.Customers, customerID)
	if idx < 0 {
		s.mu.Unlock()
		return ErrCustomerNotFound
	}
	if q.Customers[idx].Status == models.CustomerServed {
		s.mu.Unlock()
		return nil
	}
	q.Customers[idx].Status = models.CustomerServed
	served := q.Customers[idx]
	q.Customers = recalculatePositions(q.Customers)
	snap := q.Snapshot()
	s.publishLocked(Event{
		Type:         EventCustomerServed,
		QueueID:      queueID,
		CustomerID:   served.ID,
		CustomerName: served.Name,
		Queue:        &snap,
		At:           s.now(),
	})
	return nil
}

func (s *QueueStore) Delete(queueID string) error {
	s.mu.Lock()
	if _, ok := s.queues[queueID]; !ok {
		s.mu.Unlock()
		return ErrQueueNotFound
	}
	delete(s.queues, queueID)
	for i, id := range s.order {
		if id == queueID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.publishLocked(Event{Type: EventQueueDeleted, QueueID: queueID, At: s.now()})
	return nil
}

// SetActive opens or closes a queue for new joins.
func (s *QueueStore) SetActive(queueID string, active bool) (models.QueueSnapshot, error) {
	s.mu.Lock()
	q, ok := s.queues[queueID]
	if !ok {
		s.mu.Unlock()
		return models.QueueSnapshot{}, ErrQueueNotFound
	}
	changed := q.IsActive != active
	q.IsActive = active
	snap := q.Snapshot()
	if !changed {
		s.mu.Unlock()
		return snap, nil
	}
	s.publishLocked(Event{Type: EventQueueStatus, QueueID: queueID, Queue: &snap, At: s.now()})
	return snap, nil
}

func (s *QueueStore) Get(queueID string) (models.QueueSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[queueID]
	if !ok {
		return models.QueueSnapshot{}, false
	}
	return q.Snapshot(), true
}

// Observe calls fn with the current snapshot of a queue (nil when it does not
// exist) in the same order listeners see events: every mutation committed
// before the snapshot has been delivered, none after it has.
func (s *QueueStore) Observe(queueID string, fn func(snapshot *models.QueueSnapshot)) {
	s.mu.RLock()
	var snap *models.QueueSnapshot
	if q, ok := s.queues[queueID]; ok {
		current := q.Snapshot()
		snap = &current
	}
	t := s.seq.ticket()
	s.mu.RUnlock()

	s.seq.run(t, func() { fn(snap) })
}

// All returns every queue in insertion order.
func (s *QueueStore) All() []models.QueueSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	queues := make([]models.QueueSnapshot, 0, len(s.order))
	for _, id := range s.order {
		queues = append(queues, s.queues[id].Snapshot())
	}
	return queues
}

func (s *QueueStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

func (s *QueueStore) Customer(queueID, customerID string) (models.CustomerSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.queues[queueID]
	if !ok {
		return models.CustomerSnapshot{}, ErrQueueNotFound
	}
	idx := indexOfCustomer(q.Customers, customerID)
	if idx < 0 {
		return models.CustomerSnapshot{}, ErrCustomerNotFound
	}
	return q.Customers[idx].Snapshot(), nil
}

func (s *QueueStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.queues)
}

// insertQueue must be called with s.mu held.
func (s *QueueStore) insertQueue(id, name string) *models.Queue {
	q := &models.Queue{
		ID:        id,
		Name:      name,
		Customers: []models.Customer{},
		CreatedAt: s.now(),
		IsActive:  true,
	}
	s.queues[id] = q
	s.order = append(s.order, id)
	return q
}

// join must be called with s.mu held.
func (s *QueueStore) join(queueID, name string) (models.CustomerSnapshot, Event, error) {
	q, ok := s.queues[queueID]
	if !ok {
		return models.CustomerSnapshot{}, Event{}, ErrQueueNotFound
	}
	if !q.IsActive {
		return models.CustomerSnapshot{}, Event{}, ErrQueueInactive
	}

	waiting := 0
	for _, c := range q.Customers {
		if c.Status != models.CustomerWaiting {
			continue
		}
		if strings.EqualFold(c.Name, name) {
			return models.CustomerSnapshot{}, Event{}, ErrDuplicateName
		}
		waiting++
	}

	customer := models.Customer{
		ID:       s.customerID(),
		Name:     name,
		Position: waiting + 1,
		JoinedAt: s.now(),
		Status:   models.CustomerWaiting,
	}
	q.Customers = recalculatePositions(append(q.Customers, customer))

	idx := indexOfCustomer(q.Customers, customer.ID)
	joined := q.Customers[idx].Snapshot()
	snap := q.Snapshot()
	return joined, Event{
		Type:         EventCustomerJoined,
		QueueID:      queueID,
		CustomerID:   customer.ID,
		CustomerName: customer.Name,
		Queue:        &snap,
		At:           customer.JoinedAt,
	}, nil
}

// recalculatePositions moves waiting customers ahead of served ones, keeping
// the relative order inside each group, and renumbers the waiting ones 1..N.
// Served positions are left as they were.
func recalculatePositions(customers []models.Customer) []models.Customer {
	result := make([]models.Customer, 0, len(customers))
	var served []models.Customer
	for _, c := range customers {
		if c.Status == models.CustomerWaiting {
			c.Position = len(result) + 1
			result = append(result, c)
		} else {
			served = append(served, c)
		}
	}
	return append(result, served...)
}

func indexOfCustomer(customers []models.Customer, customerID string) int {
	for i, c := range customers {
		if c.ID == customerID {
			return i
		}
	}
	return -1
}

// publishLocked releases s.mu and delivers events in commit order. It must be
// called with s.mu held for writing.
func (s *QueueStore) publishLocked(events ...Event) {
	t := s.seq.ticket()
	for i := range events {
		events[i].Seq = t
	}
	listeners := s.listeners
	s.mu.Unlock()

	s.seq.run(t, func() {
		for _, ev := range events {
			notify(listeners, ev)
		}
	})
}

func notify(listeners []Listener, ev Event) {
	for _, l := range listeners {
		l.QueueChanged(ev)
	}
}
