package models

import (
	"time"
)

type CustomerStatus string

const (
	CustomerWaiting CustomerStatus = "waiting"
	CustomerServed  CustomerStatus = "served"
)

// TimestampLayout is the ISO-8601 form every timestamp takes on the wire.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampLayout, s)
}

// Customer is one participant of a queue. Position is only meaningful while
// the customer is waiting.
type Customer struct {
	ID       string
	Name     string
	Position int
	JoinedAt time.Time
	Status   CustomerStatus
}

type Queue struct {
	ID        string
	Name      string
	Customers []Customer
	CreatedAt time.Time
	IsActive  bool
}

// CustomerSnapshot -> bentuk JSON customer untuk response API
type CustomerSnapshot struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Position int            `json:"position"`
	JoinedAt string         `json:"joinedAt"`
	Status   CustomerStatus `json:"status"`
}

// QueueSnapshot -> bentuk JSON queue untuk response API
type QueueSnapshot struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Customers []CustomerSnapshot `json:"customers"`
	CreatedAt string             `json:"createdAt"`
	IsActive  bool               `json:"isActive"`
}

// QueueStats is a per-queue head count for the dashboard and metrics.
type QueueStats struct {
	QueueID  string `json:"queueId"`
	Name     string `json:"name"`
	Waiting  int    `json:"waiting"`
	Served   int    `json:"served"`
	IsActive bool   `json:"isActive"`
}

func (c Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{
		ID:       c.ID,
		Name:     c.Name,
		Position: c.Position,
		JoinedAt: FormatTimestamp(c.JoinedAt),
		Status:   c.Status,
	}
}

func (q *Queue) Snapshot() QueueSnapshot {
	customers := make([]CustomerSnapshot, 0, len(q.Customers))
	for _, c := range q.Customers {
		customers = append(customers, c.Snapshot())
	}
	return QueueSnapshot{
		ID:        q.ID,
		Name:      q.Name,
		Customers: customers,
		CreatedAt: FormatTimestamp(q.CreatedAt),
		IsActive:  q.IsActive,
	}
}

func (s QueueSnapshot) Stats() QueueStats {
	stats := QueueStats{QueueID: s.ID, Name: s.Name, IsActive: s.IsActive}
	for _, c := range s.Customers {
		if c.Status == CustomerWaiting {
			stats.Waiting++
		} else {
			stats.Served++
		}
	}
	return stats
}

// Waiting returns the waiting customers of a snapshot in position order.
func (s QueueSnapshot) Waiting() []CustomerSnapshot {
	var waiting []CustomerSnapshot
	for _, c := range s.Customers {
		if c.Status == CustomerWaiting {
			waiting = append(waiting, c)
		}
	}
	return waiting
}

func (s QueueSnapshot) Served() []CustomerSnapshot {
	var served []CustomerSnapshot
	for _, c := range s.Customers {
		if c.Status == CustomerServed {
			served = append(served, c)
		}
	}
	return served
}
