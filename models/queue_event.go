package models

import (
	"time"
)

// QueueEvent is one row of the append-only activity log.
type QueueEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QueueID    string    `gorm:"type:varchar(64);not null;index:idx_queue_events_queue" json:"queueId"`
	CustomerID *string   `gorm:"type:varchar(64)" json:"customerId,omitempty"`
	Action     string    `gorm:"type:varchar(32);not null" json:"action"`
	Detail     string    `gorm:"type:text" json:"detail,omitempty"`
	Waiting    int       `gorm:"not null;default:0" json:"waiting"`
	OccurredAt time.Time `gorm:"not null;index:idx_queue_events_queue" json:"occurredAt"`
}
