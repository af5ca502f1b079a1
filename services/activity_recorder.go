package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/queue-app/models"
	"github.com/yeremiapane/queue-app/store"
	"github.com/yeremiapane/queue-app/utils"
	"gorm.io/gorm"
)

const activityBatchSize = 100

// ActivityRecorder menulis setiap perubahan queue ke activity log secara
// asinkron. Event yang datang saat buffer penuh dibuang dan dicatat di log.
type ActivityRecorder struct {
	DB       *gorm.DB
	Interval time.Duration

	events   chan models.QueueEvent
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewActivityRecorder(db *gorm.DB, buffer int) *ActivityRecorder {
	if buffer <= 0 {
		buffer = 1
	}
	return &ActivityRecorder{
		DB:       db,
		Interval: 1 * time.Second,
		events:   make(chan models.QueueEvent, buffer),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// QueueChanged implements store.Listener.
func (ar *ActivityRecorder) QueueChanged(ev store.Event) {
	row := toQueueEvent(ev)
	select {
	case ar.events <- row:
	default:
		utils.ErrorLogger.WithFields(logrus.Fields{
			"queue_id": ev.QueueID,
			"action":   ev.Type,
		}).Warn("Activity buffer full, dropping event")
	}
}

func (ar *ActivityRecorder) Start() {
	go func() {
		defer close(ar.done)

		ticker := time.NewTicker(ar.Interval)
		defer ticker.Stop()

		pending := make([]models.QueueEvent, 0, activityBatchSize)
		for {
			select {
			case row := <-ar.events:
				pending = append(pending, row)
				if len(pending) >= activityBatchSize {
					pending = ar.flush(pending)
				}
			case <-ticker.C:
				pending = ar.flush(pending)
			case <-ar.stopChan:
				for {
					select {
					case row := <-ar.events:
						pending = append(pending, row)
					default:
						ar.flush(pending)
						return
					}
				}
			}
		}
	}()
}

// Stop flushes buffered events and waits for the writer goroutine to exit.
func (ar *ActivityRecorder) Stop() {
	ar.stopOnce.Do(func() {
		close(ar.stopChan)
	})
	<-ar.done
}

// Recent returns the newest activity rows of a queue, newest first.
func (ar *ActivityRecorder) Recent(ctx context.Context, queueID string, limit int) ([]models.QueueEvent, error) {
	var rows []models.QueueEvent
	err := ar.DB.WithContext(ctx).
		Where("queue_id = ?", queueID).
		Order("occurred_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query activity for %s: %w", queueID, err)
	}
	return rows, nil
}

func (ar *ActivityRecorder) flush(pending []models.QueueEvent) []models.QueueEvent {
	if len(pending) == 0 {
		return pending
	}

	err := ar.DB.CreateInBatches(pending, activityBatchSize).Error
	if err == nil {
		utils.InfoLogger.Debugf("Wrote %d activity rows", len(pending))
		return pending[:0]
	}

	// Satu baris rusak tidak boleh menjatuhkan seluruh batch; tulis ulang per baris.
	utils.ErrorLogger.WithError(err).WithField("rows", len(pending)).Warn("Batch insert failed, retrying row by row")
	dropped := 0
	for i := range pending {
		row := pending[i]
		row.ID = 0
		if err := ar.DB.Create(&row).Error; err != nil {
			dropped++
			utils.ErrorLogger.WithError(err).WithFields(logrus.Fields{
				"queue_id": row.QueueID,
				"action":   row.Action,
			}).Error("Failed to write activity row")
		}
	}
	if dropped > 0 {
		utils.ErrorLogger.WithField("dropped", dropped).Error("Activity rows lost")
	}
	return pending[:0]
}

func toQueueEvent(ev store.Event) models.QueueEvent {
	row := models.QueueEvent{
		QueueID:    ev.QueueID,
		Action:     string(ev.Type),
		OccurredAt: ev.At.UTC(),
	}
	if ev.CustomerID != "" {
		id := ev.CustomerID
		row.CustomerID = &id
	}
	if ev.Queue != nil {
		row.Waiting = len(ev.Queue.Waiting())
	}

	switch ev.Type {
	case store.EventQueueCreated:
		row.Detail = fmt.Sprintf("Queue \"%s\" created", ev.Queue.Name)
	case store.EventQueueDeleted:
		row.Detail = "Queue deleted"
	case store.EventQueueStatus:
		if ev.Queue.IsActive {
			row.Detail = "Queue opened"
		} else {
			row.Detail = "Queue closed"
		}
	case store.EventCustomerJoined:
		row.Detail = fmt.Sprintf("%s joined", ev.CustomerName)
	case store.EventCustomerServed:
		row.Detail = fmt.Sprintf("%s served", ev.CustomerName)
	case store.EventCustomerRemoved:
		row.Detail = fmt.Sprintf("%s removed", ev.CustomerName)
	}
	return row
}
