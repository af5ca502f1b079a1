package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/queue-app/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMigrateCreatesActivityTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))
	// second run is a no-op
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable(&models.QueueEvent{}))
	require.NoError(t, db.Create(&models.QueueEvent{QueueID: "q", Action: "queue_created", OccurredAt: time.Now()}).Error)
}
