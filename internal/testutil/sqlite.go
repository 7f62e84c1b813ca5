package testutil

import (
	"testing"

	"github.com/Xebarter/Clevers-Website-sub000/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB returns a migrated in-memory database. A single connection is
// used so every query sees the same memory database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.Application{}, &model.PaymentNotification{}))

	return db
}

// SeedApplication inserts an application with the given id and a pending payment.
func SeedApplication(t *testing.T, db *gorm.DB, app model.Application) *model.Application {
	t.Helper()

	if app.PaymentStatus == "" {
		app.PaymentStatus = model.PaymentStatusPending
	}
	if app.ApplicationStatus == "" {
		app.ApplicationStatus = model.ApplicationStatusSubmitted
	}
	require.NoError(t, db.Create(&app).Error)

	return &app
}
