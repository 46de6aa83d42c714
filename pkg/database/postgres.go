package database

import (
	"log"

	"github.com/retreathub/booking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: at most one live offer per retreat+room scope,
	// so a freed seat can never be offered to two waitlist entries.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_waitlist_active_offer
		ON waitlist_entries (retreat_id, COALESCE(room_id, 0))
		WHERE status = 'offered'
	`)

	return db
}

// Migrate creates or updates the schema. Split out so tests can run it
// against an in-memory database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Retreat{},
		&models.Room{},
		&models.Booking{},
		&models.Payment{},
		&models.PaymentScheduleEntry{},
		&models.WaitlistEntry{},
		&models.EmailAuditLogEntry{},
		&models.EmailTemplate{},
		&models.WebhookEvent{},
		&models.Feedback{},
	)
}
