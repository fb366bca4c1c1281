package database

import (
	"log"

	"mealdesk-backend/internal/config"
	"mealdesk-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Database connected. Migration complete.")
}

// Migrate runs AutoMigrate plus the manual statements GORM does not express.
// Shared with the test helper so tests run against the same schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Center{},
		&models.User{},
		&models.Restaurant{},
		&models.Dish{},
		&models.DailyMenu{},
		&models.MenuOption{},
		&models.Reservation{},
		&models.AuditLog{},
		&models.NotificationEvent{},
	)
	if err != nil {
		return err
	}

	// The real duplicate-order guard. The pre-insert query in the reservation
	// service is only a fast path; under concurrent inserts this index is what
	// actually holds. Guest rows carry guest names in the key and personal rows
	// have empty strings there, so one partial index covers both variants.
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_live_unique
		ON reservations (user_id, daily_menu_id, option_id, guest_first_name, guest_last_name)
		WHERE status = 'reserved'
	`).Error; err != nil {
		return err
	}

	return nil
}
