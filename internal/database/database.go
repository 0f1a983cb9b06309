package database

import (
	"log"

	"github.com/gdg-garage/conference-api/internal/config"
	"github.com/gdg-garage/conference-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

// Open opens the database at path and migrates the schema. ":memory:" is
// accepted for tests.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if path == ":memory:" {
		// Every new connection would see its own empty in-memory database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Participant{},
		&models.Registration{},
		&models.Adult{},
		&models.Child{},
		&models.RegistrationHistory{},
	)
}
