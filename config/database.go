package config

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"HavenGo/models"
)

// OpenCache opens the local embedded cache and migrates its tables. The
// handle is returned to the caller for injection rather than stashed in a
// package global, so tests can run against their own databases.
func OpenCache(config Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(config.CachePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", config.CachePath, err)
	}

	if err := migrateCache(db); err != nil {
		return nil, err
	}

	return db, nil
}

func migrateCache(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.JournalEntry{},
		&models.ChatMessage{},
		&models.Conversation{},
		&models.MoodRecord{},
	)
	if err != nil {
		return fmt.Errorf("migrate cache: %w", err)
	}
	return nil
}
