package database

import (
	"fmt"

	"civix-api/internal/domain/issues"
	"civix-api/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and migrates every domain model.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	// gen_random_uuid() for issue ids
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return nil, fmt.Errorf("database: enable pgcrypto: %w", err)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&users.Profile{},
		&issues.Issue{},
	); err != nil {
		return nil, fmt.Errorf("database: migrate: %w", err)
	}

	return db, nil
}
