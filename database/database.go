package database

import (
	"fmt"

	"learning-platform/internal/domain/courses"
	"learning-platform/internal/domain/enrollments"
	"learning-platform/internal/domain/progress"
	"learning-platform/internal/domain/users"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens Postgres and migrates every model.
func InitDB(dsn string, production bool) (*gorm.DB, error) {
	level := logger.Warn
	if production {
		level = logger.Error
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info().Msg("connected and migrated")
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// identity
		&users.User{},

		// catalog
		&courses.Course{},
		&courses.Chapter{},
		&courses.Lesson{},

		// entitlement and progress
		&enrollments.CourseEnrollment{},
		&enrollments.GlobalAccessGrant{},
		&progress.LessonProgress{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}
