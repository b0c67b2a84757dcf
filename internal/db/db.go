package db

import (
	"log"
	"tsubame/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open connects to Postgres and migrates the schema. The returned handle
// is passed into each repository at construction time; there is no
// package-level singleton.
func Open(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey, which the favorite toggle relies on.
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	log.Println("Database connection established")

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return gdb, nil
}

// Migrate runs the schema migration. Split out so tests can reuse it
// against an in-memory database.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Favorite{},
	)
}
