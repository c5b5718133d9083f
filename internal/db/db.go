package db

import (
	"fmt"
	"log"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devchannels/internal/models"
)

// Open connects to the database named by dsn and runs migrations. The
// dialector is chosen by the DSN prefix: "postgres://" for PostgreSQL,
// "sqlite://" for a local SQLite file ("sqlite://:memory:" works for
// tests). The returned handle is passed to handlers explicitly; there
// is no package-level connection.
func Open(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch {
	case strings.HasPrefix(dsn, "postgres://"):
		dialector = postgres.Open(dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		// Cascading deletes depend on foreign keys being enforced.
		dialector = sqlite.Open(path + "?_pragma=foreign_keys(1)")
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL prefix: %q", dsn)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		// Every pooled connection to :memory: would see its own empty
		// database; keep a single one.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return conn, nil
}

// Migrate creates or updates the schema for all models. Ordering
// matters: referenced tables first so the cascade constraints resolve.
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Channel{},
		&models.Message{},
		&models.Reply{},
		&models.Rating{},
	)
}

// MustOpen is Open for main: it exits the process on failure.
func MustOpen(dsn string) *gorm.DB {
	conn, err := Open(dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	log.Println("Database connection established")
	return conn
}
