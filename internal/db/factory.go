package db

import (
	"context"
	"fmt"

	"github.com/techflow/techflow-backend/internal/db/backends/memory"
	"github.com/techflow/techflow-backend/internal/db/backends/postgres"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
)

// Config holds database configuration
type Config struct {
	Type string // "memory" or "postgres"
	DSN  string // connection string, required for postgres
}

// NewDatabase creates a new database instance based on configuration
func NewDatabase(config *Config) (interfaces.Database, error) {
	if config == nil {
		config = &Config{Type: "memory"}
	}

	switch config.Type {
	case "", "memory":
		return memory.NewDatabase(), nil
	case "postgres":
		if config.DSN == "" {
			return nil, fmt.Errorf("postgres database requires a DSN")
		}
		return postgres.NewDatabase(config.DSN), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// MustNewDatabase creates a new database instance and panics on error
func MustNewDatabase(config *Config) interfaces.Database {
	db, err := NewDatabase(config)
	if err != nil {
		panic(fmt.Sprintf("failed to create database: %v", err))
	}
	return db
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase() interfaces.Database {
	return memory.NewDatabase()
}

// ConnectAndMigrate connects to the database and runs migrations
func ConnectAndMigrate(ctx context.Context, db interfaces.Database, schemas []*interfaces.Schema) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx, schemas); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
