package database

import (
	"context"
	"fmt"

	"github.com/sagarc03/notes"
	"github.com/sagarc03/notes/database/dynamodb"
	"github.com/sagarc03/notes/database/postgres"
	"github.com/sagarc03/notes/database/sqlite"
)

// Config holds the configuration for connecting to a note storage backend.
type Config struct {
	// Type specifies the database type: "sqlite", "postgres" or "dynamodb"
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres dynamodb"`
	// DSN is the data source name (connection string). Unused by dynamodb.
	DSN string `mapstructure:"dsn"`
	// Tables holds the table names
	Tables notes.Tables `mapstructure:"tables"`
	// DynamoDB holds the AWS settings used when Type is "dynamodb"
	DynamoDB dynamodb.Config `mapstructure:"dynamodb"`
}

// Database is a connected storage backend.
type Database interface {
	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	// Migrate creates the notes table if it does not exist.
	Migrate(ctx context.Context) error
	// Validate checks the notes table has the expected layout.
	Validate(ctx context.Context) error
	// GetStore returns the note store.
	GetStore() notes.Store
	// Close releases the connection.
	Close() error
}

// Connect opens the configured backend. It does not run migrations.
func Connect(ctx context.Context, cfg Config) (Database, error) {
	switch cfg.Type {
	case "sqlite":
		if err := cfg.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tables: %w", err)
		}
		db, err := sqlite.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "postgres":
		if err := cfg.Tables.Validate(); err != nil {
			return nil, fmt.Errorf("invalid tables: %w", err)
		}
		db, err := postgres.Connect(ctx, cfg.DSN, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	case "dynamodb":
		db, err := dynamodb.Connect(ctx, cfg.DynamoDB, cfg.Tables)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Type)
	}
}
