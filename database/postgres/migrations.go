package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/notes"
)

// Migrate creates every table the service needs.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tables notes.Tables) error {
	if err := createNotesTable(ctx, pool, tables.Notes); err != nil {
		return fmt.Errorf("migrate up %s: %w", tables.Notes, err)
	}
	return nil
}

// DropTables drops every table created by Migrate.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables notes.Tables) error {
	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tables.Notes}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate down %s: %w", tables.Notes, err)
	}
	return nil
}

func createNotesTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			owner_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			content TEXT,
			attachment TEXT,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (owner_id, item_id)
		);
	`, quotedTable)

	_, err := pool.Exec(ctx, sql)
	if err != nil {
		return fmt.Errorf("create notes table: %w", err)
	}
	return nil
}
