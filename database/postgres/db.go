package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/notes"
)

type column struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
	Nullable string `db:"is_nullable"`
}

type expectedColumn struct {
	name     string
	dataType string
	nullable bool
}

// noteColumns is the notes table as Migrate creates it, in column order.
var noteColumns = []expectedColumn{
	{"owner_id", "text", false},
	{"item_id", "text", false},
	{"content", "text", true},
	{"attachment", "text", true},
	{"created_at", "bigint", false},
}

// ValidateSchema checks that the notes table exists in the public schema with
// the columns Migrate creates.
func ValidateSchema(ctx context.Context, pool *pgxpool.Pool, tables notes.Tables) error {
	name := tables.Notes
	if !notes.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	rows, err := pool.Query(ctx, `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
	`, name)
	if err != nil {
		return fmt.Errorf("validate schema %s: query columns: %w", name, err)
	}

	cols, err := pgx.CollectRows(rows, pgx.RowToStructByName[column])
	if err != nil {
		return fmt.Errorf("validate schema %s: read columns: %w", name, err)
	}
	if len(cols) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", name)
	}

	actual := make(map[string]column, len(cols))
	for _, c := range cols {
		actual[c.Name] = c
	}

	var missing, problems []string
	for _, want := range noteColumns {
		got, ok := actual[want.name]
		if !ok {
			missing = append(missing, want.name)
			continue
		}
		if dt := strings.ToLower(got.DataType); dt != want.dataType {
			problems = append(problems, fmt.Sprintf("%s: expected %s, got %s", want.name, want.dataType, dt))
		}
		if nullable := got.Nullable == "YES"; nullable != want.nullable {
			problems = append(problems, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", want.name, want.nullable, nullable))
		}
	}
	if len(missing) > 0 {
		problems = append([]string{"missing columns: " + strings.Join(missing, ", ")}, problems...)
	}

	if len(problems) > 0 {
		return fmt.Errorf("table %s schema validation failed: %s", name, strings.Join(problems, "; "))
	}

	return nil
}
