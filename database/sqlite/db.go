package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sagarc03/notes"
)

type column struct {
	name     string
	dataType string
	nullable bool
}

// noteColumns is the notes table as Migrate creates it, in column order.
var noteColumns = []column{
	{"owner_id", "text", false},
	{"item_id", "text", false},
	{"content", "text", true},
	{"attachment", "text", true},
	{"created_at", "integer", false},
}

// ValidateSchema checks that the notes table exists with the columns Migrate
// creates.
func ValidateSchema(ctx context.Context, db *sql.DB, tables notes.Tables) error {
	name := tables.Notes
	if !notes.IsValidTableName(name) {
		return fmt.Errorf("validate schema: invalid table name: %s", name)
	}

	actual, err := readColumns(ctx, db, name)
	if err != nil {
		return fmt.Errorf("validate schema %s: %w", name, err)
	}
	if len(actual) == 0 {
		return fmt.Errorf("validate schema: table %s does not exist", name)
	}

	if problems := diffColumns(actual); len(problems) > 0 {
		return fmt.Errorf("table %s schema validation failed: %s", name, strings.Join(problems, "; "))
	}

	return nil
}

// readColumns returns the table's columns keyed by name. PRAGMA table_info
// yields no rows for a missing table.
func readColumns(ctx context.Context, db *sql.DB, table string) (map[string]column, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols := make(map[string]column)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		cols[name] = column{name: name, dataType: strings.ToLower(dataType), nullable: notNull == 0}
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Join(errors.New("read columns"), err)
	}

	return cols, nil
}

func diffColumns(actual map[string]column) []string {
	var missing, problems []string
	for _, want := range noteColumns {
		got, ok := actual[want.name]
		if !ok {
			missing = append(missing, want.name)
			continue
		}
		if got.dataType != want.dataType {
			problems = append(problems, fmt.Sprintf("%s: expected %s, got %s", want.name, want.dataType, got.dataType))
		}
		if got.nullable != want.nullable {
			problems = append(problems, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", want.name, want.nullable, got.nullable))
		}
	}

	if len(missing) > 0 {
		problems = append([]string{"missing columns: " + strings.Join(missing, ", ")}, problems...)
	}
	return problems
}
