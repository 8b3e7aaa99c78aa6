// Package postgres implements the note store using PostgreSQL
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sagarc03/notes"
)

type repo struct {
	pool      *pgxpool.Pool
	tableName string
}

func (r *repo) table() string {
	return pgx.Identifier{r.tableName}.Sanitize()
}

func (r *repo) Get(ctx context.Context, key notes.Key) (notes.Note, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, item_id, content, attachment, created_at
		FROM %s
		WHERE owner_id = $1 AND item_id = $2
	`, r.table())

	var n notes.Note
	err := r.pool.QueryRow(ctx, query, key.OwnerID, key.ItemID).Scan(
		&n.OwnerID, &n.ItemID, &n.Content, &n.Attachment, &n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, fmt.Errorf("get: %w", err)
	}

	return n, nil
}

func (r *repo) Put(ctx context.Context, n notes.Note) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, item_id, content, attachment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, item_id) DO UPDATE
		SET content = EXCLUDED.content,
			attachment = EXCLUDED.attachment,
			created_at = EXCLUDED.created_at
	`, r.table())

	if _, err := r.pool.Exec(ctx, query, n.OwnerID, n.ItemID, n.Content, n.Attachment, n.CreatedAt); err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *repo) Update(ctx context.Context, key notes.Key, content, attachment *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, attachment = $2
		WHERE owner_id = $3 AND item_id = $4
	`, r.table())

	if _, err := r.pool.Exec(ctx, query, content, attachment, key.OwnerID, key.ItemID); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	return nil
}

func (r *repo) Delete(ctx context.Context, key notes.Key) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE owner_id = $1 AND item_id = $2`, r.table())

	if _, err := r.pool.Exec(ctx, query, key.OwnerID, key.ItemID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

func (r *repo) Query(ctx context.Context, ownerID string) ([]notes.Note, error) {
	query := fmt.Sprintf(`
		SELECT owner_id, item_id, content, attachment, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY item_id
	`, r.table())

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	items := make([]notes.Note, 0)
	for rows.Next() {
		var n notes.Note
		if err := rows.Scan(&n.OwnerID, &n.ItemID, &n.Content, &n.Attachment, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("query: scan: %w", err)
		}
		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: rows: %w", err)
	}

	return items, nil
}
