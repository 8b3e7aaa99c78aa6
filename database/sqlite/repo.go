// Package sqlite implements the note store using SQLite
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sagarc03/notes"
)

type repo struct {
	db        *sql.DB
	tableName string
}

func (r *repo) Get(ctx context.Context, key notes.Key) (notes.Note, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT owner_id, item_id, content, attachment, created_at
		FROM %s
		WHERE owner_id = ? AND item_id = ?`, quoteIdentifier(r.tableName))

	n, err := scanNote(r.db.QueryRowContext(ctx, query, key.OwnerID, key.ItemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notes.Note{}, notes.ErrNotFound
		}
		return notes.Note{}, fmt.Errorf("get: %w", err)
	}

	return n, nil
}

func (r *repo) Put(ctx context.Context, n notes.Note) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`INSERT INTO %s (owner_id, item_id, content, attachment, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (owner_id, item_id) DO UPDATE
		SET content = excluded.content,
			attachment = excluded.attachment,
			created_at = excluded.created_at`, quoteIdentifier(r.tableName))

	_, err := r.db.ExecContext(ctx, query,
		n.OwnerID, n.ItemID, nullable(n.Content), nullable(n.Attachment), n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}

	return nil
}

func (r *repo) Update(ctx context.Context, key notes.Key, content, attachment *string) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`UPDATE %s
		SET content = ?, attachment = ?
		WHERE owner_id = ? AND item_id = ?`, quoteIdentifier(r.tableName))

	if _, err := r.db.ExecContext(ctx, query, nullable(content), nullable(attachment), key.OwnerID, key.ItemID); err != nil {
		return fmt.Errorf("update: %w", err)
	}

	return nil
}

func (r *repo) Delete(ctx context.Context, key notes.Key) error {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`DELETE FROM %s WHERE owner_id = ? AND item_id = ?`, quoteIdentifier(r.tableName))

	if _, err := r.db.ExecContext(ctx, query, key.OwnerID, key.ItemID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

func (r *repo) Query(ctx context.Context, ownerID string) ([]notes.Note, error) {
	query := fmt.Sprintf( //nolint:gosec // G201: table name is validated
		`SELECT owner_id, item_id, content, attachment, created_at
		FROM %s
		WHERE owner_id = ?
		ORDER BY item_id`, quoteIdentifier(r.tableName))

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]notes.Note, 0)
	for rows.Next() {
		n, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("query: scan: %w", scanErr)
		}
		items = append(items, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: rows: %w", err)
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNote(s scanner) (notes.Note, error) {
	var (
		n                   notes.Note
		content, attachment sql.NullString
	)

	if err := s.Scan(&n.OwnerID, &n.ItemID, &content, &attachment, &n.CreatedAt); err != nil {
		return notes.Note{}, err
	}

	if content.Valid {
		n.Content = notes.String(content.String)
	}
	if attachment.Valid {
		n.Attachment = notes.String(attachment.String)
	}

	return n, nil
}

// nullable maps nil to SQL NULL.
func nullable(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
