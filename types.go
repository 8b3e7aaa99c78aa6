package notes

import (
	"errors"
	"fmt"
	"regexp"
)

// Note is a single note owned by one caller.
type Note struct {
	OwnerID    string  `json:"ownerId" dynamodbav:"ownerId"`
	ItemID     string  `json:"itemId" dynamodbav:"itemId"`
	Content    *string `json:"content" dynamodbav:"content"`
	Attachment *string `json:"attachment" dynamodbav:"attachment"`
	CreatedAt  int64   `json:"createdAt" dynamodbav:"createdAt"`
}

// Key addresses a note: OwnerID is the partition, ItemID the item within it.
type Key struct {
	OwnerID string
	ItemID  string
}

// Key returns the storage key of n.
func (n Note) Key() Key {
	return Key{OwnerID: n.OwnerID, ItemID: n.ItemID}
}

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	Content    string  `json:"content" validate:"max=1048576"`
	Attachment *string `json:"attachment,omitempty" validate:"omitempty,max=2048"`
}

// UpdateNoteRequest is the body of PUT /notes/{id}. Absent fields are
// cleared, not preserved.
type UpdateNoteRequest struct {
	Content    *string `json:"content,omitempty" validate:"omitempty,max=1048576"`
	Attachment *string `json:"attachment,omitempty" validate:"omitempty,max=2048"`
}

// StatusResult is returned by operations that have no entity to return.
type StatusResult struct {
	Status bool `json:"status"`
}

// Tables holds configurable table names for note storage.
type Tables struct {
	Notes string `mapstructure:"notes"`
}

var validTableNameRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// IsValidTableName checks if a table name is valid (lowercase, alphanumeric with underscores, max 63 chars).
func IsValidTableName(name string) bool {
	return validTableNameRegex.MatchString(name) && len(name) <= 63
}

// Validate checks that all required table names are set and valid.
func (t Tables) Validate() error {
	if t.Notes == "" {
		return errors.New("validate tables: notes table name cannot be empty")
	}

	if !IsValidTableName(t.Notes) {
		return fmt.Errorf("validate tables: invalid notes table name: %s (must match ^[a-z_][a-z0-9_]*$ and be <= 63 chars)", t.Notes)
	}

	return nil
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// StringValue returns the value of p, or "" when p is nil.
func StringValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
