package notes

import "context"

// Store is the table notes are persisted in. Every method is a single storage
// command keyed by (OwnerID, ItemID).
//
// Implementations must be safe for concurrent use. Lookup misses are reported
// as ErrNotFound; any other error is treated as a storage failure.
type Store interface {
	// Get returns the note at key, or ErrNotFound when no item exists there.
	Get(ctx context.Context, key Key) (Note, error)

	// Put writes the full note, replacing any item at the same key.
	Put(ctx context.Context, note Note) error

	// Update sets content and attachment on the item at key. A nil value
	// stores null. Updating a key with no item is a silent no-op.
	Update(ctx context.Context, key Key, content, attachment *string) error

	// Delete removes the item at key. Deleting a missing key succeeds.
	Delete(ctx context.Context, key Key) error

	// Query returns every note whose OwnerID equals ownerID, in the
	// backend's default order. It returns an empty slice, never nil.
	Query(ctx context.Context, ownerID string) ([]Note, error)
}
