package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	msgUnauthenticated = "User not authenticated"
	msgIDRequired      = "Note ID is required"
	msgNotFound        = "Note not found"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NoteService implements the note operations on top of a Store. Each
// operation validates its input and then issues exactly one storage command.
type NoteService struct {
	store Store
	now   func() time.Time
	newID func() (string, error)
}

// Option configures a NoteService.
type Option func(*NoteService)

// WithClock overrides the time source used to stamp createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *NoteService) { s.now = now }
}

// WithIDGenerator overrides how item ids are generated.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *NoteService) { s.newID = gen }
}

// NewNoteService returns a service backed by store. The store is owned by
// the caller and is expected to live for the whole process.
func NewNoteService(store Store, opts ...Option) (*NoteService, error) {
	if store == nil {
		return nil, errors.New("new note service: store cannot be nil")
	}

	s := &NoteService{
		store: store,
		now:   time.Now,
		newID: newItemID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// newItemID returns a time-ordered UUID (version 7).
func newItemID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate item id: %w", err)
	}
	return id.String(), nil
}

// Create stores a new note for ownerID. The item id and createdAt are
// assigned here and never taken from the caller. A missing attachment is
// stored as the empty string.
func (s *NoteService) Create(ctx context.Context, ownerID string, in CreateNoteRequest) (Note, error) {
	if ownerID == "" {
		return Note{}, Unauthenticated(msgUnauthenticated)
	}
	if err := validatePayload(in); err != nil {
		return Note{}, err
	}

	itemID, err := s.newID()
	if err != nil {
		return Note{}, fmt.Errorf("create note: %w", err)
	}

	note := Note{
		OwnerID:    ownerID,
		ItemID:     itemID,
		Content:    String(in.Content),
		Attachment: String(StringValue(in.Attachment)),
		CreatedAt:  s.now().UnixMilli(),
	}

	if err := s.store.Put(ctx, note); err != nil {
		return Note{}, StorageFailure("create note", err)
	}

	return note, nil
}

// Get returns the note identified by itemID within ownerID's collection.
func (s *NoteService) Get(ctx context.Context, ownerID, itemID string) (Note, error) {
	key, err := noteKey(ownerID, itemID)
	if err != nil {
		return Note{}, err
	}

	note, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Note{}, NotFound(msgNotFound)
		}
		return Note{}, StorageFailure("get note", err)
	}

	return note, nil
}

// List returns all notes of ownerID. The result is never nil.
func (s *NoteService) List(ctx context.Context, ownerID string) ([]Note, error) {
	if ownerID == "" {
		return nil, Unauthenticated(msgUnauthenticated)
	}

	items, err := s.store.Query(ctx, ownerID)
	if err != nil {
		return nil, StorageFailure("list notes", err)
	}
	if items == nil {
		items = []Note{}
	}

	return items, nil
}

// Update overwrites content and attachment of the note. Fields that are
// absent or empty in the request are set to null. The note is not required
// to exist.
func (s *NoteService) Update(ctx context.Context, ownerID, itemID string, in UpdateNoteRequest) (StatusResult, error) {
	key, err := noteKey(ownerID, itemID)
	if err != nil {
		return StatusResult{}, err
	}
	if err := validatePayload(in); err != nil {
		return StatusResult{}, err
	}

	if err := s.store.Update(ctx, key, optional(in.Content), optional(in.Attachment)); err != nil {
		return StatusResult{}, StorageFailure("update note", err)
	}

	return StatusResult{Status: true}, nil
}

// Delete removes the note. Deleting a note that does not exist succeeds.
func (s *NoteService) Delete(ctx context.Context, ownerID, itemID string) (StatusResult, error) {
	key, err := noteKey(ownerID, itemID)
	if err != nil {
		return StatusResult{}, err
	}

	if err := s.store.Delete(ctx, key); err != nil {
		return StatusResult{}, StorageFailure("delete note", err)
	}

	return StatusResult{Status: true}, nil
}

func noteKey(ownerID, itemID string) (Key, error) {
	if ownerID == "" {
		return Key{}, Unauthenticated(msgUnauthenticated)
	}
	if itemID == "" {
		return Key{}, Invalid(msgIDRequired)
	}
	return Key{OwnerID: ownerID, ItemID: itemID}, nil
}

func validatePayload(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Invalid(err.Error())
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s is too long", strings.ToLower(fe.Field())))
	}
	return Invalid(strings.Join(msgs, ", "))
}
