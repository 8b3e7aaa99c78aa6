package notes_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SpyNoteStore struct {
	mock.Mock
}

func (s *SpyNoteStore) Get(ctx context.Context, key notes.Key) (notes.Note, error) {
	args := s.Called(ctx, key)
	return args.Get(0).(notes.Note), args.Error(1)
}

func (s *SpyNoteStore) Put(ctx context.Context, note notes.Note) error {
	args := s.Called(ctx, note)
	return args.Error(0)
}

func (s *SpyNoteStore) Update(ctx context.Context, key notes.Key, content, attachment *string) error {
	args := s.Called(ctx, key, content, attachment)
	return args.Error(0)
}

func (s *SpyNoteStore) Delete(ctx context.Context, key notes.Key) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}

func (s *SpyNoteStore) Query(ctx context.Context, ownerID string) ([]notes.Note, error) {
	args := s.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notes.Note), args.Error(1)
}

var fixedTime = time.Date(2026, 1, 12, 7, 0, 0, 0, time.UTC)

func NewNoteService(t *testing.T, opts ...notes.Option) (*notes.NoteService, *SpyNoteStore) {
	t.Helper()
	spy := new(SpyNoteStore)
	opts = append([]notes.Option{notes.WithClock(func() time.Time { return fixedTime })}, opts...)
	s, err := notes.NewNoteService(spy, opts...)
	require.NoError(t, err, "new note service")
	return s, spy
}

func TestNewNoteService_NilStore(t *testing.T) {
	_, err := notes.NewNoteService(nil)
	assert.Error(t, err)
}

func TestNoteService_Create(t *testing.T) {
	t.Run("stores and returns the note", func(t *testing.T) {
		s, spy := NewNoteService(t, notes.WithIDGenerator(func() (string, error) { return "n1", nil }))

		want := notes.Note{
			OwnerID:    "alice",
			ItemID:     "n1",
			Content:    notes.String("hello"),
			Attachment: notes.String(""),
			CreatedAt:  fixedTime.UnixMilli(),
		}
		spy.On("Put", mock.Anything, want).Return(nil).Once()

		got, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{Content: "hello"})

		require.NoError(t, err)
		assert.Equal(t, want, got)
		spy.AssertExpectations(t)
	})

	t.Run("keeps attachment", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Put", mock.Anything, mock.MatchedBy(func(n notes.Note) bool {
			return notes.StringValue(n.Attachment) == "photo.png"
		})).Return(nil).Once()

		got, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{Content: "x", Attachment: notes.String("photo.png")})

		require.NoError(t, err)
		assert.Equal(t, "photo.png", notes.StringValue(got.Attachment))
		spy.AssertExpectations(t)
	})

	t.Run("empty request stores empty strings", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Put", mock.Anything, mock.Anything).Return(nil).Once()

		got, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{})

		require.NoError(t, err)
		require.NotNil(t, got.Content)
		require.NotNil(t, got.Attachment)
		assert.Equal(t, "", *got.Content)
		assert.Equal(t, "", *got.Attachment)
	})

	t.Run("generates unique time ordered ids", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Put", mock.Anything, mock.Anything).Return(nil)

		seen := make(map[string]bool)
		for range 50 {
			got, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{Content: "x"})
			require.NoError(t, err)
			require.NotEmpty(t, got.ItemID)
			assert.False(t, seen[got.ItemID], "duplicate id %s", got.ItemID)
			seen[got.ItemID] = true

			id, err := uuid.Parse(got.ItemID)
			require.NoError(t, err)
			assert.Equal(t, uuid.Version(7), id.Version())
		}
	})

	t.Run("missing owner", func(t *testing.T) {
		s, spy := NewNoteService(t)

		_, err := s.Create(context.Background(), "", notes.CreateNoteRequest{Content: "x"})

		assert.ErrorIs(t, err, notes.ErrUnauthenticated)
		assert.Equal(t, "User not authenticated", err.Error())
		spy.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("attachment too long", func(t *testing.T) {
		s, spy := NewNoteService(t)

		_, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{
			Content:    "x",
			Attachment: notes.String(strings.Repeat("a", 2049)),
		})

		assert.ErrorIs(t, err, notes.ErrInvalidInput)
		assert.Contains(t, err.Error(), "attachment is too long")
		spy.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	})

	t.Run("id generator failure", func(t *testing.T) {
		s, _ := NewNoteService(t, notes.WithIDGenerator(func() (string, error) { return "", errors.New("entropy") }))

		_, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "entropy")
	})

	t.Run("storage failure", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Put", mock.Anything, mock.Anything).Return(errors.New("throttled"))

		_, err := s.Create(context.Background(), "alice", notes.CreateNoteRequest{})

		assert.ErrorIs(t, err, notes.ErrStorage)
		assert.Contains(t, err.Error(), "throttled")
	})
}

func TestNoteService_Get(t *testing.T) {
	key := notes.Key{OwnerID: "alice", ItemID: "n1"}

	t.Run("found", func(t *testing.T) {
		s, spy := NewNoteService(t)
		want := notes.Note{OwnerID: "alice", ItemID: "n1", Content: notes.String("hi"), CreatedAt: 1}
		spy.On("Get", mock.Anything, key).Return(want, nil).Once()

		got, err := s.Get(context.Background(), "alice", "n1")

		require.NoError(t, err)
		assert.Equal(t, want, got)
		spy.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Get", mock.Anything, key).Return(notes.Note{}, notes.ErrNotFound)

		_, err := s.Get(context.Background(), "alice", "n1")

		assert.ErrorIs(t, err, notes.ErrNotFound)
		assert.Equal(t, "Note not found", err.Error())
	})

	t.Run("storage failure", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Get", mock.Anything, key).Return(notes.Note{}, errors.New("network"))

		_, err := s.Get(context.Background(), "alice", "n1")

		assert.ErrorIs(t, err, notes.ErrStorage)
	})

	t.Run("validation order", func(t *testing.T) {
		s, spy := NewNoteService(t)

		_, err := s.Get(context.Background(), "", "")
		assert.ErrorIs(t, err, notes.ErrUnauthenticated)

		_, err = s.Get(context.Background(), "alice", "")
		assert.ErrorIs(t, err, notes.ErrInvalidInput)
		assert.Equal(t, "Note ID is required", err.Error())

		spy.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestNoteService_List(t *testing.T) {
	t.Run("returns owner notes", func(t *testing.T) {
		s, spy := NewNoteService(t)
		items := []notes.Note{{OwnerID: "alice", ItemID: "a"}, {OwnerID: "alice", ItemID: "b"}}
		spy.On("Query", mock.Anything, "alice").Return(items, nil).Once()

		got, err := s.List(context.Background(), "alice")

		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("nil result becomes empty", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Query", mock.Anything, "bob").Return(nil, nil)

		got, err := s.List(context.Background(), "bob")

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("missing owner", func(t *testing.T) {
		s, spy := NewNoteService(t)

		_, err := s.List(context.Background(), "")

		assert.ErrorIs(t, err, notes.ErrUnauthenticated)
		spy.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Query", mock.Anything, "alice").Return(nil, errors.New("down"))

		_, err := s.List(context.Background(), "alice")

		assert.ErrorIs(t, err, notes.ErrStorage)
	})
}

func TestNoteService_Update(t *testing.T) {
	key := notes.Key{OwnerID: "alice", ItemID: "n1"}
	nilString := (*string)(nil)

	tests := []struct {
		name           string
		in             notes.UpdateNoteRequest
		wantContent    *string
		wantAttachment *string
	}{
		{
			name:           "both fields",
			in:             notes.UpdateNoteRequest{Content: notes.String("c"), Attachment: notes.String("a")},
			wantContent:    notes.String("c"),
			wantAttachment: notes.String("a"),
		},
		{
			name:           "absent attachment is cleared",
			in:             notes.UpdateNoteRequest{Content: notes.String("c")},
			wantContent:    notes.String("c"),
			wantAttachment: nilString,
		},
		{
			name:           "empty body clears both",
			in:             notes.UpdateNoteRequest{},
			wantContent:    nilString,
			wantAttachment: nilString,
		},
		{
			name:           "empty strings clear",
			in:             notes.UpdateNoteRequest{Content: notes.String(""), Attachment: notes.String("")},
			wantContent:    nilString,
			wantAttachment: nilString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, spy := NewNoteService(t)
			spy.On("Update", mock.Anything, key, tt.wantContent, tt.wantAttachment).Return(nil).Once()

			got, err := s.Update(context.Background(), "alice", "n1", tt.in)

			require.NoError(t, err)
			assert.Equal(t, notes.StatusResult{Status: true}, got)
			spy.AssertExpectations(t)
		})
	}

	t.Run("missing id", func(t *testing.T) {
		s, spy := NewNoteService(t)

		_, err := s.Update(context.Background(), "alice", "", notes.UpdateNoteRequest{})

		assert.ErrorIs(t, err, notes.ErrInvalidInput)
		spy.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing owner", func(t *testing.T) {
		s, _ := NewNoteService(t)

		_, err := s.Update(context.Background(), "", "n1", notes.UpdateNoteRequest{})

		assert.ErrorIs(t, err, notes.ErrUnauthenticated)
	})

	t.Run("content too long", func(t *testing.T) {
		s, _ := NewNoteService(t)

		_, err := s.Update(context.Background(), "alice", "n1", notes.UpdateNoteRequest{
			Content: notes.String(strings.Repeat("a", 1048577)),
		})

		assert.ErrorIs(t, err, notes.ErrInvalidInput)
		assert.Contains(t, err.Error(), "content is too long")
	})

	t.Run("storage failure", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Update", mock.Anything, key, mock.Anything, mock.Anything).Return(errors.New("down"))

		_, err := s.Update(context.Background(), "alice", "n1", notes.UpdateNoteRequest{})

		assert.ErrorIs(t, err, notes.ErrStorage)
	})
}

func TestNoteService_Delete(t *testing.T) {
	key := notes.Key{OwnerID: "alice", ItemID: "n1"}

	t.Run("idempotent", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Delete", mock.Anything, key).Return(nil).Twice()

		for range 2 {
			got, err := s.Delete(context.Background(), "alice", "n1")
			require.NoError(t, err)
			assert.True(t, got.Status)
		}
		spy.AssertExpectations(t)
	})

	t.Run("missing id", func(t *testing.T) {
		s, _ := NewNoteService(t)

		_, err := s.Delete(context.Background(), "alice", "")

		assert.ErrorIs(t, err, notes.ErrInvalidInput)
	})

	t.Run("storage failure", func(t *testing.T) {
		s, spy := NewNoteService(t)
		spy.On("Delete", mock.Anything, key).Return(errors.New("down"))

		_, err := s.Delete(context.Background(), "alice", "n1")

		assert.ErrorIs(t, err, notes.ErrStorage)
	})
}
