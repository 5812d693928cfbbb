package fakeapi

import (
	"context"
	"testing"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore(SeedBooks()...)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return created }

	books, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, len(SeedBooks()))
	require.Equal(t, "Dune", books[0].Title)
	require.Equal(t, "Reread the appendices.", books[0].NotesText())
	require.Nil(t, books[1].Notes)

	b, err := s.Create(ctx, model.BookRequest{Title: "Emma", Author: "Jane Austen", Genre: "Classic", Status: model.StatusNotStarted})
	require.NoError(t, err)
	require.EqualValues(t, 6, b.ID)
	require.Equal(t, created, b.CreatedAt)

	s.now = func() time.Time { return created.Add(time.Hour) }
	u, err := s.Update(ctx, b.ID, model.BookRequest{Title: "Emma", Author: "Jane Austen", Genre: "Classic", Status: model.StatusInProgress})
	require.NoError(t, err)
	require.Equal(t, created, u.CreatedAt)
	require.Equal(t, created.Add(time.Hour), u.UpdatedAt)
	require.Equal(t, model.StatusInProgress, u.Status)

	require.NoError(t, s.Delete(ctx, b.ID))
	_, err = s.Get(ctx, b.ID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, b.ID), errs.ErrNotFound)
	_, err = s.Update(ctx, b.ID, model.BookRequest{})
	require.ErrorIs(t, err, errs.ErrNotFound)
}
