package fakeapi

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/pkg/errors"
)

// MemoryStore keeps books in process memory, ordered by id.
type MemoryStore struct {
	mu     sync.RWMutex
	books  map[int64]model.Book
	nextID int64
	now    func() time.Time
}

func NewMemoryStore(seed ...model.BookRequest) *MemoryStore {
	s := &MemoryStore{
		books:  make(map[int64]model.Book),
		nextID: 1,
		now:    time.Now,
	}
	for _, req := range seed {
		_, _ = s.Create(context.Background(), req)
	}
	return s
}

func (s *MemoryStore) List(_ context.Context) ([]model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Book, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id int64) (model.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.books[id]
	if !ok {
		return model.Book{}, errors.Wrapf(errs.ErrNotFound, "book %d", id)
	}
	return b, nil
}

func (s *MemoryStore) Create(_ context.Context, req model.BookRequest) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := req.Book(s.nextID, s.now().UTC())
	s.books[b.ID] = b
	s.nextID++
	return b, nil
}

func (s *MemoryStore) Update(_ context.Context, id int64, req model.BookRequest) (model.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.books[id]
	if !ok {
		return model.Book{}, errors.Wrapf(errs.ErrNotFound, "book %d", id)
	}
	b := req.Book(id, s.now().UTC())
	b.CreatedAt = old.CreatedAt
	s.books[id] = b
	return b, nil
}

func (s *MemoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.books[id]; !ok {
		return errors.Wrapf(errs.ErrNotFound, "book %d", id)
	}
	delete(s.books, id)
	return nil
}

// SeedBooks is the demo catalog served by the fake-server command.
func SeedBooks() []model.BookRequest {
	return []model.BookRequest{
		{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Status: model.StatusCompleted, Notes: "Reread the appendices."},
		{Title: "The Hobbit", Author: "J.R.R. Tolkien", Genre: "Fantasy", Status: model.StatusInProgress},
		{Title: "Neuromancer", Author: "William Gibson", Genre: "Sci-Fi", Status: model.StatusNotStarted},
		{Title: "Project Hail Mary", Author: "Andy Weir", Genre: "Sci-Fi", Status: model.StatusNotStarted},
		{Title: "The Name of the Wind", Author: "Patrick Rothfuss", Genre: "Fantasy", Status: model.StatusCompleted},
	}
}
