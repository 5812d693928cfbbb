// Package catalog holds the fetched book set and the list filters.
// All methods must be called on the loop goroutine.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"go.uber.org/zap"
)

type Lister interface {
	ListAll(ctx context.Context) ([]model.Book, error)
}

type Container struct {
	log      *zap.Logger
	svc      Lister
	notifier notify.Notifier
	scope    *loop.Scope

	books    []model.Book
	term     string
	status   model.StatusFilter
	inflight int
	onChange func()
}

func New(log *zap.Logger, svc Lister, n notify.Notifier, scope *loop.Scope) *Container {
	return &Container{
		log:      log.Named("catalog"),
		svc:      svc,
		notifier: n,
		scope:    scope,
		books:    []model.Book{},
		status:   model.StatusAll,
	}
}

// OnChange registers fn to run after every state change.
func (c *Container) OnChange(fn func()) {
	c.onChange = fn
}

// Reload replaces the book set with a fresh ListAll result. Overlapping
// reloads are allowed: whichever completes last wins.
func (c *Container) Reload() {
	c.inflight++
	c.changed()
	loop.Go(c.scope, c.svc.ListAll, func(books []model.Book, err error) {
		c.inflight--
		if err != nil {
			c.log.Warn("reload", zap.Error(err))
			c.notifier.Error("Failed to load books")
			c.changed()
			return
		}
		if books == nil {
			books = []model.Book{}
		}
		c.books = books
		c.notifier.Success(fmt.Sprintf("Loaded %d books", len(books)))
		c.changed()
	})
}

func (c *Container) SetSearchTerm(term string) {
	c.term = term
	c.changed()
}

func (c *Container) SetStatusFilter(f model.StatusFilter) {
	if f == "" {
		f = model.StatusAll
	}
	c.status = f
	c.changed()
}

func (c *Container) SearchTerm() string {
	return c.term
}

func (c *Container) StatusFilter() model.StatusFilter {
	return c.status
}

// Loading is true while at least one reload is in flight.
func (c *Container) Loading() bool {
	return c.inflight > 0
}

// Books returns the unfiltered set.
func (c *Container) Books() []model.Book {
	return c.books
}

// Filtered is the derived view under the current filters.
func (c *Container) Filtered() []model.Book {
	return Filter(c.books, c.term, c.status)
}

func (c *Container) Find(id int64) (model.Book, bool) {
	for _, b := range c.books {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

func (c *Container) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Filter keeps books matching term (case-insensitive substring of title,
// author or genre) and status, preserving order.
func Filter(books []model.Book, term string, status model.StatusFilter) []model.Book {
	term = strings.ToLower(term)
	out := make([]model.Book, 0, len(books))
	for _, b := range books {
		if !status.Match(b.Status) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(b.Title), term) &&
			!strings.Contains(strings.ToLower(b.Author), term) &&
			!strings.Contains(strings.ToLower(b.Genre), term) {
			continue
		}
		out = append(out, b)
	}
	return out
}
