// Package form is the create/edit model of a single book.
// All methods must be called on the loop goroutine.
package form

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/pkg/validate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Mode uint8

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

type Field string

const (
	FieldTitle  Field = "title"
	FieldAuthor Field = "author"
	FieldGenre  Field = "genre"
	FieldStatus Field = "status"
	FieldNotes  Field = "notes"
)

var Fields = []Field{FieldTitle, FieldAuthor, FieldGenre, FieldStatus, FieldNotes}

var ErrUnknownField = errors.New("unknown field")

func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownField, "%q", s)
}

type Saver interface {
	Create(ctx context.Context, req model.BookRequest) (model.Book, error)
	Update(ctx context.Context, id int64, req model.BookRequest) (model.Book, error)
}

// SavedEvent is emitted once per successful submission. Stale is set when
// the form was loaded again while the call was in flight.
type SavedEvent struct {
	Book  model.Book
	Mode  Mode
	Stale bool
}

type Controller struct {
	log       *zap.Logger
	svc       Saver
	notifier  notify.Notifier
	scope     *loop.Scope
	validator *validate.CustomValidator

	mode       Mode
	target     *model.Book
	values     map[Field]string
	initial    map[Field]string
	touched    map[Field]bool
	submitting bool
	session    uint64

	onSaved func(SavedEvent)
}

func New(log *zap.Logger, svc Saver, n notify.Notifier, scope *loop.Scope) *Controller {
	c := &Controller{
		log:       log.Named("form"),
		svc:       svc,
		notifier:  n,
		scope:     scope,
		validator: validate.NewCustomValidator(),
	}
	c.Load(nil)
	return c
}

func (c *Controller) OnSaved(fn func(SavedEvent)) {
	c.onSaved = fn
}

// Load switches to edit mode populated from target, or to create mode with
// defaults when target is nil. Any pending submission becomes stale.
func (c *Controller) Load(target *model.Book) {
	c.session++
	c.submitting = false
	c.touched = make(map[Field]bool, len(Fields))
	if target == nil {
		c.mode = ModeCreate
		c.target = nil
		c.values = defaults()
	} else {
		t := *target
		c.mode = ModeEdit
		c.target = &t
		c.values = map[Field]string{
			FieldTitle:  t.Title,
			FieldAuthor: t.Author,
			FieldGenre:  t.Genre,
			FieldStatus: string(t.Status),
			FieldNotes:  t.NotesText(),
		}
	}
	c.initial = copyValues(c.values)
}

// Reset returns the form to create mode with defaults.
func (c *Controller) Reset() {
	c.Load(nil)
}

func defaults() map[Field]string {
	return map[Field]string{
		FieldTitle:  "",
		FieldAuthor: "",
		FieldGenre:  "",
		FieldStatus: string(model.StatusNotStarted),
		FieldNotes:  "",
	}
}

func copyValues(src map[Field]string) map[Field]string {
	dst := make(map[Field]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (c *Controller) Mode() Mode {
	return c.mode
}

func (c *Controller) Target() *model.Book {
	return c.target
}

func (c *Controller) Title() string {
	if c.mode == ModeEdit {
		return "Edit Book"
	}
	return "Add New Book"
}

func (c *Controller) SubmitLabel() string {
	if c.mode == ModeEdit {
		return "Update Book"
	}
	return "Create Book"
}

func (c *Controller) Set(f Field, value string) error {
	if _, ok := c.values[f]; !ok {
		return errors.Wrapf(ErrUnknownField, "%q", f)
	}
	c.values[f] = value
	c.touched[f] = true
	return nil
}

func (c *Controller) Value(f Field) string {
	return c.values[f]
}

func (c *Controller) Touched(f Field) bool {
	return c.touched[f]
}

func (c *Controller) Dirty() bool {
	for f, v := range c.values {
		if c.initial[f] != v {
			return true
		}
	}
	return false
}

func (c *Controller) Pristine() bool {
	return !c.Dirty()
}

func (c *Controller) Submitting() bool {
	return c.submitting
}

func (c *Controller) Request() model.BookRequest {
	return model.BookRequest{
		Title:  c.values[FieldTitle],
		Author: c.values[FieldAuthor],
		Genre:  c.values[FieldGenre],
		Status: model.Status(c.values[FieldStatus]),
		Notes:  c.values[FieldNotes],
	}
}

// Errors lists every failing rule by field, touched or not.
func (c *Controller) Errors() map[Field]string {
	out := make(map[Field]string)
	for name, msg := range c.validator.Fields(c.Request()) {
		out[Field(name)] = msg
	}
	return out
}

// FieldError is the message to display next to f; empty until f is touched.
func (c *Controller) FieldError(f Field) string {
	if !c.touched[f] {
		return ""
	}
	return c.Errors()[f]
}

func (c *Controller) Valid() bool {
	return len(c.Errors()) == 0
}

// Submit validates and sends the form. It returns ErrValidation without any
// call when a rule fails and ErrSubmitting while a submission is pending.
func (c *Controller) Submit() error {
	for _, f := range Fields {
		c.touched[f] = true
	}
	if c.submitting {
		return errs.ErrSubmitting
	}
	if problems := c.Errors(); len(problems) > 0 {
		return errors.Wrap(errs.ErrValidation, joinErrors(problems))
	}

	c.submitting = true
	session := c.session
	mode := c.mode
	req := c.Request()

	call := func(ctx context.Context) (model.Book, error) {
		return c.svc.Create(ctx, req)
	}
	if mode == ModeEdit {
		id := c.target.ID
		call = func(ctx context.Context) (model.Book, error) {
			return c.svc.Update(ctx, id, req)
		}
	}

	loop.Go(c.scope, call, func(book model.Book, err error) {
		stale := session != c.session
		if !stale {
			c.submitting = false
		}
		if err != nil {
			c.log.Warn("submit", zap.Stringer("mode", mode), zap.Error(err))
			c.notifier.Error(fmt.Sprintf("Failed to %s book", verb(mode)))
			return
		}
		c.notifier.Success(fmt.Sprintf("Book \"%s\" %sd successfully!", book.Title, verb(mode)))
		if !stale {
			c.Reset()
		}
		if c.onSaved != nil {
			c.onSaved(SavedEvent{Book: book, Mode: mode, Stale: stale})
		}
	})
	return nil
}

func verb(m Mode) string {
	if m == ModeEdit {
		return "update"
	}
	return "create"
}

func joinErrors(problems map[Field]string) string {
	msgs := make([]string, 0, len(problems))
	for _, msg := range problems {
		msgs = append(msgs, msg)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}
