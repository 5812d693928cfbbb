// Package workflow decides which overlay of the book list is open.
// All methods must be called on the loop goroutine.
package workflow

import (
	"context"
	"fmt"

	"github.com/Astemirdum/booktracker/booktracker/internal/form"
	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Kind uint8

const (
	Closed Kind = iota
	FormOpen
	DetailOpen
)

// State is the single open overlay. Mode is meaningful for FormOpen only;
// Target is nil for Closed and FormOpen in create mode.
type State struct {
	Kind   Kind
	Mode   form.Mode
	Target *model.Book
}

func (s State) String() string {
	switch s.Kind {
	case FormOpen:
		if s.Mode == form.ModeEdit && s.Target != nil {
			return fmt.Sprintf("FormOpen(Edit, %d)", s.Target.ID)
		}
		return "FormOpen(Create)"
	case DetailOpen:
		return fmt.Sprintf("DetailOpen(%d)", s.Target.ID)
	default:
		return "Closed"
	}
}

var ErrNoDetail = errors.New("no book detail is open")

type Form interface {
	Load(target *model.Book)
	Reset()
	OnSaved(fn func(form.SavedEvent))
}

type Reloader interface {
	Reload()
}

type Deleter interface {
	Delete(ctx context.Context, id int64) error
}

type Orchestrator struct {
	log      *zap.Logger
	form     Form
	list     Reloader
	svc      Deleter
	notifier notify.Notifier
	scope    *loop.Scope

	state    State
	onChange func()
}

func New(log *zap.Logger, f Form, list Reloader, svc Deleter, n notify.Notifier, scope *loop.Scope) *Orchestrator {
	o := &Orchestrator{
		log:      log.Named("workflow"),
		form:     f,
		list:     list,
		svc:      svc,
		notifier: n,
		scope:    scope,
	}
	f.OnSaved(o.saved)
	return o
}

func (o *Orchestrator) OnChange(fn func()) {
	o.onChange = fn
}

func (o *Orchestrator) State() State {
	return o.state
}

// Add opens an empty create form, closing any open overlay.
func (o *Orchestrator) Add() {
	o.form.Load(nil)
	o.set(State{Kind: FormOpen, Mode: form.ModeCreate})
}

// Edit opens the form populated from b, closing any open overlay.
func (o *Orchestrator) Edit(b model.Book) {
	o.form.Load(&b)
	o.set(State{Kind: FormOpen, Mode: form.ModeEdit, Target: &b})
}

// View opens the detail of b, closing any open overlay.
func (o *Orchestrator) View(b model.Book) {
	if o.state.Kind == FormOpen {
		o.form.Reset()
	}
	o.set(State{Kind: DetailOpen, Target: &b})
}

// EditFromDetail swaps the open detail for the edit form of the same book.
func (o *Orchestrator) EditFromDetail() error {
	if o.state.Kind != DetailOpen {
		return ErrNoDetail
	}
	o.Edit(*o.state.Target)
	return nil
}

func (o *Orchestrator) Close() {
	if o.state.Kind == FormOpen {
		o.form.Reset()
	}
	o.set(State{Kind: Closed})
}

// Delete removes b remotely and reloads the list on success. Failure leaves
// the list and the open overlay untouched.
func (o *Orchestrator) Delete(b model.Book) {
	loop.Go(o.scope, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, o.svc.Delete(ctx, b.ID)
	}, func(_ struct{}, err error) {
		if err != nil {
			o.log.Warn("delete", zap.Int64("id", b.ID), zap.Error(err))
			o.notifier.Error("Failed to delete book")
			return
		}
		o.notifier.Success(fmt.Sprintf("Deleted \"%s\"", b.Title))
		o.list.Reload()
	})
}

func (o *Orchestrator) saved(ev form.SavedEvent) {
	if !ev.Stale && o.state.Kind == FormOpen {
		o.set(State{Kind: Closed})
	}
	o.list.Reload()
}

func (o *Orchestrator) set(s State) {
	o.log.Debug("transition", zap.Stringer("from", o.state), zap.Stringer("to", s))
	o.state = s
	if o.onChange != nil {
		o.onChange()
	}
}
