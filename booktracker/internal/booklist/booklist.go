// Package booklist assembles the book list screen: the catalog container,
// the book form and the overlay workflow sharing one scope.
package booklist

import (
	"context"
	"net/url"

	"github.com/Astemirdum/booktracker/booktracker/internal/catalog"
	"github.com/Astemirdum/booktracker/booktracker/internal/form"
	"github.com/Astemirdum/booktracker/booktracker/internal/loop"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/booktracker/internal/service"
	"github.com/Astemirdum/booktracker/booktracker/internal/workflow"
	"go.uber.org/zap"
)

type View struct {
	log   *zap.Logger
	scope *loop.Scope

	List     *catalog.Container
	Form     *form.Controller
	Workflow *workflow.Orchestrator
}

func New(ctx context.Context, log *zap.Logger, d *loop.Dispatcher, svc service.BookService, n notify.Notifier) *View {
	log = log.Named("booklist")
	scope := d.NewScope(ctx)
	list := catalog.New(log, svc, n, scope)
	fc := form.New(log, svc, n, scope)
	return &View{
		log:      log,
		scope:    scope,
		List:     list,
		Form:     fc,
		Workflow: workflow.New(log, fc, list, svc, n, scope),
	}
}

// Open seeds the status filter from the route's status query parameter and
// loads the list.
func (v *View) Open(route string) {
	v.List.SetStatusFilter(RouteStatus(v.log, route))
	v.List.Reload()
}

// Close drops every pending call of the view.
func (v *View) Close() {
	v.scope.Close()
}

// RouteStatus reads the status query parameter of route. Missing or unknown
// values yield StatusAll.
func RouteStatus(log *zap.Logger, route string) model.StatusFilter {
	u, err := url.Parse(route)
	if err != nil {
		log.Warn("parse route", zap.String("route", route), zap.Error(err))
		return model.StatusAll
	}
	raw := u.Query().Get("status")
	if raw == "" {
		return model.StatusAll
	}
	f, err := model.ParseStatusFilter(raw)
	if err != nil {
		log.Warn("route status", zap.String("route", route), zap.Error(err))
		return model.StatusAll
	}
	return f
}
