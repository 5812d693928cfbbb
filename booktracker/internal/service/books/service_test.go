package books_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/fakeapi"
	"github.com/Astemirdum/booktracker/booktracker/internal/interceptor"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/booktracker/internal/service/books"
	"github.com/Astemirdum/booktracker/booktracker/internal/transport"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, h http.Handler) (*books.Service, *notify.Recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &notify.Recorder{}
	rt := transport.Chain(http.DefaultTransport,
		interceptor.ErrorTranslator(rec, zap.NewNop()),
		transport.RequestID(),
	)
	return books.NewService(zap.NewNop(), srv.URL+"/", time.Second, rt), rec
}

func fakeServer() http.Handler {
	return fakeapi.New(fakeapi.NewMemoryStore(fakeapi.SeedBooks()...), zap.NewNop()).NewRouter()
}

func TestService_CRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, rec := newService(t, fakeServer())

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)

	req := model.BookRequest{Title: "Emma", Author: "Jane Austen", Genre: "Classic", Status: model.StatusNotStarted}
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.EqualValues(t, 6, created.ID)
	require.Nil(t, created.Notes)
	require.False(t, created.CreatedAt.IsZero())

	req.Status = model.StatusCompleted
	req.Notes = "loved it"
	updated, err := svc.Update(ctx, created.ID, req)
	require.NoError(t, err)
	require.Equal(t, model.StatusCompleted, updated.Status)
	require.Equal(t, "loved it", updated.NotesText())

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Title, got.Title)

	require.NoError(t, svc.Delete(ctx, created.ID))
	all, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)

	require.Empty(t, rec.Messages())
}

func TestService_NotFound(t *testing.T) {
	t.Parallel()
	svc, rec := newService(t, fakeServer())

	err := svc.Delete(context.Background(), 42)
	var apiErr *errs.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusNotFound, apiErr.Status)
	require.Equal(t, "not found", apiErr.Message)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Equal(t, []string{"Not Found: not found"}, rec.Errors())
}

func TestService_ServerValidation(t *testing.T) {
	t.Parallel()
	svc, rec := newService(t, fakeServer())

	_, err := svc.Create(context.Background(), model.BookRequest{Title: "Emma", Author: "Jane Austen", Genre: "Classic", Status: "DONE"})
	var apiErr *errs.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, []string{"Bad Request: status must be one of [NOT_STARTED IN_PROGRESS COMPLETED]"}, rec.Errors())
}

func TestService_EmptyList(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	}))
	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, all)
	require.Empty(t, all)
}

func TestService_ServerErrorWithoutBody(t *testing.T) {
	t.Parallel()
	svc, rec := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	_, err := svc.ListAll(context.Background())
	var apiErr *errs.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.Status)
	require.Empty(t, apiErr.Message)
	require.Equal(t, []string{"Server Error: Internal server error"}, rec.Errors())
}

func TestService_NonJSONSuccess(t *testing.T) {
	t.Parallel()
	svc, rec := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>proxy page</html>"))
	}))
	_, err := svc.ListAll(context.Background())
	var apiErr *errs.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, errs.ClientSide, apiErr.Status)
	require.Equal(t, []string{"Error: 200"}, rec.Errors())
}

func TestService_NoResponse(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	rt := transport.Chain(http.DefaultTransport, interceptor.ErrorTranslator(rec, zap.NewNop()))
	svc := books.NewService(zap.NewNop(), url, time.Second, rt)

	_, err := svc.ListAll(context.Background())
	var apiErr *errs.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, errs.ClientSide, apiErr.Status)
	require.Len(t, rec.Errors(), 1)
	require.Contains(t, rec.Errors()[0], "Error: ")
	require.Contains(t, rec.Errors()[0], "connect")
}

func TestService_Cancelled(t *testing.T) {
	t.Parallel()
	block := make(chan struct{})
	svc, rec := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := svc.ListAll(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, rec.Messages())
}
