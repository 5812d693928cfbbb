package fakeapi_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/fakeapi"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/Astemirdum/booktracker/pkg/validate"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	store_mocks "github.com/Astemirdum/booktracker/booktracker/internal/fakeapi/mocks"
)

const duneJSON = `{"id":1,"title":"Dune","author":"Frank Herbert","genre":"Sci-Fi","status":"COMPLETED","notes":null,"createdAt":"0001-01-01T00:00:00Z","updatedAt":"0001-01-01T00:00:00Z"}`

var dune = model.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Status: model.StatusCompleted}

func TestHandler_Books(t *testing.T) {
	t.Parallel()
	type input struct {
		method string
		target string
		body   string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *store_mocks.MockBookStore)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "list ok",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().List(gomock.Any()).Return([]model.Book{dune}, nil)
			},
			input: input{method: http.MethodGet, target: "/api/books"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: "[" + duneJSON + "]",
			},
		},
		{
			name: "list internal",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().List(gomock.Any()).Return(nil, errors.New("store down"))
			},
			input: input{method: http.MethodGet, target: "/api/books"},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"store down"}`,
			},
		},
		{
			name: "get ok",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Get(gomock.Any(), int64(1)).Return(dune, nil)
			},
			input: input{method: http.MethodGet, target: "/api/books/1"},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: duneJSON,
			},
		},
		{
			name: "err. get not found",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Get(gomock.Any(), int64(9)).Return(model.Book{}, errors.Wrap(errs.ErrNotFound, "book 9"))
			},
			input: input{method: http.MethodGet, target: "/api/books/9"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
		{
			name:         "err. bad id",
			mockBehavior: func(r *store_mocks.MockBookStore) {},
			input:        input{method: http.MethodGet, target: "/api/books/abc"},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid book id"}`,
			},
		},
		{
			name: "create ok",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Create(gomock.Any(), model.BookRequest{
					Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Status: model.StatusCompleted,
				}).Return(dune, nil)
			},
			input: input{
				method: http.MethodPost,
				target: "/api/books",
				body:   `{"title":"Dune","author":"Frank Herbert","genre":"Sci-Fi","status":"COMPLETED","notes":""}`,
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: duneJSON,
			},
		},
		{
			name:         "err. create invalid",
			mockBehavior: func(r *store_mocks.MockBookStore) {},
			input: input{
				method: http.MethodPost,
				target: "/api/books",
				body:   `{"title":"","author":"Frank Herbert","genre":"Sci-Fi","status":"DONE"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"status must be one of [NOT_STARTED IN_PROGRESS COMPLETED]; title is required"}`,
			},
		},
		{
			name: "update ok",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Update(gomock.Any(), int64(1), model.BookRequest{
					Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi", Status: model.StatusCompleted,
				}).Return(dune, nil)
			},
			input: input{
				method: http.MethodPut,
				target: "/api/books/1",
				body:   `{"title":"Dune","author":"Frank Herbert","genre":"Sci-Fi","status":"COMPLETED"}`,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: duneJSON,
			},
		},
		{
			name: "delete ok",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Delete(gomock.Any(), int64(1)).Return(nil)
			},
			input: input{method: http.MethodDelete, target: "/api/books/1"},
			response: response{
				expectedCode: http.StatusNoContent,
			},
		},
		{
			name: "err. delete not found",
			mockBehavior: func(r *store_mocks.MockBookStore) {
				r.EXPECT().Delete(gomock.Any(), int64(2)).Return(errors.Wrap(errs.ErrNotFound, "book 2"))
			},
			input: input{method: http.MethodDelete, target: "/api/books/2"},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"not found"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			store := store_mocks.NewMockBookStore(c)
			log := zap.NewExample().Named("test")
			h := fakeapi.New(store, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/api/books", h.ListBooks)
			e.GET("/api/books/:id", h.GetBook)
			e.POST("/api/books", h.CreateBook)
			e.PUT("/api/books/:id", h.UpdateBook)
			e.DELETE("/api/books/:id", h.DeleteBook)

			r := httptest.NewRequest(tt.input.method, tt.input.target, http.NoBody)
			if tt.input.body != "" {
				r = httptest.NewRequest(tt.input.method, tt.input.target, strings.NewReader(tt.input.body))
			}
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(store)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	h := fakeapi.New(fakeapi.NewMemoryStore(), zap.NewNop())
	srv := httptest.NewServer(h.NewRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/manage/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
