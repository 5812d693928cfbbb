package books

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/model"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const booksPath = "/api/books"

// Service is a stateless client of the remote books API. Every failure is
// returned as *errs.APIError.
type Service struct {
	log      *zap.Logger
	client   *http.Client
	endpoint string
	timeout  time.Duration
}

func NewService(log *zap.Logger, baseURL string, timeout time.Duration, rt http.RoundTripper) *Service {
	endpoint := strings.TrimRight(baseURL, "/") + booksPath
	log = log.Named("books")
	log.Info("books api", zap.String("url", endpoint))
	return &Service{
		log:      log,
		client:   &http.Client{Transport: rt},
		endpoint: endpoint,
		timeout:  timeout,
	}
}

func (s *Service) ListAll(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := s.do(ctx, http.MethodGet, s.endpoint, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []model.Book{}
	}
	return books, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Book, error) {
	var book model.Book
	if err := s.do(ctx, http.MethodGet, s.bookURL(id), nil, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) Create(ctx context.Context, req model.BookRequest) (model.Book, error) {
	var book model.Book
	if err := s.do(ctx, http.MethodPost, s.endpoint, req, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) Update(ctx context.Context, id int64, req model.BookRequest) (model.Book, error) {
	var book model.Book
	if err := s.do(ctx, http.MethodPut, s.bookURL(id), req, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, s.bookURL(id), nil, nil)
}

func (s *Service) bookURL(id int64) string {
	return fmt.Sprintf("%s/%d", s.endpoint, id)
}

func (s *Service) do(ctx context.Context, method, url string, in, out interface{}) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errs.NewClientError(errors.Wrap(err, "marshal request"))
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return errs.NewClientError(err)
	}
	req.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON)
	if in != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return errs.NewClientError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewClientError(errors.Wrap(err, "read response"))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.log.Debug("api failure",
			zap.String("Method", method),
			zap.String("URI", url),
			zap.Int("status", resp.StatusCode))
		return errs.NewHTTPError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errs.NewClientError(errors.Wrap(err, "decode response"))
	}
	return nil
}
