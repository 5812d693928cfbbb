package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Astemirdum/booktracker/booktracker/internal/transport"
	"github.com/Astemirdum/booktracker/pkg/circuit_breaker"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func stub(status int, calls *int32) http.RoundTripper {
	return transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(calls, 1)
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     http.Header{},
			Request:    req,
		}, nil
	})
}

func TestChain_Order(t *testing.T) {
	t.Parallel()
	var order []string
	mw := func(name string) transport.Middleware {
		return func(next http.RoundTripper) http.RoundTripper {
			return transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.RoundTrip(req)
			})
		}
	}
	var calls int32
	rt := transport.Chain(stub(http.StatusOK, &calls), mw("a"), mw("b"))
	req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
	require.EqualValues(t, 1, calls)
}

func TestRequestID(t *testing.T) {
	t.Parallel()
	var got string
	base := transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get(transport.HeaderRequestID)
		return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}, nil
	})
	rt := transport.Chain(base, transport.RequestID())

	req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)
	require.Len(t, got, 36)
	require.Empty(t, req.Header.Get(transport.HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
	req.Header.Set(transport.HeaderRequestID, "fixed")
	_, err = rt.RoundTrip(req)
	require.NoError(t, err)
	require.Equal(t, "fixed", got)
}

func TestRateLimit_CancelledContext(t *testing.T) {
	t.Parallel()
	var calls int32
	rt := transport.Chain(stub(http.StatusOK, &calls), transport.RateLimit(rate.Every(time.Hour), 1))

	req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
	_, err := rt.RoundTrip(req)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = rt.RoundTrip(req.WithContext(ctx))
	require.Error(t, err)
	require.EqualValues(t, 1, calls)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		status    int
		wantState circuit_breaker.Status
	}{
		{name: "ok", status: http.StatusOK, wantState: circuit_breaker.Closed},
		{name: "client error is not a failure", status: http.StatusNotFound, wantState: circuit_breaker.Closed},
		{name: "server error opens", status: http.StatusInternalServerError, wantState: circuit_breaker.Open},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var calls int32
			cb := circuit_breaker.New(1, time.Hour, 1, 1)
			rt := transport.Chain(stub(tt.status, &calls), transport.CircuitBreaker(cb))

			req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
			resp, err := rt.RoundTrip(req)
			require.NoError(t, err)
			require.Equal(t, tt.status, resp.StatusCode)
			require.Equal(t, tt.wantState, cb.State())

			if tt.wantState == circuit_breaker.Open {
				_, err = rt.RoundTrip(req)
				require.ErrorIs(t, err, circuit_breaker.ErrOpenCB)
				require.EqualValues(t, 1, calls)
			}
		})
	}
}

func TestCircuitBreaker_CancelledIsNotFailure(t *testing.T) {
	t.Parallel()
	cb := circuit_breaker.New(1, time.Hour, 1, 1)
	base := transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})
	rt := transport.Chain(base, transport.CircuitBreaker(cb))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil).WithContext(ctx)
	_, err := rt.RoundTrip(req)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, circuit_breaker.Closed, cb.State())
}

func TestLogging_PassesThrough(t *testing.T) {
	t.Parallel()
	boom := errors.New("dial tcp: connection refused")
	base := transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return nil, boom
	})
	rt := transport.Chain(base, transport.Logging(zap.NewNop()))
	req := httptest.NewRequest(http.MethodGet, "http://books.local/api/books", nil)
	resp, err := rt.RoundTrip(req)
	require.Nil(t, resp)
	require.Same(t, boom, err)
}
