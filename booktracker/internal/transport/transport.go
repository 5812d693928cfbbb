// Package transport holds the outbound http.RoundTripper chain of the API client.
package transport

import (
	"net/http"
	"time"

	"github.com/Astemirdum/booktracker/pkg/circuit_breaker"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const HeaderRequestID = "X-Request-ID"

type Middleware func(next http.RoundTripper) http.RoundTripper

type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Chain wraps base so that mws[0] sees the request first.
func Chain(base http.RoundTripper, mws ...Middleware) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := base
	for i := len(mws) - 1; i >= 0; i-- {
		rt = mws[i](rt)
	}
	return rt
}

// RequestID sets X-Request-ID on requests that carry none.
func RequestID() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next.RoundTrip(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(HeaderRequestID, uuid.NewString())
			return next.RoundTrip(r)
		})
	}
}

func RateLimit(rps rate.Limit, burst int) Middleware {
	lim := rate.NewLimiter(rps, burst)
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := lim.Wait(req.Context()); err != nil {
				return nil, errors.Wrap(err, "rate limit")
			}
			return next.RoundTrip(req)
		})
	}
}

var errUpstream = errors.New("upstream failure")

// CircuitBreaker counts transport errors and 5xx responses as failures.
// While open, requests fail with circuit_breaker.ErrOpenCB without reaching next.
func CircuitBreaker(cb circuit_breaker.CircuitBreaker) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			var resp *http.Response
			err := cb.Call(func() error {
				r, err := next.RoundTrip(req)
				if err != nil {
					if req.Context().Err() != nil {
						// abandoned by the caller, not a service failure
						return nil
					}
					return err
				}
				resp = r
				if r.StatusCode >= http.StatusInternalServerError {
					return errUpstream
				}
				return nil
			})
			if resp != nil {
				return resp, nil
			}
			if err == nil {
				err = req.Context().Err()
			}
			return nil, err
		})
	}
}

func Logging(log *zap.Logger) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.RoundTrip(req)
			fields := []zap.Field{
				zap.String("URI", req.URL.String()),
				zap.String("Method", req.Method),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", req.Header.Get(HeaderRequestID)),
			}
			level := zapcore.DebugLevel
			switch {
			case err != nil:
				level = zapcore.WarnLevel
				fields = append(fields, zap.Error(err))
			default:
				fields = append(fields, zap.Int("status", resp.StatusCode))
				if resp.StatusCode >= http.StatusBadRequest {
					level = zapcore.InfoLevel
				}
			}
			log.Log(level, "request", fields...)
			return resp, err
		})
	}
}
