// Package interceptor translates failed API calls into user notifications.
package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/Astemirdum/booktracker/booktracker/internal/errs"
	"github.com/Astemirdum/booktracker/booktracker/internal/notify"
	"github.com/Astemirdum/booktracker/booktracker/internal/transport"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a failure body is inspected for a message.
// A longer body is still handed back whole, but its message is not parsed.
const maxErrorBody = 64 << 10

// ErrorTranslator emits exactly one error notification per failed call and
// hands the response or error back to the caller untouched. A 2xx response
// whose body cannot be read or is not JSON counts as a failed call.
func ErrorTranslator(n notify.Notifier, log *zap.Logger) transport.Middleware {
	log = log.Named("interceptor")
	return func(next http.RoundTripper) http.RoundTripper {
		return transport.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil {
				if cancelled(req.Context(), err) {
					return nil, err
				}
				n.Error(errs.Describe(errs.ClientSide, "", cause(err)))
				return nil, err
			}
			if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
				return checkBody(n, req, resp)
			}

			body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
			if rerr != nil {
				log.Debug("read error body", zap.Error(rerr))
			}
			msg := ""
			if len(body) > maxErrorBody {
				log.Debug("error body too large, message skipped",
					zap.Int("status", resp.StatusCode), zap.Int("limit", maxErrorBody))
			} else {
				msg = errs.ServerMessage(body)
			}
			resp.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(body), resp.Body), Closer: resp.Body}

			n.Error(errs.Describe(resp.StatusCode, msg, nil))
			return resp, nil
		})
	}
}

// checkBody buffers a successful response and reports a body that cannot be
// read or is not JSON.
func checkBody(n notify.Notifier, req *http.Request, resp *http.Response) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		if !cancelled(req.Context(), err) {
			n.Error(errs.Describe(errs.ClientSide, "", cause(err)))
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		n.Error(errs.Describe(resp.StatusCode, "", nil))
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

type replayBody struct {
	io.Reader
	io.Closer
}

// cancelled reports a call dropped by its owner. Deadlines still count as failures.
func cancelled(ctx context.Context, err error) bool {
	return errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled)
}

// cause strips local wrapping so the user sees the transport message.
func cause(err error) error {
	return errors.Cause(err)
}
