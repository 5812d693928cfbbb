package errs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrSubmitting = errors.New("submission already in progress")
)

// ClientSide marks an APIError for which no response was received.
const ClientSide = 0

// APIError is the single failure shape of every API call.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status == ClientSide {
		return fmt.Sprintf("client-side: %v", e.Err)
	}
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func NewClientError(err error) *APIError {
	return &APIError{Status: ClientSide, Err: err}
}

func NewHTTPError(status int, body []byte) *APIError {
	e := &APIError{Status: status, Message: ServerMessage(body)}
	if status == http.StatusNotFound {
		e.Err = ErrNotFound
	}
	return e
}

// ErrorResponse is the failure body of the remote service.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ServerMessage extracts the optional message field of a failure body.
func ServerMessage(body []byte) string {
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return strings.TrimSpace(resp.Message)
}

// Describe derives the user-facing text for a failed call. status is
// ClientSide when transportErr caused the failure.
func Describe(status int, serverMessage string, transportErr error) string {
	if status == ClientSide {
		msg := "unknown error"
		if transportErr != nil {
			msg = transportErr.Error()
		}
		return "Error: " + msg
	}
	switch status {
	case http.StatusBadRequest:
		return "Bad Request: " + orDefault(serverMessage, "Invalid data")
	case http.StatusNotFound:
		return "Not Found: " + orDefault(serverMessage, "Resource not found")
	case http.StatusInternalServerError:
		return "Server Error: " + orDefault(serverMessage, "Internal server error")
	default:
		return orDefault(serverMessage, fmt.Sprintf("Error: %d", status))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
