package api

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential indicates no bearer token was available, so no
	// request was issued.
	ErrMissingCredential = errors.New("no bearer credential; run `timesheet login` first")

	// ErrUnavailable indicates the timesheet server is unreachable.
	ErrUnavailable = errors.New("timesheet server unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("timesheet request timed out")

	// ErrInvalidResponse indicates the response body could not be decoded.
	ErrInvalidResponse = errors.New("invalid timesheet server response")
)

// StatusError is returned when the server answers with a non-2xx status.
// Message carries the server's "message" field when it sent one.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// Retryable reports whether the request may succeed if repeated.
func (e *StatusError) Retryable() bool {
	return e.Code >= 500
}

func errorCode(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "NO_CREDENTIAL"
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidResponse):
		return "INVALID_RESPONSE"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("HTTP_%d", statusErr.Code)
	default:
		return "UNKNOWN"
	}
}
