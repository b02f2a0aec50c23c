package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// sentinel kinds, matched with errors.Is
var (
	ErrConnection         = errors.New("connection error")
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrGatewayTimeout     = errors.New("gateway timeout")
	ErrHTTP               = errors.New("http error")
)

// TransportError is returned when a node could not be reached (StatusCode 0)
// or answered with a non-2xx status.
type TransportError struct {
	StatusCode int
	// Err is the reason phrase or the underlying connection error
	Err error
	// Info is the decoded response body when it was JSON, the raw text otherwise
	Info any
	URL  string
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%s returned %d: %v", e.URL, e.StatusCode, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's status.
func (e *TransportError) Is(target error) bool {
	return target == kindFor(e.StatusCode)
}

func kindFor(status int) error {
	switch status {
	case 0:
		return ErrConnection
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	case http.StatusGatewayTimeout:
		return ErrGatewayTimeout
	}
	return ErrHTTP
}

func newConnectionError(url string, err error) *TransportError {
	return &TransportError{URL: url, Err: err}
}

func newHTTPError(url string, status int, info any) *TransportError {
	return &TransportError{
		StatusCode: status,
		Err:        errors.New(http.StatusText(status)),
		Info:       info,
		URL:        url,
	}
}
