package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/adminpanel/internal/domain/shared"
)

// NetworkError reports a round-trip that produced no HTTP response:
// connection refused, DNS failure, timeout, or a cancelled context.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a response with a non-2xx status
type HTTPError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.Status, http.StatusText(e.Status), e.Body)
}

// NotFound reports whether the server answered 404
func (e *HTTPError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// Is lets a 404 match shared.ErrNotFound
func (e *HTTPError) Is(target error) bool {
	return e.NotFound() && target == shared.ErrNotFound
}

// DecodeError reports a 2xx response whose body is not the expected JSON
type DecodeError struct {
	Method string
	URL    string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %s: decode response: %v", e.Method, e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// AsHTTPError returns the *HTTPError in err's chain, if any
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// IsNotFound reports whether err carries a 404 response
func IsNotFound(err error) bool {
	httpErr, ok := AsHTTPError(err)
	return ok && httpErr.NotFound()
}
