package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport signals that the upstream could not be reached (connection, DNS, timeout)
var ErrTransport = errors.New("transport error")

// ErrHTTPStatus signals a non-2xx response; the concrete error is a HTTPStatusError
var ErrHTTPStatus = errors.New("non-2xx HTTP status code")

// ErrShape signals a well-transported body that is not the expected JSON container or lacks a field
var ErrShape = errors.New("invalid response format")

// ErrMapping signals a record that failed a required-field extraction
var ErrMapping = errors.New("record mapping error")

// ErrNilArgument signals a missing constructor argument
var ErrNilArgument = errors.New("nil argument")

// HTTPStatusError carries the status code of a rejected request
type HTTPStatusError struct {
	StatusCode int
	Path       string
}

// Error returns the error string
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: %d %s for %s", ErrHTTPStatus.Error(), e.StatusCode, http.StatusText(e.StatusCode), e.Path)
}

// Is makes errors.Is(err, ErrHTTPStatus) work
func (e *HTTPStatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}
