package backend

import (
	"fmt"
	"net/http"
)

// NetworkError wraps a transport-level failure (DNS, connection refused,
// timeout). The request never produced an HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RequestError means the server was reachable but returned a non-success
// status. Body holds the raw response body text, which doubles as the
// user-facing error message when present.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	return http.StatusText(e.Status)
}

// ValidationError is a client-side precondition failure. It is never sent to
// the server.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
