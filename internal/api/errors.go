package api

import (
	"errors"
	"fmt"
	"net/http"
)

// BackendError is any non-2xx response. Message carries the server's
// own message when the body had one.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (%d)", e.Status)
}

// NetworkError means the request never produced a response.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsUnauthorized(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}
