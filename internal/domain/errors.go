package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the requested video or playlist does not exist
	ErrItemNotFound = errors.New("media item not found")

	// ErrServerOffline indicates the media server is unreachable
	ErrServerOffline = errors.New("media server is unreachable")

	// ErrAuthFailed indicates authentication failed or is missing
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrNoActiveConnection indicates no server connection is selected
	ErrNoActiveConnection = errors.New("no active connection")
)

// NetworkError is a transport failure: the request never produced a response.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrServerOffline, e.Err}
}

// HTTPStatusError is a non-2xx response. Detail holds the server's "detail"
// message when the body carried one.
type HTTPStatusError struct {
	StatusCode int
	Body       string
	Detail     string
}

func (e *HTTPStatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Is lets callers match status classes against the sentinel errors
func (e *HTTPStatusError) Is(target error) bool {
	switch target {
	case ErrItemNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrAuthFailed:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// AuthenticationError is a rejected login or a call that needed a valid token.
// Error() returns Message verbatim so it can be shown to the user as-is.
type AuthenticationError struct {
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

func (e *AuthenticationError) Is(target error) bool {
	return target == ErrAuthFailed
}

// PersistenceParseError is a stored blob that could not be decoded
type PersistenceParseError struct {
	Key string
	Err error
}

func (e *PersistenceParseError) Error() string {
	return fmt.Sprintf("parse stored %q: %v", e.Key, e.Err)
}

func (e *PersistenceParseError) Unwrap() error {
	return e.Err
}
