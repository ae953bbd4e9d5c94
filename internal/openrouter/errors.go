package openrouter

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network call when the credential
// is empty. Callers should prompt for configuration instead of retrying.
var ErrMissingAPIKey = errors.New("openrouter: api key is required")

// AuthError means the remote service rejected the credential.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("openrouter: authentication failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("openrouter: authentication failed (%d)", e.Status)
}

// APIError means the remote service rejected the request for a reason other
// than authentication. Message carries the remote error text when the body
// was parseable.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.Status)
}

// TransportError means the network request or stream body could not be read
// at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("openrouter: transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
