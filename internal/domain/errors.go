package domain

import (
	"errors"
	"fmt"
)

// RemoteError reports a non-success status from the remote places service.
// Error returns only Message so it can be shown to the user as-is.
type RemoteError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string { return e.Message }

// DecodeError reports a response body that is not valid JSON or does not match
// the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrLocationTimeout is wrapped by LocationUnavailableError when the locator
// did not answer within the allowed wait.
var ErrLocationTimeout = errors.New("location lookup timed out")

// LocationUnavailableError reports that the current position could not be
// determined.
type LocationUnavailableError struct {
	Err error
}

func (e *LocationUnavailableError) Error() string {
	return fmt.Sprintf("location unavailable: %v", e.Err)
}

func (e *LocationUnavailableError) Unwrap() error { return e.Err }

// MessageOr returns err's message, or fallback when err carries none.
func MessageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
