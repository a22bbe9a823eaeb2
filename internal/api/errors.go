package api

import (
	"errors"
	"fmt"
)

// NetworkError is returned when the transport fails or the API answers
// with a non-success status.
type NetworkError struct {
	StatusCode int // 0 when the request never got a response
	Message    string
	Body       []byte
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("market api network error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("market api error %d: %s", e.StatusCode, e.Message)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error should trigger a retry.
func (e *NetworkError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// MalformedResponseError is returned when a response body cannot be decoded.
type MalformedResponseError struct {
	Body []byte
	Err  error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed market api response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is or wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsMalformedResponse reports whether err is or wraps a *MalformedResponseError.
func IsMalformedResponse(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}
