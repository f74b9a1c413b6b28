package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("request rejected")
	ErrMalformed    = errors.New("malformed response")
)

// ErrorKind classifies an APIError.
type ErrorKind int

const (
	// KindNetwork is a transport failure: no HTTP response was received.
	KindNetwork ErrorKind = iota + 1
	// KindServerRejected is any non-2xx answer other than 401.
	KindServerRejected
	// KindSessionExpired is a 401 on a call made with the session token.
	KindSessionExpired
	// KindMalformed is a 2xx answer whose body could not be decoded.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindServerRejected:
		return "server rejected"
	case KindSessionExpired:
		return "session expired"
	case KindMalformed:
		return "malformed response"
	default:
		return "unknown"
	}
}

// APIError is the failure variant of every client operation. Message is
// meant to be shown to the user as is.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is lets callers match an APIError against the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnavailable:
		return e.Kind == KindNetwork
	case ErrUnauthorized:
		return e.Kind == KindSessionExpired || e.Status == http.StatusUnauthorized
	case ErrRejected:
		return e.Kind == KindServerRejected
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: "Network error", Err: err}
}

// NewMalformedError wraps a decoding failure of a successful response.
func NewMalformedError(status int, err error) *APIError {
	return &APIError{Kind: KindMalformed, Status: status, Message: "Invalid server response", Err: err}
}

// Message extracts the user-facing message from err, or fallback when err
// carries none.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
