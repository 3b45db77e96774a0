package interviewer

import (
	"errors"
	"fmt"
	"net/http"
)

// Common endpoint errors.
var (
	// ErrEmptyAudio is returned when Converse is called without audio.
	ErrEmptyAudio = errors.New("utterance audio is empty")

	// ErrMissingText is returned when a response carries no interviewer text.
	ErrMissingText = errors.New("response has no text")

	// ErrMalformedResponse is returned when a response fails schema validation or decoding.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrIncompatibleAPI is returned when the endpoint reports an unsupported API version.
	ErrIncompatibleAPI = errors.New("incompatible endpoint API version")
)

// APIError is a non-success HTTP status returned by the endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Retryable  bool
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("endpoint returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("endpoint returned HTTP %d: %s", e.StatusCode, e.Message)
}

func newAPIError(status int, message string) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    message,
		Retryable:  status == http.StatusTooManyRequests || status >= http.StatusInternalServerError,
	}
}
