// Package errors provides the error types shared by interviewkit modules.
//
// ContextualError records which component failed, what it was doing, and which
// class of failure occurred. The class (Kind) drives recovery in the turn loop:
// device and usage failures stop a session from starting, every other kind is
// recovered by starting a fresh recording session.
//
// Usage:
//
//	err := errors.New("interviewer", "Converse", someErr).
//		WithKind(errors.KindNetwork).
//		WithStatusCode(502)
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure for recovery purposes.
type Kind int

const (
	// KindUnknown is used when no explicit kind was attached.
	KindUnknown Kind = iota
	// KindDevice means the microphone or speaker could not be opened.
	KindDevice
	// KindCapture means the recorder failed while a session was running.
	KindCapture
	// KindPayload means an utterance failed local validation.
	KindPayload
	// KindNetwork covers transport failures, non-success statuses and malformed responses.
	KindNetwork
	// KindPlayback means audio output failed.
	KindPlayback
	// KindUsage means the usage collaborator refused a new session.
	KindUsage
	// KindPersistence covers failures of the persistence collaborator.
	KindPersistence
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindDevice:      "device",
	KindCapture:     "capture",
	KindPayload:     "payload",
	KindNetwork:     "network",
	KindPlayback:    "playback",
	KindUsage:       "usage",
	KindPersistence: "persistence",
}

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ContextualError is a structured error type that provides consistent context
// about where and why an error occurred.
type ContextualError struct {
	// Component identifies the module that produced the error (e.g. "turn", "interviewer", "devices").
	Component string

	// Operation describes what was being done when the error occurred.
	Operation string

	// Kind classifies the failure.
	Kind Kind

	// StatusCode is an optional HTTP or application-level status code.
	StatusCode int

	// Details holds optional structured metadata about the error.
	Details map[string]any

	// Cause is the underlying error, if any.
	Cause error
}

// New creates a ContextualError with the given component, operation, and cause.
func New(component, operation string, cause error) *ContextualError {
	return &ContextualError{
		Component: component,
		Operation: operation,
		Cause:     cause,
	}
}

// Error returns a human-readable representation of the error.
func (e *ContextualError) Error() string {
	base := fmt.Sprintf("[%s] %s", e.Component, e.Operation)

	if e.StatusCode != 0 {
		base += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Cause != nil {
		base += ": " + e.Cause.Error()
	}

	return base
}

// Unwrap returns the underlying cause, enabling use with errors.Is and errors.As.
func (e *ContextualError) Unwrap() error {
	return e.Cause
}

// WithKind sets the failure kind and returns the error for chaining.
func (e *ContextualError) WithKind(kind Kind) *ContextualError {
	e.Kind = kind
	return e
}

// WithStatusCode sets the status code and returns the error for chaining.
func (e *ContextualError) WithStatusCode(code int) *ContextualError {
	e.StatusCode = code
	return e
}

// WithDetails sets the details map and returns the error for chaining.
func (e *ContextualError) WithDetails(details map[string]any) *ContextualError {
	e.Details = details
	return e
}

// KindOf returns the first explicit kind found in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	for err != nil {
		var ce *ContextualError
		if !stderrors.As(err, &ce) {
			return KindUnknown
		}
		if ce.Kind != KindUnknown {
			return ce.Kind
		}
		err = ce.Cause
	}
	return KindUnknown
}

// IsFatal reports whether err must prevent a session from entering Recording.
// Only device and usage failures are fatal; everything else restarts recording.
func IsFatal(err error) bool {
	switch KindOf(err) {
	case KindDevice, KindUsage:
		return true
	default:
		return false
	}
}
