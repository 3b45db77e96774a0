// Package statestore persists interview artifacts: the rendered transcript,
// the questions asked so far and the final feedback, keyed by session reference.
//
// The turn loop calls a Store at turn and session boundaries and only logs
// failures, so an unavailable store never interrupts an interview.
package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// Common errors.
var (
	// ErrNotFound is returned when nothing is stored for a session reference.
	ErrNotFound = errors.New("session record not found")

	// ErrInvalidID is returned when a session reference is empty.
	ErrInvalidID = errors.New("invalid session reference")
)

// Store is the persistence collaborator.
type Store interface {
	// SaveTranscript replaces the stored transcript of the session.
	SaveTranscript(ctx context.Context, sessionRef, transcript string) error

	// AppendQuestion records an interviewer question.
	AppendQuestion(ctx context.Context, sessionRef, question string) error

	// SaveFeedback replaces the stored feedback document.
	SaveFeedback(ctx context.Context, sessionRef string, feedback json.RawMessage) error

	// GetTranscript returns the stored transcript or ErrNotFound.
	GetTranscript(ctx context.Context, sessionRef string) (string, error)

	// GetQuestions returns the recorded questions in order or ErrNotFound.
	GetQuestions(ctx context.Context, sessionRef string) ([]string, error)

	// GetFeedback returns the stored feedback document or ErrNotFound.
	GetFeedback(ctx context.Context, sessionRef string) (json.RawMessage, error)
}

func validRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return ErrInvalidID
	}
	return nil
}
