package logger

import (
	"context"
)

// contextKey is a private type for context keys to avoid collisions.
type contextKey string

// Context keys for common logging fields. Values stored under these keys are
// added to every record logged through a ContextHandler.
const (
	// ContextKeySessionRef identifies the interview session.
	ContextKeySessionRef contextKey = "session_ref"

	// ContextKeyRecordingSession identifies the current recording session id.
	ContextKeyRecordingSession contextKey = "recording_session"

	// ContextKeyPhase identifies the interview phase.
	ContextKeyPhase contextKey = "phase"

	// ContextKeyState identifies the orchestrator state.
	ContextKeyState contextKey = "state"

	// ContextKeyRequestID identifies an individual endpoint request.
	ContextKeyRequestID contextKey = "request_id"
)

var allContextKeys = []contextKey{
	ContextKeySessionRef,
	ContextKeyRecordingSession,
	ContextKeyPhase,
	ContextKeyState,
	ContextKeyRequestID,
}

// WithSessionRef returns a new context with the interview session reference set.
func WithSessionRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, ContextKeySessionRef, ref)
}

// WithRecordingSession returns a new context with the recording session id set.
func WithRecordingSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRecordingSession, id)
}

// WithPhase returns a new context with the interview phase set.
func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ContextKeyPhase, phase)
}

// WithState returns a new context with the orchestrator state set.
func WithState(ctx context.Context, state string) context.Context {
	return context.WithValue(ctx, ContextKeyState, state)
}

// WithRequestID returns a new context with the request ID set.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// LoggingFields holds several context logging fields for WithLoggingContext.
type LoggingFields struct {
	SessionRef       string
	RecordingSession string
	Phase            string
	State            string
	RequestID        string
}

// WithLoggingContext sets every non-empty field of fields on ctx.
func WithLoggingContext(ctx context.Context, fields *LoggingFields) context.Context {
	if fields == nil {
		return ctx
	}
	if fields.SessionRef != "" {
		ctx = WithSessionRef(ctx, fields.SessionRef)
	}
	if fields.RecordingSession != "" {
		ctx = WithRecordingSession(ctx, fields.RecordingSession)
	}
	if fields.Phase != "" {
		ctx = WithPhase(ctx, fields.Phase)
	}
	if fields.State != "" {
		ctx = WithState(ctx, fields.State)
	}
	if fields.RequestID != "" {
		ctx = WithRequestID(ctx, fields.RequestID)
	}
	return ctx
}
