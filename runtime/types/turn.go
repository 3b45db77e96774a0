// Package types holds the data model shared across interviewkit packages.
package types

import "time"

// Role identifies who produced a Turn.
type Role string

const (
	// RoleUser is the candidate.
	RoleUser Role = "user"
	// RoleAssistant is the AI interviewer.
	RoleAssistant Role = "assistant"
)

// Label returns the speaker label used when rendering transcripts.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "Candidate"
	case RoleAssistant:
		return "Interviewer"
	default:
		return string(r)
	}
}

// Turn is one speaker's contribution to the conversation. Turns are
// immutable once appended to a history.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a Turn at the given time.
func NewTurn(role Role, content string, at time.Time) Turn {
	return Turn{Role: role, Content: content, Timestamp: at}
}
