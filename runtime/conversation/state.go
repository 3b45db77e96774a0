package conversation

import (
	"time"

	"github.com/AltairaLabs/interviewkit/runtime/types"
)

// State is the conversation state of one interview session. It is owned by
// the turn loop and is not safe for concurrent use.
type State struct {
	rules   []Rule
	history History
	facts   FactSheet
}

// NewState creates an empty state using rules for fact extraction.
// A nil rules slice selects DefaultRules.
func NewState(rules []Rule) *State {
	if rules == nil {
		rules = DefaultRules()
	}
	return &State{rules: rules}
}

// Reset clears history and facts for a new session.
func (s *State) Reset() {
	s.history.Reset()
	s.facts.Reset()
}

// Greet appends the synthetic opening interviewer turn.
func (s *State) Greet(text string, at time.Time) {
	s.history.Append(types.NewTurn(types.RoleAssistant, text, at))
}

// Record appends a completed round trip and updates facts from the user's
// transcript. It returns the fact kinds filled by this turn.
func (s *State) Record(transcript, reply string, at time.Time) []FactKind {
	s.history.Append(types.NewTurn(types.RoleUser, transcript, at))
	s.history.Append(types.NewTurn(types.RoleAssistant, reply, at))
	return Apply(s.rules, &s.facts, transcript)
}

// Phase derives the current phase from the history.
func (s *State) Phase() Phase {
	return PhaseFor(s.history.UserTurns())
}

// History returns the session history.
func (s *State) History() *History {
	return &s.history
}

// Facts returns the session fact sheet.
func (s *State) Facts() *FactSheet {
	return &s.facts
}
