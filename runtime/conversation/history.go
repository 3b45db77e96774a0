package conversation

import (
	"github.com/AltairaLabs/interviewkit/runtime/types"
)

// History is the ordered, append-only sequence of turns for one session.
type History struct {
	turns []types.Turn
}

// Append adds a turn at the end of the history.
func (h *History) Append(t types.Turn) {
	h.turns = append(h.turns, t)
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the turns in chronological order.
func (h *History) Turns() []types.Turn {
	out := make([]types.Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// UserTurns counts the candidate's turns.
func (h *History) UserTurns() int {
	n := 0
	for _, t := range h.turns {
		if t.Role == types.RoleUser {
			n++
		}
	}
	return n
}

// Questions returns the interviewer's turns in order.
func (h *History) Questions() []string {
	var out []string
	for _, t := range h.turns {
		if t.Role == types.RoleAssistant {
			out = append(out, t.Content)
		}
	}
	return out
}

// Reset empties the history.
func (h *History) Reset() {
	h.turns = nil
}
