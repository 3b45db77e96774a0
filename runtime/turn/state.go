package turn

import "fmt"

// State is the orchestrator state.
type State int

const (
	// StateIdle means no interview is running.
	StateIdle State = iota
	// StateRecording means the microphone is open and the monitor is listening.
	StateRecording
	// StateProcessing means an utterance is with the conversation endpoint.
	StateProcessing
	// StatePlaying means the interviewer reply is being played.
	StatePlaying
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateRecording:  "recording",
	StateProcessing: "processing",
	StatePlaying:    "playing",
}

// String returns the lower-case state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// busy reports whether incoming audio must not be buffered.
func (s State) busy() bool {
	return s == StateProcessing || s == StatePlaying
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
