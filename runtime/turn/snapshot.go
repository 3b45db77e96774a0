package turn

import (
	"time"

	"github.com/AltairaLabs/interviewkit/runtime/conversation"
	"github.com/AltairaLabs/interviewkit/runtime/types"
)

// Snapshot is a read-only projection of the orchestrator, published after
// every handled event. SilenceElapsed is the continuous silence after speech
// in the current recording session; it is zero outside Recording.
type Snapshot struct {
	State            State               `json:"state"`
	SessionRef       string              `json:"sessionRef,omitempty"`
	RecordingSession uint64              `json:"recordingSession"`
	Generation       uint64              `json:"generation"`
	Phase            conversation.Phase  `json:"phase"`
	Turns            []types.Turn        `json:"turns"`
	Facts            map[string][]string `json:"facts"`
	LastError        string              `json:"lastError,omitempty"`
	Speaking         bool                `json:"speaking"`
	HasSpoken        bool                `json:"hasSpoken"`
	SilenceElapsed   time.Duration       `json:"silenceElapsed"`
	Level            float64             `json:"level"`
	Buffered         int                 `json:"buffered"`
	CountdownPending bool                `json:"countdownPending"`
}
