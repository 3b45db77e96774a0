package events

import "time"

// EventType identifies the type of event emitted by the interview runtime.
type EventType string

const (
	// EventSessionStarted marks a successful Start.
	EventSessionStarted EventType = "session.started"
	// EventSessionStopped marks the end of an interview.
	EventSessionStopped EventType = "session.stopped"
	// EventStateChanged marks an orchestrator state transition.
	EventStateChanged EventType = "state.changed"
	// EventTurnCompleted marks a conversational turn answered by the endpoint.
	EventTurnCompleted EventType = "turn.completed"
	// EventTurnFailed marks a turn that ended in an error.
	EventTurnFailed EventType = "turn.failed"
	// EventUtteranceRejected marks an utterance below the size floor.
	EventUtteranceRejected EventType = "utterance.rejected"
	// EventCountdownArmed marks the start of a silence countdown.
	EventCountdownArmed EventType = "countdown.armed"
	// EventCountdownCancelled marks a countdown cancelled by resumed speech.
	EventCountdownCancelled EventType = "countdown.cancelled"
	// EventPlaybackStarted marks the start of reply playback.
	EventPlaybackStarted EventType = "playback.started"
	// EventPlaybackFinished marks the end of reply playback.
	EventPlaybackFinished EventType = "playback.finished"
)

// EventData is a marker interface for event payloads.
type EventData interface {
	eventData()
}

// Event represents a runtime event delivered to listeners.
type Event struct {
	Type             EventType `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	SessionRef       string    `json:"sessionRef,omitempty"`
	RecordingSession uint64    `json:"recordingSession,omitempty"`
	Data             EventData `json:"data,omitempty"`
}

// baseEventData provides a shared marker implementation for all event payloads.
type baseEventData struct{}

func (baseEventData) eventData() {}

// SessionStartedData is the payload of session.started.
type SessionStartedData struct {
	baseEventData
	Greeting string `json:"greeting"`
}

// SessionStoppedData is the payload of session.stopped.
type SessionStoppedData struct {
	baseEventData
	Duration time.Duration `json:"duration"`
	Minutes  float64       `json:"minutes"`
	Turns    int           `json:"turns"`
}

// StateChangedData is the payload of state.changed.
type StateChangedData struct {
	baseEventData
	From string `json:"from"`
	To   string `json:"to"`
}

// TurnCompletedData is the payload of turn.completed.
type TurnCompletedData struct {
	baseEventData
	Phase      string        `json:"phase"`
	UserTurns  int           `json:"userTurns"`
	Latency    time.Duration `json:"latency"`
	HasAudio   bool          `json:"hasAudio"`
	NewFacts   []string      `json:"newFacts,omitempty"`
	ReplyChars int           `json:"replyChars"`
}

// TurnFailedData is the payload of turn.failed.
type TurnFailedData struct {
	baseEventData
	Kind  string `json:"kind"`
	Error string `json:"error"`
	Fatal bool   `json:"fatal"`
}

// UtteranceRejectedData is the payload of utterance.rejected.
type UtteranceRejectedData struct {
	baseEventData
	Bytes    int `json:"bytes"`
	MinBytes int `json:"minBytes"`
}

// CountdownArmedData is the payload of countdown.armed.
type CountdownArmedData struct {
	baseEventData
	Timeout time.Duration `json:"timeout"`
	Level   float64       `json:"level"`
}

// CountdownCancelledData is the payload of countdown.cancelled.
type CountdownCancelledData struct {
	baseEventData
	Level float64 `json:"level"`
}

// PlaybackStartedData is the payload of playback.started.
type PlaybackStartedData struct {
	baseEventData
	MIMEType    string `json:"mimeType"`
	Bytes       int    `json:"bytes"`
	Synthesized bool   `json:"synthesized"`
}

// PlaybackFinishedData is the payload of playback.finished.
type PlaybackFinishedData struct {
	baseEventData
	Error string `json:"error,omitempty"`
}
