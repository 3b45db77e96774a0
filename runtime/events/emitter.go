package events

import (
	"time"
)

// Emitter provides helpers for publishing events with shared metadata.
// A nil Emitter, or one without a bus, discards everything.
type Emitter struct {
	bus        *EventBus
	sessionRef string
	now        func() time.Time
}

// NewEmitter creates a new event emitter for one interview.
func NewEmitter(bus *EventBus, sessionRef string) *Emitter {
	return &Emitter{bus: bus, sessionRef: sessionRef, now: time.Now}
}

// WithClock overrides the timestamp source.
func (e *Emitter) WithClock(now func() time.Time) *Emitter {
	if e != nil && now != nil {
		e.now = now
	}
	return e
}

// SessionRef returns the reference stamped on every event.
func (e *Emitter) SessionRef() string {
	if e == nil {
		return ""
	}
	return e.sessionRef
}

func (e *Emitter) emit(eventType EventType, recording uint64, data EventData) {
	if e == nil || e.bus == nil {
		return
	}
	e.bus.Publish(&Event{
		Type:             eventType,
		Timestamp:        e.now(),
		SessionRef:       e.sessionRef,
		RecordingSession: recording,
		Data:             data,
	})
}

// SessionStarted emits session.started.
func (e *Emitter) SessionStarted(greeting string) {
	e.emit(EventSessionStarted, 0, SessionStartedData{Greeting: greeting})
}

// SessionStopped emits session.stopped.
func (e *Emitter) SessionStopped(duration time.Duration, turns int) {
	e.emit(EventSessionStopped, 0, SessionStoppedData{
		Duration: duration,
		Minutes:  duration.Minutes(),
		Turns:    turns,
	})
}

// StateChanged emits state.changed.
func (e *Emitter) StateChanged(recording uint64, from, to string) {
	e.emit(EventStateChanged, recording, StateChangedData{From: from, To: to})
}

// TurnCompleted emits turn.completed.
func (e *Emitter) TurnCompleted(recording uint64, data TurnCompletedData) {
	e.emit(EventTurnCompleted, recording, data)
}

// TurnFailed emits turn.failed.
func (e *Emitter) TurnFailed(recording uint64, kind string, err error, fatal bool) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	e.emit(EventTurnFailed, recording, TurnFailedData{Kind: kind, Error: msg, Fatal: fatal})
}

// UtteranceRejected emits utterance.rejected.
func (e *Emitter) UtteranceRejected(recording uint64, size, minBytes int) {
	e.emit(EventUtteranceRejected, recording, UtteranceRejectedData{Bytes: size, MinBytes: minBytes})
}

// CountdownArmed emits countdown.armed.
func (e *Emitter) CountdownArmed(recording uint64, timeout time.Duration, level float64) {
	e.emit(EventCountdownArmed, recording, CountdownArmedData{Timeout: timeout, Level: level})
}

// CountdownCancelled emits countdown.cancelled.
func (e *Emitter) CountdownCancelled(recording uint64, level float64) {
	e.emit(EventCountdownCancelled, recording, CountdownCancelledData{Level: level})
}

// PlaybackStarted emits playback.started.
func (e *Emitter) PlaybackStarted(mimeType string, size int, synthesized bool) {
	e.emit(EventPlaybackStarted, 0, PlaybackStartedData{
		MIMEType:    mimeType,
		Bytes:       size,
		Synthesized: synthesized,
	})
}

// PlaybackFinished emits playback.finished.
func (e *Emitter) PlaybackFinished(err error) {
	data := PlaybackFinishedData{}
	if err != nil {
		data.Error = err.Error()
	}
	e.emit(EventPlaybackFinished, 0, data)
}
