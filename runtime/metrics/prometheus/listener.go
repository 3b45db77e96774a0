package prometheus

import (
	"github.com/AltairaLabs/interviewkit/runtime/events"
)

// Label values.
const (
	outcomeArmed      = "armed"
	outcomeCancelled  = "cancelled"
	sourceEndpoint    = "endpoint"
	sourceSynthesized = "synthesized"
)

// MetricsListener records interview events as Prometheus metrics.
// It implements the events.Listener signature and should be registered
// with an EventBus using SubscribeAll.
type MetricsListener struct{}

// NewMetricsListener creates a new MetricsListener.
func NewMetricsListener() *MetricsListener {
	return &MetricsListener{}
}

// Handle processes an event and records relevant metrics.
func (l *MetricsListener) Handle(event *events.Event) {
	//exhaustive:ignore
	switch event.Type {
	case events.EventSessionStarted:
		RecordSessionStart()
	case events.EventSessionStopped:
		if data, ok := event.Data.(events.SessionStoppedData); ok {
			RecordSessionEnd(data.Duration.Seconds())
		}
	case events.EventStateChanged:
		if data, ok := event.Data.(events.StateChangedData); ok {
			RecordStateTransition(data.From, data.To)
		}
	case events.EventTurnCompleted:
		if data, ok := event.Data.(events.TurnCompletedData); ok {
			RecordTurn(data.Phase, data.Latency.Seconds())
		}
	case events.EventTurnFailed:
		if data, ok := event.Data.(events.TurnFailedData); ok {
			RecordTurnFailure(data.Kind, data.Fatal)
		}
	case events.EventUtteranceRejected:
		RecordUtteranceRejected()
	case events.EventCountdownArmed:
		RecordCountdown(outcomeArmed)
	case events.EventCountdownCancelled:
		RecordCountdown(outcomeCancelled)
	case events.EventPlaybackStarted:
		l.handlePlaybackStarted(event)
	default:
		// Ignore events that don't have metrics
	}
}

func (l *MetricsListener) handlePlaybackStarted(event *events.Event) {
	data, ok := event.Data.(events.PlaybackStartedData)
	if !ok {
		return
	}
	source := sourceEndpoint
	if data.Synthesized {
		source = sourceSynthesized
	}
	RecordPlayback(source)
}

// Listener returns an events.Listener function that can be registered with an EventBus.
func (l *MetricsListener) Listener() events.Listener {
	return l.Handle
}
