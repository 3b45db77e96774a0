package telemetry

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AltairaLabs/interviewkit/runtime/events"
)

// Span names.
const (
	SpanSession  = "interviewkit.session"
	SpanTurn     = "interviewkit.turn"
	SpanPlayback = "interviewkit.playback"
)

type sessionSpans struct {
	root     trace.Span
	ctx      context.Context //nolint:containedctx // needed to parent child spans
	turns    map[uint64]trace.Span
	playback trace.Span
}

// OTelEventListener converts interview events into OTel spans in real time.
//
// Each interview gets a root span from session.started to session.stopped.
// A turn span covers the Processing phase of one recording session and a
// playback span covers reply playback. Countdown and rejection events are
// recorded as span events on the root.
type OTelEventListener struct {
	tracer trace.Tracer
	parent context.Context //nolint:containedctx // parent for root spans

	mu       sync.Mutex
	sessions map[string]*sessionSpans
}

// NewOTelEventListener creates a listener that creates OTel spans from interview events.
func NewOTelEventListener(tracer trace.Tracer) *OTelEventListener {
	return &OTelEventListener{
		tracer:   tracer,
		parent:   context.Background(),
		sessions: make(map[string]*sessionSpans),
	}
}

// WithParent parents session root spans under the span in ctx.
func (l *OTelEventListener) WithParent(ctx context.Context) *OTelEventListener {
	l.parent = ctx
	return l
}

// OnEvent handles a single event. It can be passed to EventBus.SubscribeAll.
func (l *OTelEventListener) OnEvent(evt *events.Event) {
	//nolint:exhaustive // Only handling span-producing events
	switch evt.Type {
	case events.EventSessionStarted:
		l.startSession(evt)
	case events.EventSessionStopped:
		l.endSession(evt)
	case events.EventStateChanged:
		l.stateChanged(evt)
	case events.EventTurnCompleted:
		l.completeTurn(evt)
	case events.EventTurnFailed:
		l.failTurn(evt)
	case events.EventPlaybackStarted:
		l.startPlayback(evt)
	case events.EventPlaybackFinished:
		l.finishPlayback(evt)
	case events.EventCountdownArmed, events.EventCountdownCancelled, events.EventUtteranceRejected:
		l.annotate(evt)
	}
}

func (l *OTelEventListener) startSession(evt *events.Event) {
	ctx, span := l.tracer.Start(l.parent, SpanSession,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(evt.Timestamp),
		trace.WithAttributes(attribute.String("session.ref", evt.SessionRef)),
	)
	l.mu.Lock()
	l.sessions[evt.SessionRef] = &sessionSpans{root: span, ctx: ctx, turns: make(map[uint64]trace.Span)}
	l.mu.Unlock()
}

func (l *OTelEventListener) endSession(evt *events.Event) {
	l.mu.Lock()
	ss, ok := l.sessions[evt.SessionRef]
	delete(l.sessions, evt.SessionRef)
	l.mu.Unlock()
	if !ok {
		return
	}

	end := trace.WithTimestamp(evt.Timestamp)
	for _, span := range ss.turns {
		span.SetStatus(codes.Error, "session stopped")
		span.End(end)
	}
	if ss.playback != nil {
		ss.playback.End(end)
	}
	if data, ok := evt.Data.(events.SessionStoppedData); ok {
		ss.root.SetAttributes(
			attribute.Int("session.turns", data.Turns),
			attribute.Float64("session.minutes", data.Minutes),
		)
	}
	ss.root.SetStatus(codes.Ok, "")
	ss.root.End(end)
}

func (l *OTelEventListener) session(ref string) (*sessionSpans, bool) {
	ss, ok := l.sessions[ref]
	return ss, ok
}

func (l *OTelEventListener) stateChanged(evt *events.Event) {
	data, ok := evt.Data.(events.StateChangedData)
	if !ok || data.To != "processing" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	ss, ok := l.session(evt.SessionRef)
	if !ok {
		return
	}
	_, span := l.tracer.Start(ss.ctx, SpanTurn,
		trace.WithTimestamp(evt.Timestamp),
		trace.WithAttributes(attribute.String("recording.session", strconv.FormatUint(evt.RecordingSession, 10))),
	)
	ss.turns[evt.RecordingSession] = span
}

func (l *OTelEventListener) takeTurn(evt *events.Event) trace.Span {
	l.mu.Lock()
	defer l.mu.Unlock()
	ss, ok := l.session(evt.SessionRef)
	if !ok {
		return nil
	}
	span, ok := ss.turns[evt.RecordingSession]
	if !ok {
		return nil
	}
	delete(ss.turns, evt.RecordingSession)
	return span
}

func (l *OTelEventListener) completeTurn(evt *events.Event) {
	span := l.takeTurn(evt)
	if span == nil {
		return
	}
	if data, ok := evt.Data.(events.TurnCompletedData); ok {
		span.SetAttributes(
			attribute.String("interview.phase", data.Phase),
			attribute.Int("interview.user_turns", data.UserTurns),
			attribute.Bool("reply.has_audio", data.HasAudio),
			attribute.StringSlice("facts.new", data.NewFacts),
		)
	}
	span.SetStatus(codes.Ok, "")
	span.End(trace.WithTimestamp(evt.Timestamp))
}

func (l *OTelEventListener) failTurn(evt *events.Event) {
	span := l.takeTurn(evt)
	if span == nil {
		return
	}
	msg := "turn failed"
	if data, ok := evt.Data.(events.TurnFailedData); ok {
		msg = data.Error
		span.SetAttributes(
			attribute.String("error.kind", data.Kind),
			attribute.Bool("error.fatal", data.Fatal),
		)
	}
	span.SetStatus(codes.Error, msg)
	span.End(trace.WithTimestamp(evt.Timestamp))
}

func (l *OTelEventListener) startPlayback(evt *events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ss, ok := l.session(evt.SessionRef)
	if !ok {
		return
	}
	attrs := []attribute.KeyValue{}
	if data, ok := evt.Data.(events.PlaybackStartedData); ok {
		attrs = append(attrs,
			attribute.String("audio.mime_type", data.MIMEType),
			attribute.Int("audio.bytes", data.Bytes),
			attribute.Bool("audio.synthesized", data.Synthesized),
		)
	}
	if ss.playback != nil {
		ss.playback.End(trace.WithTimestamp(evt.Timestamp))
	}
	_, ss.playback = l.tracer.Start(ss.ctx, SpanPlayback,
		trace.WithTimestamp(evt.Timestamp),
		trace.WithAttributes(attrs...),
	)
}

func (l *OTelEventListener) finishPlayback(evt *events.Event) {
	l.mu.Lock()
	ss, ok := l.session(evt.SessionRef)
	var span trace.Span
	if ok {
		span, ss.playback = ss.playback, nil
	}
	l.mu.Unlock()
	if span == nil {
		return
	}
	if data, ok := evt.Data.(events.PlaybackFinishedData); ok && data.Error != "" {
		span.SetStatus(codes.Error, data.Error)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(evt.Timestamp))
}

func (l *OTelEventListener) annotate(evt *events.Event) {
	l.mu.Lock()
	ss, ok := l.session(evt.SessionRef)
	l.mu.Unlock()
	if !ok {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("recording.session", strconv.FormatUint(evt.RecordingSession, 10)),
	}
	switch data := evt.Data.(type) {
	case events.CountdownArmedData:
		attrs = append(attrs, attribute.Int64("countdown.timeout_ms", data.Timeout.Milliseconds()))
	case events.UtteranceRejectedData:
		attrs = append(attrs, attribute.Int("utterance.bytes", data.Bytes))
	}
	ss.root.AddEvent(string(evt.Type), trace.WithTimestamp(evt.Timestamp), trace.WithAttributes(attrs...))
}
