package turn

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	pkgerrors "github.com/AltairaLabs/interviewkit/pkg/errors"
	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/conversation"
	"github.com/AltairaLabs/interviewkit/runtime/events"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	"github.com/AltairaLabs/interviewkit/runtime/prompt"
	"github.com/AltairaLabs/interviewkit/runtime/providers/interviewer"
	"github.com/AltairaLabs/interviewkit/runtime/statestore"
	"github.com/AltairaLabs/interviewkit/runtime/tts"
	"github.com/AltairaLabs/interviewkit/runtime/usage"
)

const (
	componentName = "turn"
	inboxSize     = 64
)

// Conversant answers one utterance. *interviewer.Client implements it.
type Conversant interface {
	Converse(ctx context.Context, req interviewer.Request) (*interviewer.Response, error)
}

// Reviewer evaluates a finished interview. *interviewer.Client implements it.
type Reviewer interface {
	Feedback(ctx context.Context, transcript, contextJSON string) (*interviewer.Feedback, error)
}

// Dependencies are the collaborators injected into an Orchestrator.
// Microphone, Speaker and Conversant are required.
type Dependencies struct {
	Microphone audio.Microphone
	Speaker    audio.Speaker
	Conversant Conversant

	// Reviewer requests feedback at stop. Optional.
	Reviewer Reviewer
	// Synthesizer voices replies that arrive without audio. Optional.
	Synthesizer tts.Service
	// Store persists transcripts, questions and feedback. Optional.
	Store statestore.Store
	// Meter gates Start and records usage. Defaults to usage.Unlimited.
	Meter usage.Meter
	// Bus receives orchestrator events. Optional.
	Bus *events.EventBus
	// Clock drives the level ticker and silence countdown. Defaults to the real clock.
	Clock clock.WithTicker
	// Composer renders prompts. Defaults to a Composer with built-in defaults.
	Composer *prompt.Composer
	// Rules drives fact extraction. Nil selects conversation.DefaultRules.
	Rules []conversation.Rule
}

// Orchestrator runs interviews. Create it with New and drive it with Run.
type Orchestrator struct {
	cfg  Config
	deps Dependencies

	inbox   chan any
	done    chan struct{}
	running atomic.Bool
	snap    atomic.Pointer[Snapshot]
	bg      sync.WaitGroup

	// Owned by the loop goroutine.
	runCtx     context.Context //nolint:containedctx // lifetime of Run
	state      State
	generation uint64
	sessionRef string
	startedAt  time.Time
	lastErr    string
	speaking   bool
	conv       *conversation.State
	next       prompt.Prompt
	monitor    *audio.Monitor
	recorder   *audio.Recorder
	player     *audio.Player
	emitter    *events.Emitter
	ticker     clock.Ticker
	countdown  clock.Timer
	inflight   uint64
	sentAt     time.Time
}

// New validates cfg and creates an Orchestrator.
func New(deps Dependencies, cfg Config) (*Orchestrator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orchestrator config: %w", err)
	}
	if deps.Microphone == nil {
		return nil, audio.ErrNoMicrophone
	}
	if deps.Speaker == nil {
		return nil, audio.ErrNoSpeaker
	}
	if deps.Conversant == nil {
		return nil, errors.New("conversation endpoint is required")
	}
	if deps.Meter == nil {
		deps.Meter = usage.Unlimited{}
	}
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Composer == nil {
		composer, err := prompt.NewComposer(prompt.Config{})
		if err != nil {
			return nil, err
		}
		deps.Composer = composer
	}

	monitor, err := audio.NewMonitor(cfg.Monitor)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:      cfg,
		deps:     deps,
		inbox:    make(chan any, inboxSize),
		done:     make(chan struct{}),
		conv:     conversation.NewState(deps.Rules),
		monitor:  monitor,
		recorder: audio.NewRecorder(deps.Microphone),
		player:   audio.NewPlayer(deps.Speaker),
	}
	o.publish()
	return o, nil
}

// Snapshot returns the latest published projection.
func (o *Orchestrator) Snapshot() Snapshot {
	return *o.snap.Load()
}

// Run executes the loop until ctx is cancelled. A running interview is
// stopped and accounted before Run returns, and Run waits for outstanding
// persistence and usage calls. Run may be called once.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return errors.New("orchestrator is already running")
	}
	o.runCtx = ctx

	for {
		select {
		case <-ctx.Done():
			if o.state != StateIdle {
				o.finish(nil)
			}
			o.publish()
			close(o.done)
			o.bg.Wait()
			return nil
		case msg := <-o.inbox:
			o.dispatch(msg)
		case now := <-o.tickC():
			o.onTick(now)
		case <-o.countdownC():
			o.onCountdown()
		}
		o.publish()
	}
}

// Start begins an interview. It fails with a usage- or device-kind error
// when the interview may not start.
func (o *Orchestrator) Start(ctx context.Context) error {
	return o.command(ctx, kindStart)
}

// Stop ends the running interview.
func (o *Orchestrator) Stop(ctx context.Context) error {
	return o.command(ctx, kindStop)
}

func (o *Orchestrator) command(ctx context.Context, kind commandKind) error {
	cmd := command{kind: kind, ctx: ctx, reply: make(chan error, 1)}
	select {
	case o.inbox <- cmd:
	case <-o.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-o.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// post delivers msg to the loop, giving up once the loop has stopped reading.
func (o *Orchestrator) post(msg any) {
	select {
	case o.inbox <- msg:
	case <-o.done:
	}
}

func (o *Orchestrator) dispatch(msg any) {
	switch m := msg.(type) {
	case command:
		err := o.handleCommand(m)
		o.publish()
		m.reply <- err
	case chunkMsg:
		o.onChunk(m)
	case captureErrorMsg:
		o.onCaptureError(m)
	case responseMsg:
		o.onResponse(m)
	case playbackDoneMsg:
		o.onPlaybackDone(m)
	}
}

func (o *Orchestrator) handleCommand(cmd command) error {
	switch cmd.kind {
	case kindStart:
		return o.start(cmd.ctx)
	case kindStop:
		if o.state == StateIdle {
			return ErrNotRunning
		}
		o.finish(nil)
		return nil
	}
	return fmt.Errorf("unknown command %d", cmd.kind)
}

func (o *Orchestrator) tickC() <-chan time.Time {
	if o.ticker == nil {
		return nil
	}
	return o.ticker.C()
}

func (o *Orchestrator) countdownC() <-chan time.Time {
	if o.countdown == nil {
		return nil
	}
	return o.countdown.C()
}

func (o *Orchestrator) now() time.Time {
	return o.deps.Clock.Now()
}

func (o *Orchestrator) logCtx() context.Context {
	return logger.WithLoggingContext(o.runCtx, &logger.LoggingFields{
		SessionRef:       o.sessionRef,
		RecordingSession: strconv.FormatUint(o.recorder.Current(), 10),
		Phase:            string(o.conv.Phase()),
		State:            o.state.String(),
	})
}

// setState transitions and emits state.changed.
func (o *Orchestrator) setState(to State) {
	if o.state == to {
		return
	}
	from := o.state
	o.state = to
	o.emitter.StateChanged(o.recorder.Current(), from.String(), to.String())
	logger.DebugContext(o.logCtx(), "State changed", "from", from.String(), "to", to.String())
}

// start handles the Start command: usage gate, greeting, first recording session.
func (o *Orchestrator) start(ctx context.Context) error {
	if o.state != StateIdle {
		return ErrAlreadyRunning
	}
	if err := o.deps.Meter.CanStartSession(ctx); err != nil {
		o.lastErr = err.Error()
		if pkgerrors.KindOf(err) == pkgerrors.KindUnknown {
			err = pkgerrors.New(componentName, "Start", err).WithKind(pkgerrors.KindUsage)
		}
		logger.Warn("Interview start denied", "error", err)
		return err
	}

	o.generation++
	o.sessionRef = uuid.NewString()
	o.emitter = events.NewEmitter(o.deps.Bus, o.sessionRef).WithClock(o.now)
	o.lastErr = ""
	o.startedAt = o.now()
	o.conv.Reset()
	o.conv.Greet(o.cfg.Greeting, o.startedAt)
	o.compose()

	if err := o.openRecording(); err != nil {
		o.sessionRef = ""
		o.emitter = nil
		o.conv.Reset()
		o.lastErr = err.Error()
		return err
	}

	o.ticker = o.deps.Clock.NewTicker(o.cfg.Monitor.Interval)
	o.emitter.SessionStarted(o.cfg.Greeting)
	o.setState(StateRecording)
	o.persistQuestion(o.cfg.Greeting)
	logger.InfoContext(o.logCtx(), "Interview started")
	return nil
}

// openRecording starts a fresh recording session. Device failures are
// reported as device-kind errors.
func (o *Orchestrator) openRecording() error {
	o.stopCountdown()
	o.monitor.Reset()
	o.speaking = false

	gen := o.generation
	_, err := o.recorder.StartSession(o.runCtx,
		func(c audio.Chunk) { o.post(chunkMsg{generation: gen, chunk: c}) },
		func(session uint64, err error) {
			o.post(captureErrorMsg{generation: gen, session: session, err: err})
		},
	)
	if err != nil {
		return pkgerrors.New(componentName, "StartRecording", err).WithKind(pkgerrors.KindDevice)
	}
	return nil
}

// resume returns to Recording with a new session. A device failure here
// ends the interview.
func (o *Orchestrator) resume() {
	if err := o.openRecording(); err != nil {
		logger.ErrorContext(o.logCtx(), "Failed to restart recording", "error", err)
		o.emitter.TurnFailed(o.recorder.Current(), pkgerrors.KindDevice.String(), err, true)
		o.finish(err)
		return
	}
	o.setState(StateRecording)
}

// fail surfaces a turn error and resumes recording.
func (o *Orchestrator) fail(err error, fallback pkgerrors.Kind) {
	kind := pkgerrors.KindOf(err)
	if kind == pkgerrors.KindUnknown {
		kind = fallback
	}
	o.lastErr = err.Error()
	logger.WarnContext(o.logCtx(), "Turn failed", "kind", kind.String(), "error", err)
	o.emitter.TurnFailed(o.recorder.Current(), kind.String(), err, false)
	o.resume()
}

func (o *Orchestrator) onChunk(m chunkMsg) {
	if m.generation != o.generation || o.state == StateIdle {
		return
	}
	o.recorder.Accept(m.chunk, o.state.busy())
}

func (o *Orchestrator) onCaptureError(m captureErrorMsg) {
	if m.generation != o.generation || o.state != StateRecording || m.session != o.recorder.Current() {
		return
	}
	err := pkgerrors.New(componentName, "Capture", m.err).WithKind(pkgerrors.KindCapture)
	o.fail(err, pkgerrors.KindCapture)
}

func (o *Orchestrator) onTick(now time.Time) {
	if o.state != StateRecording {
		return
	}
	obs := o.monitor.Observe(o.recorder.Level(), o.recorder.Buffered(), now)
	o.speaking = obs.Speaking

	switch obs.Decision {
	case audio.DecisionArm:
		o.stopCountdown()
		o.countdown = o.deps.Clock.NewTimer(o.cfg.SilenceTimeout)
		o.emitter.CountdownArmed(o.recorder.Current(), o.cfg.SilenceTimeout, obs.Level)
	case audio.DecisionCancel:
		o.stopCountdown()
		o.emitter.CountdownCancelled(o.recorder.Current(), obs.Level)
	case audio.DecisionNone:
	}
}

func (o *Orchestrator) stopCountdown() {
	if o.countdown != nil {
		o.countdown.Stop()
		o.countdown = nil
	}
}

// onCountdown completes the utterance once silence has lasted the full timeout.
func (o *Orchestrator) onCountdown() {
	o.countdown = nil
	if o.state != StateRecording || !o.monitor.Pending() {
		return
	}
	o.monitor.Disarm()

	session := o.recorder.Current()
	pcm := o.recorder.Freeze()
	o.recorder.StopSession()

	if err := o.checkUtterance(pcm); err != nil {
		o.emitter.UtteranceRejected(session, len(pcm), o.cfg.MinUtteranceBytes)
		o.fail(err, pkgerrors.KindPayload)
		return
	}
	o.submit(session, pcm)
}

func (o *Orchestrator) checkUtterance(pcm []byte) error {
	var cause error
	switch {
	case len(pcm) == 0:
		cause = ErrEmptyUtterance
	case len(pcm) < o.cfg.MinUtteranceBytes:
		cause = fmt.Errorf("%w: %d < %d bytes", ErrUtteranceTooSmall, len(pcm), o.cfg.MinUtteranceBytes)
	default:
		return nil
	}
	return pkgerrors.New(componentName, "Submit", cause).WithKind(pkgerrors.KindPayload)
}

// submit sends the utterance. Exactly one request is in flight while Processing.
func (o *Orchestrator) submit(session uint64, pcm []byte) {
	o.setState(StateProcessing)
	o.inflight = session
	o.sentAt = o.now()

	req := interviewer.Request{
		Audio:        audio.WrapPCMAsWAV(pcm, o.cfg.Format),
		MIMEType:     audio.MIMETypeWAV,
		SystemPrompt: o.next.SystemPrompt,
		ContextJSON:  o.next.ContextJSON,
	}
	gen := o.generation
	ctx := o.logCtx()
	logger.InfoContext(ctx, "Utterance sent", "bytes", len(pcm))

	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		msg := responseMsg{generation: gen, session: session}
		msg.resp, msg.err = o.deps.Conversant.Converse(ctx, req)
		if msg.err == nil {
			msg.clip, msg.synthesized = o.replyClip(ctx, msg.resp)
		}
		o.post(msg)
	}()
}

// replyClip returns the audio to play for resp, synthesizing it when the
// endpoint sent none and a synthesizer is configured.
func (o *Orchestrator) replyClip(ctx context.Context, resp *interviewer.Response) (*audio.Clip, bool) {
	if resp.HasAudio() {
		return &audio.Clip{Data: resp.Audio, MIMEType: resp.MIMEType}, false
	}
	if o.deps.Synthesizer == nil {
		return nil, false
	}
	clip, err := tts.SynthesizeClip(ctx, o.deps.Synthesizer, resp.Text, o.cfg.Synthesis)
	if err != nil {
		logger.WarnContext(ctx, "Speech synthesis failed, continuing without audio",
			"provider", o.deps.Synthesizer.Name(), "error", err)
		return nil, false
	}
	return &clip, true
}

func (o *Orchestrator) onResponse(m responseMsg) {
	if m.generation != o.generation || o.state != StateProcessing || m.session != o.inflight {
		logger.Debug("Discarding stale endpoint result", "generation", m.generation, "session", m.session)
		return
	}
	o.inflight = 0
	latency := o.now().Sub(o.sentAt)

	if m.err != nil {
		o.fail(m.err, pkgerrors.KindNetwork)
		return
	}

	transcript := m.resp.Transcript
	if transcript == "" {
		transcript = o.cfg.MissingTranscript
	}
	filled := o.conv.Record(transcript, m.resp.Text, o.now())
	o.compose()
	o.lastErr = ""

	newFacts := make([]string, len(filled))
	for i, kind := range filled {
		newFacts[i] = string(kind)
	}
	o.emitter.TurnCompleted(m.session, events.TurnCompletedData{
		Phase:      string(o.conv.Phase()),
		UserTurns:  o.conv.History().UserTurns(),
		Latency:    latency,
		HasAudio:   m.clip != nil,
		NewFacts:   newFacts,
		ReplyChars: len(m.resp.Text),
	})
	logger.InfoContext(o.logCtx(), "Turn completed",
		"latency", latency, "has_audio", m.clip != nil, "new_facts", newFacts)
	o.persistTranscript()
	o.persistQuestion(m.resp.Text)

	if m.clip == nil {
		o.resume()
		return
	}
	o.play(*m.clip, m.synthesized)
}

func (o *Orchestrator) play(clip audio.Clip, synthesized bool) {
	gen := o.generation
	_, err := o.player.Play(o.runCtx, clip, func(id uint64, err error) {
		go o.post(playbackDoneMsg{generation: gen, id: id, err: err})
	})
	if err != nil {
		o.lastErr = err.Error()
		logger.WarnContext(o.logCtx(), "Playback failed to start", "error", err)
		o.emitter.PlaybackFinished(err)
		o.resume()
		return
	}
	o.emitter.PlaybackStarted(clip.MIMEType, len(clip.Data), synthesized)
	o.setState(StatePlaying)
}

// onPlaybackDone resumes recording. Playback errors count as completion.
func (o *Orchestrator) onPlaybackDone(m playbackDoneMsg) {
	if m.generation != o.generation || o.state != StatePlaying || !o.player.Finish(m.id) {
		return
	}
	if m.err != nil {
		o.lastErr = pkgerrors.New(componentName, "Playback", m.err).WithKind(pkgerrors.KindPlayback).Error()
		logger.WarnContext(o.logCtx(), "Playback error, resuming recording", "error", m.err)
	}
	o.emitter.PlaybackFinished(m.err)
	o.resume()
}

// finish tears the interview down, reports usage and persists the final
// transcript. cause is the fatal error that ended it, if any.
func (o *Orchestrator) finish(cause error) {
	o.generation++
	o.stopCountdown()
	if o.ticker != nil {
		o.ticker.Stop()
		o.ticker = nil
	}
	o.recorder.StopSession()
	o.player.Stop()
	o.monitor.Reset()
	o.inflight = 0
	o.speaking = false
	if cause != nil {
		o.lastErr = cause.Error()
	}

	elapsed := o.now().Sub(o.startedAt)
	turns := o.conv.History().Len()
	ref := o.sessionRef
	transcript := prompt.RenderHistory(o.conv.History().Turns())
	contextJSON := o.next.ContextJSON
	ctx := o.logCtx()

	o.setState(StateIdle)
	o.emitter.SessionStopped(elapsed, turns)
	logger.InfoContext(ctx, "Interview stopped", "duration", elapsed, "turns", turns)

	o.conv.Reset()
	o.next = prompt.Prompt{}

	o.background(ctx, func(ctx context.Context) {
		if err := o.deps.Meter.AddSessionUsage(ctx, elapsed.Minutes()); err != nil {
			logger.WarnContext(ctx, "Failed to record usage", "minutes", elapsed.Minutes(), "error", err)
		}
	})
	if o.deps.Store == nil {
		return
	}
	o.background(ctx, func(ctx context.Context) {
		if err := o.deps.Store.SaveTranscript(ctx, ref, transcript); err != nil {
			logger.WarnContext(ctx, "Failed to save final transcript", "error", err)
		}
		if o.deps.Reviewer == nil {
			return
		}
		fb, err := o.deps.Reviewer.Feedback(ctx, transcript, contextJSON)
		if err != nil {
			logger.WarnContext(ctx, "Failed to get feedback", "error", err)
			return
		}
		if err := o.deps.Store.SaveFeedback(ctx, ref, fb.Raw); err != nil {
			logger.WarnContext(ctx, "Failed to save feedback", "error", err)
		}
	})
}

// compose pre-renders the prompt for the next utterance.
func (o *Orchestrator) compose() {
	p, err := o.deps.Composer.Compose(prompt.Input{
		Phase: o.conv.Phase(),
		Turns: o.conv.History().Turns(),
		Facts: o.conv.Facts(),
	})
	if err != nil {
		logger.ErrorContext(o.logCtx(), "Failed to compose prompt", "error", err)
		return
	}
	o.next = p
}

func (o *Orchestrator) persistTranscript() {
	if o.deps.Store == nil {
		return
	}
	ref := o.sessionRef
	transcript := prompt.RenderHistory(o.conv.History().Turns())
	o.background(o.logCtx(), func(ctx context.Context) {
		if err := o.deps.Store.SaveTranscript(ctx, ref, transcript); err != nil {
			logger.WarnContext(ctx, "Failed to save transcript", "error", err)
		}
	})
}

func (o *Orchestrator) persistQuestion(question string) {
	if o.deps.Store == nil {
		return
	}
	ref := o.sessionRef
	o.background(o.logCtx(), func(ctx context.Context) {
		if err := o.deps.Store.AppendQuestion(ctx, ref, question); err != nil {
			logger.WarnContext(ctx, "Failed to save question", "error", err)
		}
	})
}

// background runs fn off the loop with a bounded context that survives
// cancellation of the loop.
func (o *Orchestrator) background(ctx context.Context, fn func(context.Context)) {
	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.BackgroundTimeout)
		defer cancel()
		fn(ctx)
	}()
}

// publish stores a fresh snapshot.
func (o *Orchestrator) publish() {
	var silence time.Duration
	if o.state == StateRecording {
		silence = o.monitor.SilenceElapsed(o.now())
	}
	o.snap.Store(&Snapshot{
		State:            o.state,
		SessionRef:       o.sessionRef,
		RecordingSession: o.recorder.Current(),
		Generation:       o.generation,
		Phase:            o.conv.Phase(),
		Turns:            o.conv.History().Turns(),
		Facts:            o.conv.Facts().Map(),
		LastError:        o.lastErr,
		Speaking:         o.speaking,
		HasSpoken:        o.monitor.HasSpoken(),
		SilenceElapsed:   silence,
		Level:            o.recorder.Level(),
		Buffered:         o.recorder.Buffered(),
		CountdownPending: o.monitor.Pending(),
	})
}
