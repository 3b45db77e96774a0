package turn

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/events"
	"github.com/AltairaLabs/interviewkit/runtime/providers/interviewer"
	"github.com/AltairaLabs/interviewkit/runtime/statestore"
	"github.com/AltairaLabs/interviewkit/runtime/tts"
	"github.com/AltairaLabs/interviewkit/runtime/usage"
)

var epoch = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

// pcm returns n bytes of constant-amplitude 16-bit PCM.
func pcm(amplitude int16, n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n/2; i++ {
		_ = binary.Write(&buf, binary.LittleEndian, amplitude)
	}
	return buf.Bytes()
}

type fakeCapture struct {
	mu      sync.Mutex
	stopped int
}

func (c *fakeCapture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped++
	return nil
}

type fakeMicrophone struct {
	mu        sync.Mutex
	handlers  []audio.CaptureHandlers
	captures  []*fakeCapture
	openErr   error
	failAfter int
}

func (m *fakeMicrophone) Open(_ context.Context, h audio.CaptureHandlers) (audio.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openErr != nil && len(m.captures) >= m.failAfter {
		return nil, m.openErr
	}
	c := &fakeCapture{}
	m.handlers = append(m.handlers, h)
	m.captures = append(m.captures, c)
	return c, nil
}

func (m *fakeMicrophone) opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.captures)
}

func (m *fakeMicrophone) handler(i int) audio.CaptureHandlers {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers[i]
}

// data delivers a chunk through the most recent capture.
func (m *fakeMicrophone) data(b []byte) {
	m.handler(m.opens() - 1).OnData(b)
}

func (m *fakeMicrophone) fail(err error) {
	m.handler(m.opens() - 1).OnError(err)
}

type fakePlayback struct{}

func (fakePlayback) Stop() {}

type fakeSpeaker struct {
	mu      sync.Mutex
	clips   []audio.Clip
	dones   []func(error)
	playErr error
}

func (s *fakeSpeaker) Play(_ context.Context, clip audio.Clip, done func(error)) (audio.Playback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playErr != nil {
		return nil, s.playErr
	}
	s.clips = append(s.clips, clip)
	s.dones = append(s.dones, done)
	return fakePlayback{}, nil
}

func (s *fakeSpeaker) played() []audio.Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audio.Clip(nil), s.clips...)
}

func (s *fakeSpeaker) finish(err error) {
	s.mu.Lock()
	done := s.dones[len(s.dones)-1]
	s.mu.Unlock()
	done(err)
}

type fakeConversant struct {
	mu       sync.Mutex
	reqs     []interviewer.Request
	returned int
	gate     chan struct{}
	respond  func(n int) (*interviewer.Response, error)
}

func (c *fakeConversant) Converse(ctx context.Context, req interviewer.Request) (*interviewer.Response, error) {
	c.mu.Lock()
	c.reqs = append(c.reqs, req)
	n := len(c.reqs)
	gate, respond := c.gate, c.respond
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	resp, err := respond(n)

	c.mu.Lock()
	c.returned++
	c.mu.Unlock()
	return resp, err
}

func (c *fakeConversant) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reqs)
}

func (c *fakeConversant) request(i int) interviewer.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reqs[i]
}

func (c *fakeConversant) done() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.returned
}

func reply(text, transcript string, speech []byte) func(int) (*interviewer.Response, error) {
	return func(int) (*interviewer.Response, error) {
		resp := &interviewer.Response{Text: text, Transcript: transcript}
		if speech != nil {
			resp.Audio = speech
			resp.MIMEType = "audio/mpeg"
		}
		return resp, nil
	}
}

func failWith(err error) func(int) (*interviewer.Response, error) {
	return func(int) (*interviewer.Response, error) { return nil, err }
}

type fakeReviewer struct{}

func (fakeReviewer) Feedback(_ context.Context, transcript, _ string) (*interviewer.Feedback, error) {
	raw, _ := json.Marshal(map[string]any{"summary": "clear answers", "lines": len(transcript)})
	return &interviewer.Feedback{Summary: "clear answers", Raw: raw}, nil
}

type fakeSynthesizer struct {
	data []byte
	err  error
}

func (fakeSynthesizer) Name() string { return "fake" }

func (s fakeSynthesizer) Synthesize(context.Context, string, tts.SynthesisConfig) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// eventLog records bus events in delivery order.
type eventLog struct {
	mu     sync.Mutex
	events []*events.Event
}

func (l *eventLog) listen(e *events.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) ofType(typ events.EventType) []*events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*events.Event
	for _, e := range l.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (l *eventLog) enteredState(state string) bool {
	for _, e := range l.ofType(events.EventStateChanged) {
		if e.Data.(events.StateChangedData).To == state {
			return true
		}
	}
	return false
}

type harness struct {
	t     *testing.T
	o     *Orchestrator
	cfg   Config
	clk   *testingclock.FakeClock
	mic   *fakeMicrophone
	spk   *fakeSpeaker
	conv  *fakeConversant
	store *statestore.MemoryStore
	meter *usage.MemoryMeter
	bus   *events.EventBus
	log   *eventLog

	stopOnce sync.Once
	cancel   context.CancelFunc
	runDone  chan error
}

func newHarness(t *testing.T, configure ...func(*harness, *Dependencies, *Config)) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		clk:   testingclock.NewFakeClock(epoch),
		mic:   &fakeMicrophone{},
		spk:   &fakeSpeaker{},
		conv:  &fakeConversant{respond: reply("Q2", "I am Taro", nil)},
		store: statestore.NewMemoryStore(),
		meter: usage.NewMemoryMeter(0),
		bus:   events.NewEventBus(),
		log:   &eventLog{},
	}
	deps := Dependencies{
		Microphone: h.mic,
		Speaker:    h.spk,
		Conversant: h.conv,
		Store:      h.store,
		Meter:      h.meter,
		Bus:        h.bus,
		Clock:      h.clk,
	}
	cfg := DefaultConfig()
	for _, fn := range configure {
		fn(h, &deps, &cfg)
	}
	h.cfg = cfg

	o, err := New(deps, cfg)
	require.NoError(t, err)
	h.o = o
	h.bus.SubscribeAll(h.log.listen)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.runDone = make(chan error, 1)
	go func() { h.runDone <- o.Run(ctx) }()
	t.Cleanup(func() {
		h.stopLoop()
		h.bus.Close()
	})
	return h
}

// stopLoop cancels Run and waits for it to return.
func (h *harness) stopLoop() {
	h.stopOnce.Do(func() {
		h.cancel()
		select {
		case err := <-h.runDone:
			require.NoError(h.t, err)
		case <-time.After(5 * time.Second):
			h.t.Fatal("orchestrator loop did not exit")
		}
	})
}

func (h *harness) eventually(cond func(Snapshot) bool, msg string) Snapshot {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return cond(h.o.Snapshot()) }, 2*time.Second, time.Millisecond, msg)
	return h.o.Snapshot()
}

func (h *harness) start() Snapshot {
	h.t.Helper()
	require.NoError(h.t, h.o.Start(context.Background()))
	return h.eventually(func(s Snapshot) bool { return s.State == StateRecording }, "recording after start")
}

// speakThenPause feeds loud audio, a speaking sample, trailing silence and a
// silent sample, leaving a countdown armed.
func (h *harness) speakThenPause(loudBytes int) {
	h.t.Helper()
	interval := h.cfg.Monitor.Interval

	h.mic.data(pcm(16000, loudBytes))
	h.eventually(func(s Snapshot) bool { return s.Buffered == loudBytes && s.Level > 0.05 }, "loud chunk buffered")
	h.clk.Step(interval)
	h.eventually(func(s Snapshot) bool { return s.Speaking }, "speaking sample")

	h.mic.data(pcm(0, 320))
	h.eventually(func(s Snapshot) bool { return s.Buffered == loudBytes+320 && s.Level == 0 }, "silent chunk buffered")
	h.clk.Step(interval)
	h.eventually(func(s Snapshot) bool { return s.CountdownPending && !s.Speaking }, "countdown armed")
}

// completeUtterance lets the armed countdown run out.
func (h *harness) completeUtterance() {
	h.clk.Step(h.cfg.SilenceTimeout)
}

var errBoom = errors.New("boom")
