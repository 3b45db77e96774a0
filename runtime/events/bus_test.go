package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector gathers delivered events for assertions.
type collector struct {
	mu     sync.Mutex
	events []*Event
}

func (c *collector) listen(e *Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) types() []EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func (c *collector) waitFor(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.events) >= n
	}, time.Second, 5*time.Millisecond)
}

func TestEventBusPublishesToSpecificAndGlobalListeners(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	defer bus.Close()

	specific := &collector{}
	global := &collector{}
	bus.Subscribe(EventTurnCompleted, specific.listen)
	bus.SubscribeAll(global.listen)

	bus.Publish(&Event{Type: EventTurnCompleted})
	bus.Publish(&Event{Type: EventStateChanged})

	global.waitFor(t, 2)
	specific.waitFor(t, 1)
	assert.Equal(t, []EventType{EventTurnCompleted}, specific.types())
}

func TestEventBusPreservesOrder(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	defer bus.Close()

	c := &collector{}
	bus.SubscribeAll(c.listen)

	want := []EventType{
		EventSessionStarted,
		EventStateChanged,
		EventCountdownArmed,
		EventStateChanged,
		EventTurnCompleted,
		EventSessionStopped,
	}
	for _, typ := range want {
		bus.Publish(&Event{Type: typ})
	}

	c.waitFor(t, len(want))
	assert.Equal(t, want, c.types())
}

func TestEventBusRecoversFromPanic(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	defer bus.Close()

	bus.Subscribe(EventTurnFailed, func(*Event) { panic("listener panic") })
	c := &collector{}
	bus.Subscribe(EventTurnFailed, c.listen)

	bus.Publish(&Event{Type: EventTurnFailed})
	c.waitFor(t, 1)
}

func TestEventBusDropsWhenFull(t *testing.T) {
	t.Parallel()

	bus := NewEventBusWithQueue(1)
	defer bus.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	bus.SubscribeAll(func(*Event) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})

	bus.Publish(&Event{Type: EventStateChanged})
	<-started
	bus.Publish(&Event{Type: EventStateChanged})
	bus.Publish(&Event{Type: EventStateChanged})
	close(release)

	assert.Equal(t, uint64(1), bus.Dropped())
}

func TestEventBusPublishAfterClose(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	c := &collector{}
	bus.SubscribeAll(c.listen)
	bus.Close()
	bus.Close()

	bus.Publish(&Event{Type: EventStateChanged})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, c.types())
}

func TestEmitterStampsMetadata(t *testing.T) {
	t.Parallel()

	bus := NewEventBus()
	defer bus.Close()
	c := &collector{}
	bus.SubscribeAll(c.listen)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	em := NewEmitter(bus, "ref-1").WithClock(func() time.Time { return fixed })

	em.StateChanged(3, "recording", "processing")
	em.TurnFailed(3, "network", errors.New("boom"), false)
	c.waitFor(t, 2)

	c.mu.Lock()
	defer c.mu.Unlock()
	first := c.events[0]
	assert.Equal(t, "ref-1", first.SessionRef)
	assert.Equal(t, uint64(3), first.RecordingSession)
	assert.Equal(t, fixed, first.Timestamp)
	assert.Equal(t, StateChangedData{From: "recording", To: "processing"}, first.Data)

	failed, ok := c.events[1].Data.(TurnFailedData)
	require.True(t, ok)
	assert.Equal(t, "boom", failed.Error)
}

func TestNilEmitterIsNoop(t *testing.T) {
	var em *Emitter
	assert.NotPanics(t, func() {
		em.SessionStarted("hi")
		em.PlaybackFinished(errors.New("x"))
	})
	assert.Empty(t, em.SessionRef())
}

func TestEventJSON(t *testing.T) {
	e := &Event{
		Type:       EventUtteranceRejected,
		SessionRef: "ref",
		Data:       UtteranceRejectedData{Bytes: 10, MinBytes: 8000},
	}
	raw, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "utterance.rejected", decoded["type"])
	assert.Equal(t, map[string]any{"bytes": float64(10), "minBytes": float64(8000)}, decoded["data"])
}
