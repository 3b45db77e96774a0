package devices

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
)

// tap routes one long-lived input stream to the capture currently attached.
// At most one capture receives data and detaching never blocks. A chunk that
// is mid-delivery when its capture stops may still arrive; the recorder
// discards it by session.
type tap struct {
	active atomic.Pointer[tapCapture]
}

type tapCapture struct {
	tap      *tap
	handlers audio.CaptureHandlers
	once     sync.Once
	unwatch  func() bool
}

// attach makes h the receiver, replacing any previous capture. The capture
// detaches itself once ctx is done.
func (t *tap) attach(ctx context.Context, h audio.CaptureHandlers) *tapCapture {
	c := &tapCapture{tap: t, handlers: h}
	t.active.Store(c)
	c.unwatch = context.AfterFunc(ctx, c.detach)
	return c
}

func (t *tap) deliver(pcm []byte) {
	if c := t.active.Load(); c != nil && c.handlers.OnData != nil {
		c.handlers.OnData(pcm)
	}
}

func (t *tap) fail(err error) {
	if c := t.active.Load(); c != nil && c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
}

func (t *tap) detachAll() {
	t.active.Store(nil)
}

func (c *tapCapture) detach() {
	c.tap.active.CompareAndSwap(c, nil)
}

// Stop detaches the handlers; the input stream keeps running.
func (c *tapCapture) Stop() error {
	c.once.Do(func() {
		c.unwatch()
		c.detach()
	})
	return nil
}
