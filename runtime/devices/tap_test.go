package devices

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
)

type recorded struct {
	data [][]byte
	errs []error
}

func (r *recorded) handlers() audio.CaptureHandlers {
	return audio.CaptureHandlers{
		OnData:  func(pcm []byte) { r.data = append(r.data, pcm) },
		OnError: func(err error) { r.errs = append(r.errs, err) },
	}
}

func TestTap_DeliversToLatestCaptureOnly(t *testing.T) {
	var tp tap
	var first, second recorded

	c1 := tp.attach(context.Background(), first.handlers())
	tp.deliver([]byte{1})
	c2 := tp.attach(context.Background(), second.handlers())
	tp.deliver([]byte{2})

	assert.Equal(t, [][]byte{{1}}, first.data)
	assert.Equal(t, [][]byte{{2}}, second.data)

	assert.NoError(t, c1.Stop())
	tp.deliver([]byte{3})
	assert.Len(t, second.data, 2, "stopping a superseded capture leaves the current one attached")

	assert.NoError(t, c2.Stop())
	assert.NoError(t, c2.Stop())
	tp.deliver([]byte{4})
	tp.fail(errors.New("device lost"))
	assert.Len(t, second.data, 2)
	assert.Empty(t, second.errs)
}

func TestTap_FailReachesAttachedCapture(t *testing.T) {
	var tp tap
	var rec recorded
	tp.attach(context.Background(), rec.handlers())

	boom := errors.New("device lost")
	tp.fail(boom)
	assert.Equal(t, []error{boom}, rec.errs)
}

func TestTap_ContextDetaches(t *testing.T) {
	var tp tap
	var rec recorded
	ctx, cancel := context.WithCancel(context.Background())
	tp.attach(ctx, rec.handlers())

	cancel()
	assert.Eventually(t, func() bool { return tp.active.Load() == nil }, time.Second, time.Millisecond)
	tp.deliver([]byte{1})
	assert.Empty(t, rec.data)
}

func TestTap_DetachAll(t *testing.T) {
	var tp tap
	var rec recorded
	c := tp.attach(context.Background(), rec.handlers())

	tp.detachAll()
	tp.deliver([]byte{1})
	assert.Empty(t, rec.data)
	assert.NoError(t, c.Stop())
}
