package audio

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapture struct {
	mu      sync.Mutex
	stopped int
}

func (c *fakeCapture) Stop() error {
	c.mu.Lock()
	c.stopped++
	c.mu.Unlock()
	return nil
}

type fakeMicrophone struct {
	captures []*fakeCapture
	handlers []CaptureHandlers
	openErr  error
}

func (m *fakeMicrophone) Open(_ context.Context, h CaptureHandlers) (Capture, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	c := &fakeCapture{}
	m.captures = append(m.captures, c)
	m.handlers = append(m.handlers, h)
	return c, nil
}

func TestRecorder_StartSessionIncrementsAndStopsPrevious(t *testing.T) {
	mic := &fakeMicrophone{}
	r := NewRecorder(mic)
	var chunks []Chunk

	id1, err := r.StartSession(context.Background(), func(c Chunk) { chunks = append(chunks, c) }, nil)
	require.NoError(t, err)
	id2, err := r.StartSession(context.Background(), func(c Chunk) { chunks = append(chunks, c) }, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)
	assert.Equal(t, 1, mic.captures[0].stopped, "previous capture stopped")
	assert.Equal(t, 0, mic.captures[1].stopped)

	mic.handlers[0].OnData([]byte{1, 2})
	mic.handlers[1].OnData([]byte{3, 4})
	require.Len(t, chunks, 2)
	assert.Equal(t, uint64(1), chunks[0].Session)
	assert.Equal(t, uint64(2), chunks[1].Session)
}

func TestRecorder_AcceptDiscardsStaleChunks(t *testing.T) {
	r := NewRecorder(&fakeMicrophone{})
	_, err := r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.NoError(t, err)
	_, err = r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.NoError(t, err)

	assert.False(t, r.Accept(Chunk{Session: 1, Data: constantPCM(1000, 10)}, false))
	assert.Zero(t, r.Buffered())
	assert.Zero(t, r.Level(), "stale chunks do not move the meter")

	assert.True(t, r.Accept(Chunk{Session: 2, Data: constantPCM(1000, 10)}, false))
	assert.Equal(t, 20, r.Buffered())
}

func TestRecorder_AcceptWhileBusyTracksLevelOnly(t *testing.T) {
	r := NewRecorder(&fakeMicrophone{})
	id, err := r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.NoError(t, err)

	assert.False(t, r.Accept(Chunk{Session: id, Data: constantPCM(16384, 10)}, true))
	assert.Zero(t, r.Buffered())
	assert.InDelta(t, 0.5, r.Level(), 1e-9)
}

func TestRecorder_StartSessionClearsBuffer(t *testing.T) {
	r := NewRecorder(&fakeMicrophone{})
	id, _ := r.StartSession(context.Background(), func(Chunk) {}, nil)
	r.Accept(Chunk{Session: id, Data: []byte{1, 2, 3, 4}}, false)
	require.Equal(t, 4, r.Buffered())

	_, err := r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.NoError(t, err)
	assert.Zero(t, r.Buffered())
	assert.Zero(t, r.Level())
}

func TestRecorder_StopSession(t *testing.T) {
	mic := &fakeMicrophone{}
	r := NewRecorder(mic)
	id, _ := r.StartSession(context.Background(), func(Chunk) {}, nil)
	r.Accept(Chunk{Session: id, Data: []byte{1, 2}}, false)

	r.StopSession()
	r.StopSession()

	assert.False(t, r.Active())
	assert.Equal(t, 1, mic.captures[0].stopped)
	assert.False(t, r.Accept(Chunk{Session: id, Data: []byte{3, 4}}, false), "stopped session drops chunks")
	assert.Equal(t, []byte{1, 2}, r.Freeze(), "buffered audio survives stop")
	assert.Zero(t, r.Buffered())
}

func TestRecorder_StopSessionClearsLevel(t *testing.T) {
	r := NewRecorder(&fakeMicrophone{})
	id, err := r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.NoError(t, err)
	r.Accept(Chunk{Session: id, Data: constantPCM(16384, 10)}, false)
	require.InDelta(t, 0.5, r.Level(), 1e-9)

	r.StopSession()
	assert.Zero(t, r.Level())
	assert.Equal(t, 20, r.Buffered())
}

func TestRecorder_ErrorsAreTagged(t *testing.T) {
	mic := &fakeMicrophone{}
	r := NewRecorder(mic)
	var gotSession uint64
	var gotErr error
	id, _ := r.StartSession(context.Background(), func(Chunk) {}, func(s uint64, err error) {
		gotSession, gotErr = s, err
	})

	boom := errors.New("device lost")
	mic.handlers[0].OnError(boom)
	assert.Equal(t, id, gotSession)
	assert.ErrorIs(t, gotErr, boom)
}

func TestRecorder_OpenFailure(t *testing.T) {
	mic := &fakeMicrophone{openErr: errors.New("permission denied")}
	r := NewRecorder(mic)

	id, err := r.StartSession(context.Background(), func(Chunk) {}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
	assert.Equal(t, uint64(1), id, "the id is consumed even on failure")
	assert.False(t, r.Active())

	_, err = NewRecorder(nil).StartSession(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoMicrophone)
}

func TestUtteranceBuffer(t *testing.T) {
	var b UtteranceBuffer
	src := []byte{1, 2}
	b.Append(src)
	b.Append(nil)
	b.Append([]byte{3})
	src[0] = 9

	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []byte{1, 2, 3}, b.Freeze(), "append copies its input")
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Freeze())
}
