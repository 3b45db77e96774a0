package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoMicrophone is returned when a Recorder has no capture device.
var ErrNoMicrophone = errors.New("no microphone configured")

// CaptureHandlers receive device callbacks for one capture. They may be
// called from any goroutine.
type CaptureHandlers struct {
	OnData  func(pcm []byte)
	OnError func(err error)
}

// Capture is a running low-level capture.
type Capture interface {
	// Stop halts capture and releases the handlers. It must be idempotent.
	Stop() error
}

// Microphone opens capture sequences on an input device.
type Microphone interface {
	Open(ctx context.Context, handlers CaptureHandlers) (Capture, error)
}

// Chunk is a capture fragment tagged with the session that produced it.
type Chunk struct {
	Session uint64
	Data    []byte
}

// Recorder is the recording session controller. It owns the capture device,
// the utterance buffer and the level meter, and discards data from any
// session other than the current one.
type Recorder struct {
	mic     Microphone
	current uint64
	active  bool
	capture Capture

	buffer UtteranceBuffer
	meter  LevelMeter
}

// NewRecorder creates a Recorder over the given microphone.
func NewRecorder(mic Microphone) *Recorder {
	return &Recorder{mic: mic}
}

// StartSession invalidates the previous session, clears buffered audio and
// opens a new capture. Chunks are delivered to onChunk tagged with the new
// session id; capture failures are delivered to onError with the same id.
func (r *Recorder) StartSession(
	ctx context.Context,
	onChunk func(Chunk),
	onError func(session uint64, err error),
) (uint64, error) {
	if r.mic == nil {
		return 0, ErrNoMicrophone
	}

	r.current++
	id := r.current
	r.releaseCapture()
	r.buffer.Reset()
	r.meter.Reset()

	capture, err := r.mic.Open(ctx, CaptureHandlers{
		OnData: func(pcm []byte) {
			onChunk(Chunk{Session: id, Data: pcm})
		},
		OnError: func(err error) {
			onError(id, err)
		},
	})
	if err != nil {
		return id, fmt.Errorf("open capture for session %d: %w", id, err)
	}

	r.capture = capture
	r.active = true
	return id, nil
}

// StopSession halts capture and releases the device. Buffered audio is kept
// so that a caller can still freeze it; the level drops to zero.
func (r *Recorder) StopSession() {
	r.releaseCapture()
	r.meter.Reset()
}

func (r *Recorder) releaseCapture() {
	r.active = false
	if r.capture != nil {
		_ = r.capture.Stop()
		r.capture = nil
	}
}

// Accept applies a chunk. Chunks from a stale or stopped session are dropped.
// While busy (processing or playing) the level is tracked but nothing is buffered.
// It reports whether the chunk was appended.
func (r *Recorder) Accept(chunk Chunk, busy bool) bool {
	if !r.active || chunk.Session != r.current {
		return false
	}
	r.meter.Observe(chunk.Data)
	if busy {
		return false
	}
	r.buffer.Append(chunk.Data)
	return len(chunk.Data) > 0
}

// Current returns the current session id. Zero means no session was started.
func (r *Recorder) Current() uint64 {
	return r.current
}

// Active reports whether a capture is running.
func (r *Recorder) Active() bool {
	return r.active
}

// Level returns the level of the last accepted chunk.
func (r *Recorder) Level() float64 {
	return r.meter.Level()
}

// Buffered returns the number of buffered bytes.
func (r *Recorder) Buffered() int {
	return r.buffer.Len()
}

// Freeze returns the buffered utterance and empties the buffer.
func (r *Recorder) Freeze() []byte {
	return r.buffer.Freeze()
}
