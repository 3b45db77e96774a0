//go:build portaudio

package devices

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
)

// chunksPerSecond sets the capture granularity (10ms per chunk).
const chunksPerSecond = 100

// Microphone captures from the default input device. The input stream is
// opened by the first Open and kept until Close; each capture attaches to it,
// so back-to-back sessions never hold two streams on the device.
type Microphone struct {
	format audio.Format
	tap    tap

	mu    sync.Mutex
	input *inputStream
}

type inputStream struct {
	stream *portaudio.Stream
	buf    []int16
	quit   chan struct{}
	exited chan struct{}
}

func (in *inputStream) close() {
	_ = in.stream.Stop()
	_ = in.stream.Close()
}

// NewMicrophone initializes PortAudio for capture in the given format.
// Callers must Close it to release PortAudio.
func NewMicrophone(format audio.Format) (*Microphone, error) {
	if format.BitsPerSample != 16 {
		return nil, fmt.Errorf("%w: %d-bit capture", ErrUnsupportedFormat, format.BitsPerSample)
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return &Microphone{format: format}, nil
}

// Close stops the input stream and terminates PortAudio.
func (m *Microphone) Close() error {
	m.tap.detachAll()

	m.mu.Lock()
	in := m.input
	m.input = nil
	m.mu.Unlock()

	if in != nil {
		close(in.quit)
		<-in.exited
		in.close()
	}
	return portaudio.Terminate()
}

// Open attaches a capture to the input stream, opening the device on first
// use. Chunks are delivered from the stream's read goroutine.
func (m *Microphone) Open(ctx context.Context, h audio.CaptureHandlers) (audio.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.input == nil {
		in, err := m.openInput()
		if err != nil {
			return nil, err
		}
		m.input = in
		go m.read(in)
	}
	return m.tap.attach(ctx, h), nil
}

func (m *Microphone) openInput() (*inputStream, error) {
	frames := m.format.SampleRate / chunksPerSecond
	buf := make([]int16, frames*m.format.Channels)
	stream, err := portaudio.OpenDefaultStream(m.format.Channels, 0, float64(m.format.SampleRate), frames, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}
	return &inputStream{stream: stream, buf: buf, quit: make(chan struct{}), exited: make(chan struct{})}, nil
}

// read pumps the stream until Close or a read error. A failed stream is
// dropped so the next Open reopens the device.
func (m *Microphone) read(in *inputStream) {
	defer close(in.exited)

	for {
		select {
		case <-in.quit:
			return
		default:
		}

		err := in.stream.Read()
		switch {
		case err == nil:
			m.tap.deliver(samplesToPCM(in.buf))
		case errors.Is(err, portaudio.InputOverflowed):
			logger.Debug("Input overflowed, continuing capture")
		default:
			if m.drop(in) {
				in.close()
			}
			m.tap.fail(err)
			return
		}
	}
}

// drop forgets in if it is still the current stream and reports whether it did.
func (m *Microphone) drop(in *inputStream) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.input != in {
		return false
	}
	m.input = nil
	return true
}
