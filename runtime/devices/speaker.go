//go:build portaudio

package devices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
)

const resampleQuality = 4

// Speaker plays clips on the default output device at a fixed rate.
type Speaker struct {
	rate beep.SampleRate
}

// NewSpeaker initializes the output device. Clips at other rates are resampled.
func NewSpeaker(sampleRate int) (*Speaker, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}
	return &Speaker{rate: rate}, nil
}

// Play decodes clip and starts it. done is called once the clip has
// drained, unless the playback is stopped first.
func (s *Speaker) Play(ctx context.Context, clip audio.Clip, done func(error)) (audio.Playback, error) {
	stream, format, err := Decode(clip)
	if err != nil {
		return nil, err
	}

	var src beep.Streamer = stream
	if format.SampleRate != s.rate {
		src = beep.Resample(resampleQuality, format.SampleRate, s.rate, stream)
	}

	p := &playback{stream: stream, ctrl: &beep.Ctrl{Streamer: src}, finished: make(chan struct{})}
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() { p.complete(done) })))

	go func() {
		select {
		case <-ctx.Done():
			p.Stop()
		case <-p.finished:
		}
	}()
	return p, nil
}

type playback struct {
	mu       sync.Mutex
	stream   beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	stopped  bool
	ended    bool
	finished chan struct{}
}

// complete runs on the speaker goroutine with the speaker lock held.
func (p *playback) complete(done func(error)) {
	p.mu.Lock()
	if p.ended {
		p.mu.Unlock()
		return
	}
	p.ended = true
	stopped := p.stopped
	p.mu.Unlock()

	err := p.stream.Err()
	_ = p.stream.Close()
	close(p.finished)
	if !stopped {
		done(err)
	}
}

// Stop detaches the stream from the mixer. The completion callback then
// fires without reporting.
func (p *playback) Stop() {
	speaker.Lock()
	defer speaker.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.ended {
		return
	}
	p.stopped = true
	p.ctrl.Streamer = nil
}
