package audio

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSpeaker is returned when a Player has no output device.
var ErrNoSpeaker = errors.New("no speaker configured")

// Clip is encoded audio ready for playback.
type Clip struct {
	Data     []byte
	MIMEType string
}

// Playback is a running output stream.
type Playback interface {
	// Stop halts output without invoking the completion callback. It must be idempotent.
	Stop()
}

// Speaker plays clips on an output device. done is called exactly once when
// the clip ends or fails, unless the playback was stopped first.
type Speaker interface {
	Play(ctx context.Context, clip Clip, done func(err error)) (Playback, error)
}

// Player is the playback controller. At most one playback is outstanding.
type Player struct {
	speaker Speaker
	current uint64
	running Playback
}

// NewPlayer creates a Player over the given speaker.
func NewPlayer(speaker Speaker) *Player {
	return &Player{speaker: speaker}
}

// Play stops any outstanding playback and starts clip. onDone receives the
// playback id and the terminal error, if any.
func (p *Player) Play(ctx context.Context, clip Clip, onDone func(id uint64, err error)) (uint64, error) {
	if p.speaker == nil {
		return 0, ErrNoSpeaker
	}
	p.Stop()

	p.current++
	id := p.current
	running, err := p.speaker.Play(ctx, clip, func(err error) {
		onDone(id, err)
	})
	if err != nil {
		return id, fmt.Errorf("start playback %d: %w", id, err)
	}
	p.running = running
	return id, nil
}

// Finish marks playback id as ended. It reports false for stale ids.
func (p *Player) Finish(id uint64) bool {
	if id != p.current || p.running == nil {
		return false
	}
	p.running = nil
	return true
}

// Stop halts the outstanding playback, if any.
func (p *Player) Stop() {
	if p.running != nil {
		p.running.Stop()
		p.running = nil
	}
}

// Active reports whether a playback is outstanding.
func (p *Player) Active() bool {
	return p.running != nil
}

// Current returns the id of the most recent playback.
func (p *Player) Current() uint64 {
	return p.current
}
