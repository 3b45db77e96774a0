//go:build !portaudio

package devices

import "github.com/AltairaLabs/interviewkit/runtime/audio"

// Microphone is unavailable in this build.
type Microphone struct{ audio.Microphone }

// NewMicrophone returns ErrUnavailable.
func NewMicrophone(audio.Format) (*Microphone, error) { return nil, ErrUnavailable }

// Close is a no-op.
func (*Microphone) Close() error { return nil }

// Speaker is unavailable in this build.
type Speaker struct{ audio.Speaker }

// NewSpeaker returns ErrUnavailable.
func NewSpeaker(int) (*Speaker, error) { return nil, ErrUnavailable }
