package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
)

// maxSpeechSize bounds how much synthesized audio is buffered for playback.
const maxSpeechSize = 16 << 20

// Service converts text to speech audio.
type Service interface {
	// Name returns the provider identifier (for logging/debugging).
	Name() string

	// Synthesize converts text to audio. The caller closes the reader.
	Synthesize(ctx context.Context, text string, config SynthesisConfig) (io.ReadCloser, error)
}

// SynthesisConfig configures text-to-speech synthesis.
type SynthesisConfig struct {
	// Voice is the provider voice ID.
	Voice string

	// Format is the output audio format. Only formats the speaker can decode are useful.
	Format AudioFormat

	// Speed is the speech rate multiplier (0.25-4.0, default 1.0).
	Speed float64

	// Model is the provider model, e.g. "tts-1".
	Model string
}

// DefaultSynthesisConfig returns sensible defaults for synthesis.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Voice:  VoiceAlloy,
		Format: FormatMP3,
		Speed:  1.0,
	}
}

// AudioFormat describes an audio output format.
type AudioFormat struct {
	// Name is the provider format identifier ("mp3", "wav").
	Name string

	// MIMEType is the content type handed to the speaker.
	MIMEType string
}

// Supported output formats.
var (
	// FormatMP3 is MP3 format (most compatible).
	FormatMP3 = AudioFormat{Name: "mp3", MIMEType: "audio/mpeg"}

	// FormatWAV is WAV format (PCM with header).
	FormatWAV = AudioFormat{Name: "wav", MIMEType: audio.MIMETypeWAV}
)

// String returns the format name.
func (f AudioFormat) String() string {
	return f.Name
}

// SynthesizeClip runs svc and buffers the result as a playable clip.
//
//nolint:gocritic // hugeParam: SynthesisConfig passed by value to match Service
func SynthesizeClip(ctx context.Context, svc Service, text string, config SynthesisConfig) (audio.Clip, error) {
	rc, err := svc.Synthesize(ctx, text, config)
	if err != nil {
		return audio.Clip{}, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSpeechSize))
	if err != nil {
		return audio.Clip{}, NewSynthesisError(svc.Name(), "", "read audio", err, true)
	}
	if len(data) == 0 {
		return audio.Clip{}, fmt.Errorf("%s: %w", svc.Name(), ErrSynthesisFailed)
	}

	format := config.Format
	if format.MIMEType == "" {
		format = FormatMP3
	}
	return audio.Clip{Data: data, MIMEType: format.MIMEType}, nil
}
