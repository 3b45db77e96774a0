package turn

import (
	"errors"
	"time"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/tts"
)

// Orchestrator defaults.
const (
	DefaultSilenceTimeout    = 1500 * time.Millisecond
	DefaultMinUtteranceBytes = 8000
	DefaultGreeting          = "Hello, and thank you for joining today. Let's start with a short self-introduction, please."
	DefaultMissingTranscript = "(inaudible)"
	defaultBackgroundTimeout = 30 * time.Second
)

// Config holds orchestrator parameters.
type Config struct {
	// Monitor configures level sampling and the speech threshold.
	Monitor audio.MonitorConfig

	// SilenceTimeout is how long silence after speech must last before the
	// utterance is sent (default: 1500ms).
	SilenceTimeout time.Duration

	// MinUtteranceBytes is the size floor below which an utterance is
	// rejected without a network call (default: 8000, 250ms of 16kHz PCM).
	MinUtteranceBytes int

	// Format describes captured PCM. Utterances are sent as WAV in this format.
	Format audio.Format

	// Greeting is the synthetic opening interviewer turn.
	Greeting string

	// MissingTranscript stands in for the user turn when the endpoint
	// returns no transcript.
	MissingTranscript string

	// Synthesis configures the optional fallback synthesizer.
	Synthesis tts.SynthesisConfig

	// BackgroundTimeout bounds persistence, usage and feedback calls.
	BackgroundTimeout time.Duration
}

// DefaultConfig returns the standard orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		Monitor:           audio.DefaultMonitorConfig(),
		SilenceTimeout:    DefaultSilenceTimeout,
		MinUtteranceBytes: DefaultMinUtteranceBytes,
		Format:            audio.DefaultFormat(),
		Greeting:          DefaultGreeting,
		MissingTranscript: DefaultMissingTranscript,
		Synthesis:         tts.DefaultSynthesisConfig(),
		BackgroundTimeout: defaultBackgroundTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Monitor == (audio.MonitorConfig{}) {
		c.Monitor = d.Monitor
	}
	if c.SilenceTimeout == 0 {
		c.SilenceTimeout = d.SilenceTimeout
	}
	if c.MinUtteranceBytes == 0 {
		c.MinUtteranceBytes = d.MinUtteranceBytes
	}
	if c.Format == (audio.Format{}) {
		c.Format = d.Format
	}
	if c.Greeting == "" {
		c.Greeting = d.Greeting
	}
	if c.MissingTranscript == "" {
		c.MissingTranscript = d.MissingTranscript
	}
	if c.Synthesis == (tts.SynthesisConfig{}) {
		c.Synthesis = d.Synthesis
	}
	if c.BackgroundTimeout == 0 {
		c.BackgroundTimeout = d.BackgroundTimeout
	}
	return c
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if err := c.Monitor.Validate(); err != nil {
		return err
	}
	if c.SilenceTimeout <= 0 {
		return errors.New("silence timeout must be positive")
	}
	if c.MinUtteranceBytes < 0 {
		return errors.New("minimum utterance size must not be negative")
	}
	if c.Format.SampleRate <= 0 || c.Format.Channels <= 0 || c.Format.BitsPerSample != 16 {
		return errors.New("audio format must be 16-bit PCM with a positive rate and channel count")
	}
	return nil
}
