package config

import (
	"time"

	"github.com/AltairaLabs/interviewkit/runtime/audio"
	"github.com/AltairaLabs/interviewkit/runtime/conversation"
	"github.com/AltairaLabs/interviewkit/runtime/logger"
	"github.com/AltairaLabs/interviewkit/runtime/prompt"
	"github.com/AltairaLabs/interviewkit/runtime/providers/interviewer"
	"github.com/AltairaLabs/interviewkit/runtime/tts"
	"github.com/AltairaLabs/interviewkit/runtime/turn"
)

// Default values not owned by a runtime package.
const (
	DefaultEndpointTimeout   = 60 * time.Second
	DefaultUsageLimitMinutes = 60.0
	DefaultOutputSampleRate  = 24000
	DefaultAPIKeyEnv         = "INTERVIEW_API_KEY"
	DefaultTTSAPIKeyEnv      = "OPENAI_API_KEY"
	DefaultServiceName       = "interviewkit"
	DefaultRedisAddr         = "localhost:6379"
)

// Default returns the manifest used when no file is given.
func Default() *InterviewConfig {
	format := audio.DefaultFormat()
	monitor := audio.DefaultMonitorConfig()
	synthesis := tts.DefaultSynthesisConfig()

	return &InterviewConfig{
		APIVersion: APIVersion,
		Kind:       Kind,
		Spec: Spec{
			Audio: AudioSpec{
				SampleRate:       format.SampleRate,
				Channels:         format.Channels,
				BitsPerSample:    format.BitsPerSample,
				OutputSampleRate: DefaultOutputSampleRate,
			},
			Turn: TurnSpec{
				LevelInterval:     monitor.Interval,
				SpeechThreshold:   monitor.Threshold,
				SilenceTimeout:    turn.DefaultSilenceTimeout,
				MinUtteranceBytes: turn.DefaultMinUtteranceBytes,
			},
			Endpoint: EndpointSpec{
				APIKeyEnv:         DefaultAPIKeyEnv,
				Timeout:           DefaultEndpointTimeout,
				VersionConstraint: interviewer.DefaultVersionConstraint,
				Feedback:          true,
			},
			TTS: TTSSpec{
				Provider:  "openai",
				Model:     tts.ModelTTS1,
				Voice:     synthesis.Voice,
				Speed:     synthesis.Speed,
				APIKeyEnv: DefaultTTSAPIKeyEnv,
			},
			Storage: StorageSpec{Type: BackendMemory},
			Usage: UsageSpec{
				Type:         BackendMemory,
				LimitMinutes: DefaultUsageLimitMinutes,
			},
			Logging: LoggingSpec{
				Level:  "info",
				Format: logger.FormatText,
			},
			Telemetry: TelemetrySpec{ServiceName: DefaultServiceName},
		},
	}
}

// AudioFormat returns the capture format.
func (s *Spec) AudioFormat() audio.Format {
	return audio.Format{
		SampleRate:    s.Audio.SampleRate,
		Channels:      s.Audio.Channels,
		BitsPerSample: s.Audio.BitsPerSample,
	}
}

// TurnConfig returns the orchestrator parameters for this configuration.
func (s *Spec) TurnConfig() turn.Config {
	cfg := turn.DefaultConfig()
	cfg.Monitor = audio.MonitorConfig{Interval: s.Turn.LevelInterval, Threshold: s.Turn.SpeechThreshold}
	cfg.SilenceTimeout = s.Turn.SilenceTimeout
	cfg.MinUtteranceBytes = s.Turn.MinUtteranceBytes
	cfg.Format = s.AudioFormat()
	if s.Turn.Greeting != "" {
		cfg.Greeting = s.Turn.Greeting
	}
	if s.Turn.MissingTranscript != "" {
		cfg.MissingTranscript = s.Turn.MissingTranscript
	}
	cfg.Synthesis = tts.SynthesisConfig{
		Voice:  s.TTS.Voice,
		Format: tts.FormatMP3,
		Speed:  s.TTS.Speed,
		Model:  s.TTS.Model,
	}
	return cfg
}

// PromptConfig converts the prompt overrides for prompt.NewComposer.
func (s *Spec) PromptConfig() prompt.Config {
	cfg := prompt.Config{Persona: s.Prompt.Persona, Template: s.Prompt.Template}
	if len(s.Prompt.Guidance) > 0 {
		cfg.Guidance = make(map[conversation.Phase]string, len(s.Prompt.Guidance))
		for phase, text := range s.Prompt.Guidance {
			cfg.Guidance[conversation.Phase(phase)] = text
		}
	}
	return cfg
}

// LoggerConfig converts the logging spec for logger.Configure.
func (s *Spec) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:        s.Logging.Level,
		Format:       s.Logging.Format,
		CommonFields: s.Logging.CommonFields,
	}
}
