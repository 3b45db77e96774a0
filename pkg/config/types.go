// Package config loads the InterviewConfig manifest.
//
// The file is a K8s-style manifest validated against an embedded JSON schema
// before it is decoded. Missing fields keep their defaults, and environment
// variables or CLI flags can override individual values through viper.
package config

import (
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Manifest identifiers.
const (
	APIVersion = "interviewkit.altairalabs.ai/v1alpha1"
	Kind       = "InterviewConfig"
)

// Storage and usage backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// InterviewConfig is the top-level manifest.
type InterviewConfig struct {
	APIVersion string            `yaml:"apiVersion"`
	Kind       string            `yaml:"kind"`
	Metadata   metav1.ObjectMeta `yaml:"metadata,omitempty"`
	Spec       Spec              `yaml:"spec"`
}

// Spec holds every tunable of an interview process.
type Spec struct {
	Audio     AudioSpec     `yaml:"audio"`
	Turn      TurnSpec      `yaml:"turn"`
	Endpoint  EndpointSpec  `yaml:"endpoint"`
	Prompt    PromptSpec    `yaml:"prompt"`
	TTS       TTSSpec       `yaml:"tts"`
	Storage   StorageSpec   `yaml:"storage"`
	Usage     UsageSpec     `yaml:"usage"`
	Logging   LoggingSpec   `yaml:"logging"`
	Metrics   MetricsSpec   `yaml:"metrics"`
	Telemetry TelemetrySpec `yaml:"telemetry"`
	Live      LiveSpec      `yaml:"live"`
}

// AudioSpec describes capture and playback formats.
type AudioSpec struct {
	SampleRate       int `yaml:"sampleRate"`
	Channels         int `yaml:"channels"`
	BitsPerSample    int `yaml:"bitsPerSample"`
	OutputSampleRate int `yaml:"outputSampleRate"`
}

// TurnSpec configures turn detection and the opening turn.
type TurnSpec struct {
	LevelInterval     time.Duration `yaml:"levelInterval"`
	SpeechThreshold   float64       `yaml:"speechThreshold"`
	SilenceTimeout    time.Duration `yaml:"silenceTimeout"`
	MinUtteranceBytes int           `yaml:"minUtteranceBytes"`
	Greeting          string        `yaml:"greeting,omitempty"`
	MissingTranscript string        `yaml:"missingTranscript,omitempty"`
}

// EndpointSpec locates the AI conversation endpoint.
type EndpointSpec struct {
	URL               string        `yaml:"url"`
	APIKeyEnv         string        `yaml:"apiKeyEnv,omitempty"`
	Timeout           time.Duration `yaml:"timeout"`
	VersionConstraint string        `yaml:"versionConstraint"`
	Feedback          bool          `yaml:"feedback"`
}

// PromptSpec overrides the built-in persona, template and phase guidance.
type PromptSpec struct {
	Persona  string            `yaml:"persona,omitempty"`
	Template string            `yaml:"template,omitempty"`
	Guidance map[string]string `yaml:"guidance,omitempty"`
}

// TTSSpec configures fallback speech synthesis.
type TTSSpec struct {
	Enabled   bool    `yaml:"enabled"`
	Provider  string  `yaml:"provider,omitempty"`
	Model     string  `yaml:"model,omitempty"`
	Voice     string  `yaml:"voice,omitempty"`
	Speed     float64 `yaml:"speed,omitempty"`
	APIKeyEnv string  `yaml:"apiKeyEnv,omitempty"`
}

// RedisSpec addresses a Redis server.
type RedisSpec struct {
	Addr     string `yaml:"addr,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Password string `yaml:"password,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// StorageSpec selects the persistence backend.
type StorageSpec struct {
	Type  string        `yaml:"type"`
	TTL   time.Duration `yaml:"ttl,omitempty"`
	Redis RedisSpec     `yaml:"redis,omitempty"`
}

// UsageSpec selects the usage meter and the monthly allowance.
type UsageSpec struct {
	Type         string    `yaml:"type"`
	LimitMinutes float64   `yaml:"limitMinutes"`
	Redis        RedisSpec `yaml:"redis,omitempty"`
}

// LoggingSpec configures runtime/logger.
type LoggingSpec struct {
	Level        string            `yaml:"level"`
	Format       string            `yaml:"format"`
	CommonFields map[string]string `yaml:"commonFields,omitempty"`
}

// MetricsSpec configures the Prometheus exporter. An empty address disables it.
type MetricsSpec struct {
	Addr string `yaml:"addr,omitempty"`
}

// TelemetrySpec configures OTLP tracing. An empty endpoint disables it.
type TelemetrySpec struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	ServiceName string `yaml:"serviceName,omitempty"`
}

// LiveSpec configures the live state server. An empty address disables it.
type LiveSpec struct {
	Addr string `yaml:"addr,omitempty"`
}
