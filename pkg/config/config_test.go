package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AltairaLabs/interviewkit/runtime/conversation"
	"github.com/AltairaLabs/interviewkit/runtime/turn"
)

const fullManifest = `apiVersion: interviewkit.altairalabs.ai/v1alpha1
kind: InterviewConfig
metadata:
  name: campus-practice
  labels:
    team: careers
spec:
  turn:
    silenceTimeout: 2s
    speechThreshold: 0.08
    greeting: "Welcome! Please introduce yourself."
  endpoint:
    url: https://interview.example.com/v1
    timeout: 45s
  prompt:
    guidance:
      closing: "Thank the candidate warmly."
  storage:
    type: redis
    ttl: 720h
    redis:
      addr: redis:6379
      prefix: practice
  usage:
    limitMinutes: 120
  logging:
    level: debug
    format: json
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	s := cfg.Spec
	assert.Equal(t, 16000, s.Audio.SampleRate)
	assert.Equal(t, 1, s.Audio.Channels)
	assert.Equal(t, 16, s.Audio.BitsPerSample)
	assert.Equal(t, 100*time.Millisecond, s.Turn.LevelInterval)
	assert.InDelta(t, 0.05, s.Turn.SpeechThreshold, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, s.Turn.SilenceTimeout)
	assert.Equal(t, 8000, s.Turn.MinUtteranceBytes)
	assert.Equal(t, 60*time.Second, s.Endpoint.Timeout)
	assert.Equal(t, ">= 1.0.0, < 2.0.0", s.Endpoint.VersionConstraint)
	assert.Equal(t, BackendMemory, s.Storage.Type)
	assert.Equal(t, BackendMemory, s.Usage.Type)
	assert.InDelta(t, 60.0, s.Usage.LimitMinutes, 1e-9)
	assert.Equal(t, "info", s.Logging.Level)
	assert.Equal(t, "text", s.Logging.Format)

	tc, want := s.TurnConfig(), turn.DefaultConfig()
	assert.Equal(t, want.Monitor, tc.Monitor)
	assert.Equal(t, want.Format, tc.Format)
	assert.Equal(t, want.Greeting, tc.Greeting)
	assert.Equal(t, want.Synthesis.Voice, tc.Synthesis.Voice)
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeFile(t, fullManifest))
	require.NoError(t, err)

	assert.Equal(t, "campus-practice", cfg.Metadata.Name)
	assert.Equal(t, "careers", cfg.Metadata.Labels["team"])

	s := cfg.Spec
	assert.Equal(t, 2*time.Second, s.Turn.SilenceTimeout)
	assert.InDelta(t, 0.08, s.Turn.SpeechThreshold, 1e-9)
	assert.Equal(t, 100*time.Millisecond, s.Turn.LevelInterval, "defaults survive partial sections")
	assert.Equal(t, 8000, s.Turn.MinUtteranceBytes)
	assert.Equal(t, "https://interview.example.com/v1", s.Endpoint.URL)
	assert.Equal(t, 45*time.Second, s.Endpoint.Timeout)
	assert.Equal(t, DefaultAPIKeyEnv, s.Endpoint.APIKeyEnv)
	assert.Equal(t, BackendRedis, s.Storage.Type)
	assert.Equal(t, 720*time.Hour, s.Storage.TTL)
	assert.Equal(t, "redis:6379", s.Storage.Redis.Addr)
	assert.Equal(t, "practice", s.Storage.Redis.Prefix)
	assert.Equal(t, BackendMemory, s.Usage.Type)
	assert.InDelta(t, 120.0, s.Usage.LimitMinutes, 1e-9)

	tc := s.TurnConfig()
	assert.Equal(t, "Welcome! Please introduce yourself.", tc.Greeting)
	assert.Equal(t, turn.DefaultMissingTranscript, tc.MissingTranscript)
	assert.Equal(t, 2*time.Second, tc.SilenceTimeout)

	pc := s.PromptConfig()
	assert.Equal(t, "Thank the candidate warmly.", pc.Guidance[conversation.PhaseClosing])

	lc := s.LoggerConfig()
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "json", lc.Format)
}

func TestLoad_EmptyFilenameReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParse_SchemaViolations(t *testing.T) {
	header := "apiVersion: interviewkit.altairalabs.ai/v1alpha1\nkind: InterviewConfig\n"
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"wrong kind", "apiVersion: interviewkit.altairalabs.ai/v1alpha1\nkind: Arena\nspec: {}\n", "kind"},
		{"missing spec", header, "spec"},
		{"threshold out of range", header + "spec:\n  turn:\n    speechThreshold: 1.5\n", "speechThreshold"},
		{"bad duration", header + "spec:\n  turn:\n    silenceTimeout: soon\n", "silenceTimeout"},
		{"unknown backend", header + "spec:\n  storage:\n    type: postgres\n", "type"},
		{"unknown field", header + "spec:\n  turn:\n    silence: 2s\n", "silence"},
		{"8-bit audio", header + "spec:\n  audio:\n    bitsPerSample: 8\n", "bitsPerSample"},
		{"unknown phase guidance", header + "spec:\n  prompt:\n    guidance:\n      hobbies: chat\n", "guidance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not match schema")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("spec: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*InterviewConfig)
		wantErr string
	}{
		{"redis storage without addr", func(c *InterviewConfig) { c.Spec.Storage.Type = BackendRedis }, "storage.redis.addr"},
		{"redis usage without addr", func(c *InterviewConfig) { c.Spec.Usage.Type = BackendRedis }, "usage.redis.addr"},
		{"unknown backend", func(c *InterviewConfig) { c.Spec.Usage.Type = "sqlite" }, "usage.type"},
		{"relative endpoint", func(c *InterviewConfig) { c.Spec.Endpoint.URL = "interview/v1" }, "endpoint.url"},
		{"bad constraint", func(c *InterviewConfig) { c.Spec.Endpoint.VersionConstraint = "one point oh" }, "versionConstraint"},
		{"tts without key", func(c *InterviewConfig) {
			c.Spec.TTS.Enabled = true
			c.Spec.TTS.APIKeyEnv = ""
		}, "tts.apiKeyEnv"},
		{"zero silence timeout", func(c *InterviewConfig) { c.Spec.Turn.SilenceTimeout = -time.Second }, "silence timeout"},
		{"wrong kind", func(c *InterviewConfig) { c.Kind = "Other" }, "kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSchemaIsEmbedded(t *testing.T) {
	schema := Schema()
	assert.Contains(t, string(schema), `"InterviewConfig"`)
	schema[0] = 'x'
	assert.NotEqual(t, schema[0], Schema()[0])
}
