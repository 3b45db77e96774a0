package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every override environment variable, e.g.
// INTERVIEW_ENDPOINT_URL for endpoint.url.
const EnvPrefix = "INTERVIEW"

// Override keys. CLI flags bind to the same keys.
const (
	KeyEndpointURL       = "endpoint.url"
	KeyEndpointTimeout   = "endpoint.timeout"
	KeySpeechThreshold   = "turn.speechThreshold"
	KeySilenceTimeout    = "turn.silenceTimeout"
	KeyMinUtteranceBytes = "turn.minUtteranceBytes"
	KeyTTSEnabled        = "tts.enabled"
	KeyStorageType       = "storage.type"
	KeyStorageRedisAddr  = "storage.redis.addr"
	KeyUsageType         = "usage.type"
	KeyUsageRedisAddr    = "usage.redis.addr"
	KeyUsageLimit        = "usage.limitMinutes"
	KeyLogLevel          = "logging.level"
	KeyLogFormat         = "logging.format"
	KeyMetricsAddr       = "metrics.addr"
	KeyTelemetryEndpoint = "telemetry.endpoint"
	KeyLiveAddr          = "live.addr"
)

var overrideKeys = []string{
	KeyEndpointURL, KeyEndpointTimeout, KeySpeechThreshold, KeySilenceTimeout,
	KeyMinUtteranceBytes, KeyTTSEnabled, KeyStorageType, KeyStorageRedisAddr,
	KeyUsageType, KeyUsageRedisAddr, KeyUsageLimit, KeyLogLevel, KeyLogFormat,
	KeyMetricsAddr, KeyTelemetryEndpoint, KeyLiveAddr,
}

// NewViper returns a viper instance with every override key bound to its
// INTERVIEW_* environment variable.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range overrideKeys {
		_ = v.BindEnv(key, envName(key))
	}
	return v
}

// envName maps endpoint.url to INTERVIEW_ENDPOINT_URL and
// turn.silenceTimeout to INTERVIEW_TURN_SILENCETIMEOUT.
func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ApplyOverrides copies every key set in v onto cfg and revalidates it.
func ApplyOverrides(cfg *InterviewConfig, v *viper.Viper) error {
	s := &cfg.Spec
	for _, key := range overrideKeys {
		if !v.IsSet(key) {
			continue
		}
		switch key {
		case KeyEndpointURL:
			s.Endpoint.URL = v.GetString(key)
		case KeyEndpointTimeout:
			s.Endpoint.Timeout = v.GetDuration(key)
		case KeySpeechThreshold:
			s.Turn.SpeechThreshold = v.GetFloat64(key)
		case KeySilenceTimeout:
			s.Turn.SilenceTimeout = v.GetDuration(key)
		case KeyMinUtteranceBytes:
			s.Turn.MinUtteranceBytes = v.GetInt(key)
		case KeyTTSEnabled:
			s.TTS.Enabled = v.GetBool(key)
		case KeyStorageType:
			s.Storage.Type = v.GetString(key)
		case KeyStorageRedisAddr:
			s.Storage.Redis.Addr = v.GetString(key)
		case KeyUsageType:
			s.Usage.Type = v.GetString(key)
		case KeyUsageRedisAddr:
			s.Usage.Redis.Addr = v.GetString(key)
		case KeyUsageLimit:
			s.Usage.LimitMinutes = v.GetFloat64(key)
		case KeyLogLevel:
			s.Logging.Level = v.GetString(key)
		case KeyLogFormat:
			s.Logging.Format = v.GetString(key)
		case KeyMetricsAddr:
			s.Metrics.Addr = v.GetString(key)
		case KeyTelemetryEndpoint:
			s.Telemetry.Endpoint = v.GetString(key)
		case KeyLiveAddr:
			s.Live.Addr = v.GetString(key)
		}
	}
	return cfg.Validate()
}
