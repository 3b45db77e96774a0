package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/Masterminds/semver/v3"
)

// Validate performs the checks that span several fields.
func (c *InterviewConfig) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.APIVersion != APIVersion {
		add("apiVersion must be %q, got %q", APIVersion, c.APIVersion)
	}
	if c.Kind != Kind {
		add("kind must be %q, got %q", Kind, c.Kind)
	}

	s := &c.Spec
	if err := s.TurnConfig().Validate(); err != nil {
		add("turn: %w", err)
	}
	if s.Endpoint.URL != "" {
		if u, err := url.Parse(s.Endpoint.URL); err != nil || u.Scheme == "" || u.Host == "" {
			add("endpoint.url %q is not an absolute URL", s.Endpoint.URL)
		}
	}
	if s.Endpoint.VersionConstraint != "" {
		if _, err := semver.NewConstraint(s.Endpoint.VersionConstraint); err != nil {
			add("endpoint.versionConstraint: %w", err)
		}
	}
	if s.Endpoint.Timeout < 0 {
		add("endpoint.timeout must not be negative")
	}
	for name, backend := range map[string]string{"storage.type": s.Storage.Type, "usage.type": s.Usage.Type} {
		if backend != BackendMemory && backend != BackendRedis {
			add("%s must be %q or %q, got %q", name, BackendMemory, BackendRedis, backend)
		}
	}
	if s.Storage.Type == BackendRedis && s.Storage.Redis.Addr == "" {
		add("storage.redis.addr is required for the redis backend")
	}
	if s.Usage.Type == BackendRedis && s.Usage.Redis.Addr == "" {
		add("usage.redis.addr is required for the redis backend")
	}
	if s.Usage.LimitMinutes < 0 {
		add("usage.limitMinutes must not be negative")
	}
	if s.TTS.Enabled && s.TTS.APIKeyEnv == "" {
		add("tts.apiKeyEnv is required when tts is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}
	return nil
}
