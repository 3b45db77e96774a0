package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/AltairaLabs/interviewkit/pkg/config"
	"github.com/AltairaLabs/interviewkit/runtime/providers/interviewer"
	"github.com/AltairaLabs/interviewkit/runtime/statestore"
	"github.com/AltairaLabs/interviewkit/runtime/tts"
	"github.com/AltairaLabs/interviewkit/runtime/usage"
)

// backends owns the Redis clients opened for the store and the meter.
type backends struct {
	clients []*redis.Client
}

func (b *backends) redis(spec config.RedisSpec) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     spec.Addr,
		DB:       spec.DB,
		Password: spec.Password,
	})
	b.clients = append(b.clients, client)
	return client
}

// Ping checks every opened Redis connection.
func (b *backends) Ping(ctx context.Context) error {
	var errs []error
	for _, c := range b.clients {
		if err := c.Ping(ctx).Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *backends) Close() error {
	var errs []error
	for _, c := range b.clients {
		errs = append(errs, c.Close())
	}
	b.clients = nil
	return errors.Join(errs...)
}

func (b *backends) store(spec config.StorageSpec) (statestore.Store, error) {
	switch spec.Type {
	case config.BackendMemory:
		return statestore.NewMemoryStore(), nil
	case config.BackendRedis:
		var opts []statestore.RedisOption
		if spec.TTL > 0 {
			opts = append(opts, statestore.WithTTL(spec.TTL))
		}
		if spec.Redis.Prefix != "" {
			opts = append(opts, statestore.WithPrefix(spec.Redis.Prefix))
		}
		return statestore.NewRedisStore(b.redis(spec.Redis), opts...), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", spec.Type)
	}
}

func (b *backends) meter(spec config.UsageSpec) (usage.Meter, error) {
	switch spec.Type {
	case config.BackendMemory:
		return usage.NewMemoryMeter(spec.LimitMinutes), nil
	case config.BackendRedis:
		var opts []usage.RedisMeterOption
		if spec.Redis.Prefix != "" {
			opts = append(opts, usage.WithKeyPrefix(spec.Redis.Prefix))
		}
		return usage.NewRedisMeter(b.redis(spec.Redis), spec.LimitMinutes, opts...), nil
	default:
		return nil, fmt.Errorf("unknown usage backend %q", spec.Type)
	}
}

// endpointClient builds the conversation endpoint client.
func endpointClient(spec config.EndpointSpec) (*interviewer.Client, error) {
	if spec.URL == "" {
		return nil, errors.New("endpoint.url is required (set it in the config file or INTERVIEW_ENDPOINT_URL)")
	}
	opts := []interviewer.Option{interviewer.WithTimeout(spec.Timeout)}
	if key := config.Secret(spec.APIKeyEnv); key != "" {
		opts = append(opts, interviewer.WithAPIKey(key))
	}
	if spec.VersionConstraint != "" {
		constraint, err := interviewer.ParseVersionConstraint(spec.VersionConstraint)
		if err != nil {
			return nil, err
		}
		opts = append(opts, interviewer.WithVersionConstraints(constraint))
	}
	return interviewer.NewClient(spec.URL, opts...)
}

// synthesizer returns the fallback TTS service, or nil when disabled.
func synthesizer(spec config.TTSSpec) (tts.Service, error) {
	if !spec.Enabled {
		return nil, nil
	}
	key := config.Secret(spec.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("tts is enabled but %s is not set", spec.APIKeyEnv)
	}
	return tts.NewOpenAI(key, tts.WithOpenAIModel(spec.Model)), nil
}
