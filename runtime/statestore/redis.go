package statestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = 30 * 24 * time.Hour
	defaultPrefix = "interviewkit"
)

// RedisStore provides a Redis-backed implementation of Store.
// Records expire after the configured TTL, refreshed on every write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets the time-to-live for session records.
// Default is 30 days. Set to 0 for no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for Redis keys.
// Default is "interviewkit".
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// NewRedisStore creates a new Redis-backed store.
//
// Example:
//
//	store := NewRedisStore(
//	    redis.NewClient(&redis.Options{Addr: "localhost:6379"}),
//	    WithTTL(7 * 24 * time.Hour),
//	)
func NewRedisStore(client *redis.Client, opts ...RedisOption) *RedisStore {
	store := &RedisStore{
		client: client,
		ttl:    defaultTTL,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *RedisStore) key(ref, field string) string {
	return fmt.Sprintf("%s:session:%s:%s", s.prefix, ref, field)
}

// SaveTranscript replaces the stored transcript.
func (s *RedisStore) SaveTranscript(ctx context.Context, sessionRef, transcript string) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(sessionRef, "transcript"), transcript, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set transcript failed: %w", err)
	}
	return nil
}

// AppendQuestion pushes a question onto the session's question list.
func (s *RedisStore) AppendQuestion(ctx context.Context, sessionRef, question string) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	key := s.key(sessionRef, "questions")
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, question)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

// SaveFeedback replaces the stored feedback document.
func (s *RedisStore) SaveFeedback(ctx context.Context, sessionRef string, feedback json.RawMessage) error {
	if err := validRef(sessionRef); err != nil {
		return err
	}
	if !json.Valid(feedback) {
		return errors.New("feedback is not valid JSON")
	}
	if err := s.client.Set(ctx, s.key(sessionRef, "feedback"), []byte(feedback), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set feedback failed: %w", err)
	}
	return nil
}

// GetTranscript returns the stored transcript.
func (s *RedisStore) GetTranscript(ctx context.Context, sessionRef string) (string, error) {
	if err := validRef(sessionRef); err != nil {
		return "", err
	}
	v, err := s.client.Get(ctx, s.key(sessionRef, "transcript")).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return v, nil
}

// GetQuestions returns the recorded questions in order.
func (s *RedisStore) GetQuestions(ctx context.Context, sessionRef string) ([]string, error) {
	if err := validRef(sessionRef); err != nil {
		return nil, err
	}
	questions, err := s.client.LRange(ctx, s.key(sessionRef, "questions"), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange failed: %w", err)
	}
	if len(questions) == 0 {
		return nil, ErrNotFound
	}
	return questions, nil
}

// GetFeedback returns the stored feedback document.
func (s *RedisStore) GetFeedback(ctx context.Context, sessionRef string) (json.RawMessage, error) {
	if err := validRef(sessionRef); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(sessionRef, "feedback")).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return json.RawMessage(data), nil
}

var _ Store = (*RedisStore)(nil)
