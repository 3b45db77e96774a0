package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// periodRetention keeps monthly counters around long enough for reporting.
const periodRetention = 62 * 24 * time.Hour

// RedisMeter keeps a monthly minute counter in Redis so several interview
// processes share one allowance.
type RedisMeter struct {
	client *redis.Client
	prefix string
	limit  float64
	now    func() time.Time
}

// RedisMeterOption configures a RedisMeter.
type RedisMeterOption func(*RedisMeter)

// WithKeyPrefix sets the counter key prefix. Default is "interviewkit".
func WithKeyPrefix(prefix string) RedisMeterOption {
	return func(m *RedisMeter) {
		m.prefix = prefix
	}
}

// WithClock overrides the time source used to pick the period.
func WithClock(now func() time.Time) RedisMeterOption {
	return func(m *RedisMeter) {
		m.now = now
	}
}

// NewRedisMeter creates a meter allowing limit minutes per month.
func NewRedisMeter(client *redis.Client, limit float64, opts ...RedisMeterOption) *RedisMeter {
	m := &RedisMeter{client: client, prefix: "interviewkit", limit: limit, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *RedisMeter) key() string {
	return fmt.Sprintf("%s:usage:%s", m.prefix, Period(m.now()))
}

// Used returns the minutes recorded for the current period.
func (m *RedisMeter) Used(ctx context.Context) (float64, error) {
	used, err := m.client.Get(ctx, m.key()).Float64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get usage failed: %w", err)
	}
	return used, nil
}

// CanStartSession implements Meter.
func (m *RedisMeter) CanStartSession(ctx context.Context) error {
	if m.limit <= 0 {
		return nil
	}
	used, err := m.Used(ctx)
	if err != nil {
		return err
	}
	if used >= m.limit {
		return Denied(used, m.limit)
	}
	return nil
}

// AddSessionUsage implements Meter.
func (m *RedisMeter) AddSessionUsage(ctx context.Context, minutes float64) error {
	if minutes < 0 {
		return fmt.Errorf("negative usage: %f", minutes)
	}
	key := m.key()
	pipe := m.client.TxPipeline()
	pipe.IncrByFloat(ctx, key, minutes)
	pipe.Expire(ctx, key, periodRetention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline failed: %w", err)
	}
	return nil
}

var _ Meter = (*RedisMeter)(nil)
