package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/AltairaLabs/interviewkit/pkg/errors"
)

func TestPeriod(t *testing.T) {
	assert.Equal(t, "2026-03", Period(time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)))
	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "2026-02", Period(time.Date(2026, 3, 1, 5, 0, 0, 0, tokyo)))
}

func TestDeniedIsFatalUsageKind(t *testing.T) {
	err := Denied(60, 60)
	assert.ErrorIs(t, err, ErrUsageDenied)
	assert.Equal(t, kerrors.KindUsage, kerrors.KindOf(err))
	assert.True(t, kerrors.IsFatal(err))
}

func TestMemoryMeter(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryMeter(10)

	require.NoError(t, m.CanStartSession(ctx))
	require.NoError(t, m.AddSessionUsage(ctx, 4.5))
	require.NoError(t, m.CanStartSession(ctx))
	require.NoError(t, m.AddSessionUsage(ctx, 5.5))

	assert.InDelta(t, 10.0, m.Used(), 1e-9)
	assert.ErrorIs(t, m.CanStartSession(ctx), ErrUsageDenied)
	assert.Error(t, m.AddSessionUsage(ctx, -1))
}

func TestMemoryMeter_NewPeriodResets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
	m := NewMemoryMeter(1)
	m.now = func() time.Time { return now }

	require.NoError(t, m.AddSessionUsage(ctx, 2))
	assert.Error(t, m.CanStartSession(ctx))

	now = now.AddDate(0, 0, 1)
	assert.NoError(t, m.CanStartSession(ctx))
}

func TestMemoryMeter_NoLimit(t *testing.T) {
	m := NewMemoryMeter(0)
	require.NoError(t, m.AddSessionUsage(context.Background(), 1000))
	assert.NoError(t, m.CanStartSession(context.Background()))
}

func TestUnlimited(t *testing.T) {
	var m Meter = Unlimited{}
	assert.NoError(t, m.CanStartSession(context.Background()))
	assert.NoError(t, m.AddSessionUsage(context.Background(), 5))
}

func setupRedisMeter(t *testing.T, limit float64, opts ...RedisMeterOption) (*RedisMeter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisMeter(client, limit, opts...), mr
}

func TestRedisMeter(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	m, mr := setupRedisMeter(t, 3, WithClock(func() time.Time { return fixed }), WithKeyPrefix("test"))

	used, err := m.Used(ctx)
	require.NoError(t, err)
	assert.Zero(t, used)

	require.NoError(t, m.CanStartSession(ctx))
	require.NoError(t, m.AddSessionUsage(ctx, 1.25))
	require.NoError(t, m.AddSessionUsage(ctx, 1.75))

	assert.True(t, mr.Exists("test:usage:2026-05"))
	assert.Equal(t, periodRetention, mr.TTL("test:usage:2026-05"))

	used, err = m.Used(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, used, 1e-9)

	err = m.CanStartSession(ctx)
	assert.True(t, errors.Is(err, ErrUsageDenied))
}

func TestRedisMeter_ConnectionFailure(t *testing.T) {
	m, mr := setupRedisMeter(t, 10)
	mr.Close()

	err := m.CanStartSession(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUsageDenied)
}
