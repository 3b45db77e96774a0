// Package usage gates interview starts on a monthly minute allowance and
// records the minutes each interview consumed.
package usage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kerrors "github.com/AltairaLabs/interviewkit/pkg/errors"
)

// ErrUsageDenied is returned when the allowance for the current period is exhausted.
var ErrUsageDenied = errors.New("usage allowance exhausted")

// Meter is the usage-accounting collaborator.
type Meter interface {
	// CanStartSession reports nil when a new interview may start.
	CanStartSession(ctx context.Context) error

	// AddSessionUsage records minutes consumed by a finished interview.
	AddSessionUsage(ctx context.Context, minutes float64) error
}

// Denied wraps ErrUsageDenied in a usage-kind contextual error.
func Denied(used, limit float64) error {
	return kerrors.New("usage", "CanStartSession",
		fmt.Errorf("%w: %.1f of %.1f minutes used", ErrUsageDenied, used, limit)).
		WithKind(kerrors.KindUsage)
}

// Period returns the accounting period for t, formatted as YYYY-MM in UTC.
func Period(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MemoryMeter tracks usage per calendar month in process memory.
// A non-positive limit disables the gate.
type MemoryMeter struct {
	mu    sync.Mutex
	limit float64
	used  map[string]float64
	now   func() time.Time
}

// NewMemoryMeter creates a meter allowing limit minutes per month.
func NewMemoryMeter(limit float64) *MemoryMeter {
	return &MemoryMeter{limit: limit, used: make(map[string]float64), now: time.Now}
}

// CanStartSession implements Meter.
func (m *MemoryMeter) CanStartSession(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	used := m.used[Period(m.now())]
	if m.limit > 0 && used >= m.limit {
		return Denied(used, m.limit)
	}
	return nil
}

// AddSessionUsage implements Meter.
func (m *MemoryMeter) AddSessionUsage(_ context.Context, minutes float64) error {
	if minutes < 0 {
		return fmt.Errorf("negative usage: %f", minutes)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used[Period(m.now())] += minutes
	return nil
}

// Used returns the minutes recorded for the current period.
func (m *MemoryMeter) Used() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.used[Period(m.now())]
}

// Unlimited is a Meter that always allows and records nothing.
type Unlimited struct{}

// CanStartSession implements Meter.
func (Unlimited) CanStartSession(context.Context) error { return nil }

// AddSessionUsage implements Meter.
func (Unlimited) AddSessionUsage(context.Context, float64) error { return nil }

var (
	_ Meter = (*MemoryMeter)(nil)
	_ Meter = Unlimited{}
)
