package audio

import (
	"time"
)

// Default monitor parameters.
const (
	DefaultMonitorInterval = 100 * time.Millisecond
	DefaultSpeechThreshold = 0.05
)

// MonitorConfig configures the voice activity monitor.
type MonitorConfig struct {
	// Interval is how often the level is sampled (default: 100ms).
	Interval time.Duration

	// Threshold is the level above which a sample counts as speech (default: 0.05).
	Threshold float64
}

// DefaultMonitorConfig returns the standard sampling interval and threshold.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:  DefaultMonitorInterval,
		Threshold: DefaultSpeechThreshold,
	}
}

// Validate checks that the configuration is usable.
func (c MonitorConfig) Validate() error {
	if c.Interval <= 0 {
		return &ValidationError{Field: "Interval", Message: "must be positive"}
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return &ValidationError{Field: "Threshold", Message: "must be between 0.0 and 1.0"}
	}
	return nil
}

// ValidationError represents a parameter validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Message
}

// Decision is what the monitor asks the turn loop to do with the silence countdown.
type Decision int

const (
	// DecisionNone leaves the countdown as it is.
	DecisionNone Decision = iota
	// DecisionArm starts the silence countdown.
	DecisionArm
	// DecisionCancel cancels the pending countdown because speech resumed.
	DecisionCancel
)

// String returns a human-readable representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionNone:
		return "none"
	case DecisionArm:
		return "arm"
	case DecisionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// Observation is the classification of one level sample.
type Observation struct {
	Level    float64
	Speaking bool
	Decision Decision
}

// Monitor classifies level samples as speech or silence and tracks the
// silence timer state for the current recording session.
//
// The countdown is armed only on a speaking-to-silence transition, after
// speech has occurred in the session, while audio is buffered, and when no
// countdown is already pending.
type Monitor struct {
	cfg MonitorConfig

	speaking     bool
	hasSpoken    bool
	pending      bool
	silenceSince time.Time
}

// NewMonitor creates a Monitor with the given configuration.
func NewMonitor(cfg MonitorConfig) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Monitor{cfg: cfg}, nil
}

// Config returns the monitor configuration.
func (m *Monitor) Config() MonitorConfig {
	return m.cfg
}

// Observe classifies a sample taken at now with buffered bytes of audio held.
func (m *Monitor) Observe(level float64, buffered int, now time.Time) Observation {
	speaking := level > m.cfg.Threshold
	wasSpeaking := m.speaking
	m.speaking = speaking

	obs := Observation{Level: level, Speaking: speaking}

	if speaking {
		m.hasSpoken = true
		m.silenceSince = time.Time{}
		if m.pending {
			m.pending = false
			obs.Decision = DecisionCancel
		}
		return obs
	}

	if !wasSpeaking {
		return obs
	}

	m.silenceSince = now
	if m.hasSpoken && buffered > 0 && !m.pending {
		m.pending = true
		obs.Decision = DecisionArm
	}
	return obs
}

// Disarm clears the pending countdown after it fired or was consumed.
func (m *Monitor) Disarm() {
	m.pending = false
}

// Pending reports whether a countdown is armed.
func (m *Monitor) Pending() bool {
	return m.pending
}

// HasSpoken reports whether speech occurred in the current session.
func (m *Monitor) HasSpoken() bool {
	return m.hasSpoken
}

// SilenceElapsed returns how long continuous silence after speech has lasted.
// It is zero while speaking or before any speech-to-silence transition.
func (m *Monitor) SilenceElapsed(now time.Time) time.Duration {
	if m.silenceSince.IsZero() {
		return 0
	}
	return now.Sub(m.silenceSince)
}

// Reset returns the monitor to its initial state for a new recording session.
func (m *Monitor) Reset() {
	m.speaking = false
	m.hasSpoken = false
	m.pending = false
	m.silenceSince = time.Time{}
}
