package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMonitor(t *testing.T) *Monitor {
	t.Helper()
	m, err := NewMonitor(DefaultMonitorConfig())
	require.NoError(t, err)
	return m
}

func TestMonitorConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultMonitorConfig().Validate())

	err := MonitorConfig{Interval: 0, Threshold: 0.05}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Interval", verr.Field)

	err = MonitorConfig{Interval: time.Millisecond, Threshold: 1.5}.Validate()
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Threshold", verr.Field)
	assert.Equal(t, "invalid Threshold: must be between 0.0 and 1.0", err.Error())

	_, err = NewMonitor(MonitorConfig{})
	assert.Error(t, err)
}

func TestMonitor_Classification(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	assert.False(t, m.Observe(0.05, 0, now).Speaking, "threshold is exclusive")
	assert.True(t, m.Observe(0.051, 0, now).Speaking)
}

func TestMonitor_ArmsOnSpeechToSilenceWithBufferedAudio(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	obs := m.Observe(0.3, 100, now)
	assert.Equal(t, DecisionNone, obs.Decision)
	assert.True(t, m.HasSpoken())

	obs = m.Observe(0.01, 100, now.Add(100*time.Millisecond))
	assert.Equal(t, DecisionArm, obs.Decision)
	assert.True(t, m.Pending())
}

func TestMonitor_NoArmOnSilenceToSilence(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	m.Observe(0.3, 100, now)
	require.Equal(t, DecisionArm, m.Observe(0.0, 100, now).Decision)
	m.Disarm()

	for i := 0; i < 20; i++ {
		obs := m.Observe(0.0, 100, now.Add(time.Duration(i)*100*time.Millisecond))
		assert.Equal(t, DecisionNone, obs.Decision, "sample %d", i)
	}
	assert.False(t, m.Pending())
}

func TestMonitor_NoArmWithoutPriorSpeech(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		assert.Equal(t, DecisionNone, m.Observe(0.0, 1000, now).Decision)
	}
	assert.False(t, m.HasSpoken())
}

func TestMonitor_NoArmWithEmptyBuffer(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	m.Observe(0.3, 0, now)
	assert.Equal(t, DecisionNone, m.Observe(0.0, 0, now).Decision)
	assert.False(t, m.Pending())
}

func TestMonitor_SingleCountdownPending(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	m.Observe(0.3, 10, now)
	require.Equal(t, DecisionArm, m.Observe(0.0, 10, now).Decision)

	// Without a speaking sample in between there is no second transition,
	// and a pending countdown blocks re-arming.
	m.speaking = true
	assert.Equal(t, DecisionNone, m.Observe(0.0, 10, now).Decision)
}

func TestMonitor_CancelOnResumedSpeech(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	m.Observe(0.3, 10, now)
	require.Equal(t, DecisionArm, m.Observe(0.0, 10, now).Decision)

	obs := m.Observe(0.2, 10, now.Add(200*time.Millisecond))
	assert.Equal(t, DecisionCancel, obs.Decision)
	assert.False(t, m.Pending())

	assert.Equal(t, DecisionNone, m.Observe(0.2, 10, now).Decision, "cancel is reported once")
	assert.Equal(t, DecisionArm, m.Observe(0.0, 10, now).Decision, "re-arms on the next pause")
}

func TestMonitor_SilenceElapsed(t *testing.T) {
	m := newTestMonitor(t)
	start := time.Now()

	assert.Zero(t, m.SilenceElapsed(start))

	m.Observe(0.3, 10, start)
	m.Observe(0.0, 10, start)
	m.Observe(0.0, 10, start.Add(100*time.Millisecond))
	assert.Equal(t, 700*time.Millisecond, m.SilenceElapsed(start.Add(700*time.Millisecond)))

	m.Observe(0.3, 10, start.Add(800*time.Millisecond))
	assert.Zero(t, m.SilenceElapsed(start.Add(900*time.Millisecond)), "speech resets the timer")
}

func TestMonitor_Reset(t *testing.T) {
	m := newTestMonitor(t)
	now := time.Now()

	m.Observe(0.3, 10, now)
	m.Observe(0.0, 10, now)
	m.Reset()

	assert.False(t, m.HasSpoken())
	assert.False(t, m.Pending())
	assert.Zero(t, m.SilenceElapsed(now.Add(time.Second)))
	assert.Equal(t, DecisionNone, m.Observe(0.0, 10, now).Decision)
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "arm", DecisionArm.String())
	assert.Equal(t, "cancel", DecisionCancel.String())
	assert.Equal(t, "none", DecisionNone.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
