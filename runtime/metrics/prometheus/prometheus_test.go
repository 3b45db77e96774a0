package prometheus

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AltairaLabs/interviewkit/runtime/events"
)

func TestRecordSessionStartEnd(t *testing.T) {
	sessionsActive.Set(0)

	RecordSessionStart()
	RecordSessionStart()
	assert.Equal(t, 2.0, testutil.ToFloat64(sessionsActive))

	RecordSessionEnd(120)
	assert.Equal(t, 1.0, testutil.ToFloat64(sessionsActive))
	assert.Equal(t, 1, testutil.CollectAndCount(sessionDuration))
}

func TestRecordTurnFailure(t *testing.T) {
	turnFailuresTotal.Reset()

	RecordTurnFailure("network", false)
	RecordTurnFailure("network", false)
	RecordTurnFailure("device", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(turnFailuresTotal.WithLabelValues("network", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(turnFailuresTotal.WithLabelValues("device", "true")))
}

func TestMetricsListener(t *testing.T) {
	turnsTotal.Reset()
	countdownsTotal.Reset()
	playbacksTotal.Reset()
	stateTransitionsTotal.Reset()
	sessionsActive.Set(0)

	l := NewMetricsListener()
	handle := l.Listener()

	handle(&events.Event{Type: events.EventSessionStarted, Data: events.SessionStartedData{}})
	handle(&events.Event{Type: events.EventCountdownArmed, Data: events.CountdownArmedData{}})
	handle(&events.Event{Type: events.EventCountdownCancelled, Data: events.CountdownCancelledData{}})
	handle(&events.Event{Type: events.EventCountdownArmed, Data: events.CountdownArmedData{}})
	handle(&events.Event{
		Type: events.EventStateChanged,
		Data: events.StateChangedData{From: "recording", To: "processing"},
	})
	handle(&events.Event{
		Type: events.EventTurnCompleted,
		Data: events.TurnCompletedData{Phase: "experience", Latency: 2 * time.Second},
	})
	handle(&events.Event{Type: events.EventPlaybackStarted, Data: events.PlaybackStartedData{Synthesized: true}})
	handle(&events.Event{Type: events.EventPlaybackStarted, Data: events.PlaybackStartedData{}})
	handle(&events.Event{Type: events.EventPlaybackFinished, Data: events.PlaybackFinishedData{}})

	assert.Equal(t, 1.0, testutil.ToFloat64(sessionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(countdownsTotal.WithLabelValues(outcomeArmed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(countdownsTotal.WithLabelValues(outcomeCancelled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(stateTransitionsTotal.WithLabelValues("recording", "processing")))
	assert.Equal(t, 1.0, testutil.ToFloat64(turnsTotal.WithLabelValues("experience")))
	assert.Equal(t, 1.0, testutil.ToFloat64(playbacksTotal.WithLabelValues(sourceSynthesized)))
	assert.Equal(t, 1.0, testutil.ToFloat64(playbacksTotal.WithLabelValues(sourceEndpoint)))
}

func TestMetricsListener_IgnoresMismatchedData(t *testing.T) {
	turnsTotal.Reset()
	NewMetricsListener().Handle(&events.Event{Type: events.EventTurnCompleted, Data: events.StateChangedData{}})
	assert.Equal(t, 0, testutil.CollectAndCount(turnsTotal))
}

func TestExporterHandler(t *testing.T) {
	RecordUtteranceRejected()

	e := NewExporter(":0")
	srv := httptest.NewServer(e.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "interviewkit_utterances_rejected_total")

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExporterHealthCheckFailure(t *testing.T) {
	e := NewExporter(":0",
		WithRegistry(prometheus.NewRegistry()),
		WithHealthCheck(func() error { return errors.New("microphone lost") }),
	)
	srv := httptest.NewServer(e.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), "microphone lost")
}

func TestExporterServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	e := NewExporter(ln.Addr().String(), WithRegistry(prometheus.NewRegistry()))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("exporter did not shut down")
	}
}
