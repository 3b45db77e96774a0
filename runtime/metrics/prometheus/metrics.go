// Package prometheus provides Prometheus metrics exporters for interview sessions.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "interviewkit"

var (
	// sessionsActive is a gauge of interviews currently running.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of interviews currently running",
		},
	)

	// sessionDuration is a histogram of interview length.
	sessionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Histogram of interview duration in seconds",
			Buckets:   []float64{30, 60, 120, 300, 600, 900, 1200, 1800, 3600},
		},
	)

	// turnsTotal counts answered turns by phase.
	turnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Total number of conversational turns answered",
		},
		[]string{"phase"},
	)

	// turnLatency is a histogram of endpoint round-trip time.
	turnLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_seconds",
			Help:      "Latency of conversation endpoint calls in seconds",
			Buckets:   []float64{.25, .5, 1, 2, 3, 5, 8, 13, 21, 34, 60},
		},
	)

	// turnFailuresTotal counts failed turns by error kind.
	turnFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_failures_total",
			Help:      "Total number of failed turns",
		},
		[]string{"kind", "fatal"},
	)

	// utterancesRejectedTotal counts utterances below the size floor.
	utterancesRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "utterances_rejected_total",
			Help:      "Total number of utterances discarded as too short",
		},
	)

	// countdownsTotal counts silence countdown transitions.
	countdownsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "countdowns_total",
			Help:      "Total number of silence countdowns by outcome",
		},
		[]string{"outcome"}, // outcome: armed, cancelled
	)

	// playbacksTotal counts reply playbacks by audio source.
	playbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "playbacks_total",
			Help:      "Total number of reply playbacks",
		},
		[]string{"source"}, // source: endpoint, synthesized
	)

	// stateTransitionsTotal counts orchestrator state changes.
	stateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Total number of orchestrator state transitions",
		},
		[]string{"from", "to"},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		sessionsActive,
		sessionDuration,
		turnsTotal,
		turnLatency,
		turnFailuresTotal,
		utterancesRejectedTotal,
		countdownsTotal,
		playbacksTotal,
		stateTransitionsTotal,
	}
)

// RecordSessionStart records an interview start.
func RecordSessionStart() {
	sessionsActive.Inc()
}

// RecordSessionEnd records an interview end.
func RecordSessionEnd(durationSeconds float64) {
	sessionsActive.Dec()
	sessionDuration.Observe(durationSeconds)
}

// RecordTurn records an answered turn.
func RecordTurn(phase string, latencySeconds float64) {
	turnsTotal.WithLabelValues(phase).Inc()
	turnLatency.Observe(latencySeconds)
}

// RecordTurnFailure records a failed turn.
func RecordTurnFailure(kind string, fatal bool) {
	f := "false"
	if fatal {
		f = "true"
	}
	turnFailuresTotal.WithLabelValues(kind, f).Inc()
}

// RecordUtteranceRejected records a discarded utterance.
func RecordUtteranceRejected() {
	utterancesRejectedTotal.Inc()
}

// RecordCountdown records a countdown transition.
func RecordCountdown(outcome string) {
	countdownsTotal.WithLabelValues(outcome).Inc()
}

// RecordPlayback records a reply playback.
func RecordPlayback(source string) {
	playbacksTotal.WithLabelValues(source).Inc()
}

// RecordStateTransition records an orchestrator state change.
func RecordStateTransition(from, to string) {
	stateTransitionsTotal.WithLabelValues(from, to).Inc()
}
