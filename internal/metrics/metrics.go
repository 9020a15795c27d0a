// Package metrics defines the Prometheus instruments for the arena server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every instrument the server records. A nil *Metrics is
// valid and records nothing, so library code never has to check whether
// metrics are configured.
type Metrics struct {
	connectedPlayers prometheus.Gauge
	activeMatches    prometheus.Gauge
	matchesStarted   prometheus.Counter
	matchesEnded     prometheus.Counter
	messagesTotal    *prometheus.CounterVec
	protocolErrors   prometheus.Counter
	broadcastsTotal  *prometheus.CounterVec
	sendFailures     prometheus.Counter
	settlements      *prometheus.CounterVec
}

// New registers the arena metrics with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		connectedPlayers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Name:      "connected_players",
			Help:      "Number of connected player sessions",
		}),
		activeMatches: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "arena",
			Name:      "active_matches",
			Help:      "Number of matches currently waiting or active",
		}),
		matchesStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "matches_started_total",
			Help:      "Total matches that transitioned to active",
		}),
		matchesEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "matches_ended_total",
			Help:      "Total matches that finished",
		}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "messages_total",
			Help:      "Inbound messages processed by type",
		}, []string{"type"}),
		protocolErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "protocol_errors_total",
			Help:      "Inbound messages rejected as malformed or invalid",
		}),
		broadcastsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "broadcasts_total",
			Help:      "Match broadcasts sent by message type",
		}, []string{"type"}),
		sendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "send_failures_total",
			Help:      "Per-recipient delivery failures",
		}),
		settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "arena",
			Name:      "settlement_submissions_total",
			Help:      "Match result submissions by outcome",
		}, []string{"status"}),
	}
}

// SetConnectedPlayers records the current session count.
func (m *Metrics) SetConnectedPlayers(n int) {
	if m == nil {
		return
	}
	m.connectedPlayers.Set(float64(n))
}

// SetActiveMatches records the number of joinable or running matches.
func (m *Metrics) SetActiveMatches(n int) {
	if m == nil {
		return
	}
	m.activeMatches.Set(float64(n))
}

// IncMatchesStarted records a match going active.
func (m *Metrics) IncMatchesStarted() {
	if m == nil {
		return
	}
	m.matchesStarted.Inc()
}

// IncMatchesEnded records a match finishing.
func (m *Metrics) IncMatchesEnded() {
	if m == nil {
		return
	}
	m.matchesEnded.Inc()
}

// IncMessages records an inbound message by type.
func (m *Metrics) IncMessages(typ string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(typ).Inc()
}

// IncProtocolErrors records a rejected inbound message.
func (m *Metrics) IncProtocolErrors() {
	if m == nil {
		return
	}
	m.protocolErrors.Inc()
}

// IncBroadcasts records a match broadcast by message type.
func (m *Metrics) IncBroadcasts(typ string) {
	if m == nil {
		return
	}
	m.broadcastsTotal.WithLabelValues(typ).Inc()
}

// IncSendFailures records a failed delivery to one recipient.
func (m *Metrics) IncSendFailures() {
	if m == nil {
		return
	}
	m.sendFailures.Inc()
}

// IncSettlements records a settlement submission outcome ("ok" or "error").
func (m *Metrics) IncSettlements(status string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(status).Inc()
}
