package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	CommandPlay   = "play"
	CommandJump   = "jump"
	CommandNew    = "new"
	CommandEnd    = "end"
	ResultApplied = "applied"
	ResultIgnored = "ignored"
	ResultFailed  = "failed"

	EndClosed  = "closed"
	EndExpired = "expired"
)

type Metrics struct {
	Commands       *prometheus.CounterVec
	SessionsOpened prometheus.Counter
	SessionsEnded  *prometheus.CounterVec
	FinishedGames  *prometheus.CounterVec
	HistoryLengths prometheus.Histogram
}

// NewMetrics registers the collectors on reg; pass prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Game commands by name and result",
		}, []string{"command", "result"}),
		SessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_opened_total",
			Help:      "Sessions created",
		}),
		SessionsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_ended_total",
			Help:      "Sessions removed, by reason. Expired counts only evictions done by the memory store",
		}, []string{"reason"}),
		FinishedGames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finished_games_total",
			Help:      "Moves that ended a game, by outcome",
		}, []string{"outcome"}),
		HistoryLengths: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "history_length",
			Help:      "History length after each applied move",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}

	reg.MustRegister(
		m.Commands,
		m.SessionsOpened,
		m.SessionsEnded,
		m.FinishedGames,
		m.HistoryLengths,
	)

	return m
}

func (that *Metrics) ObserveCommand(command, result string) {
	that.Commands.WithLabelValues(command, result).Inc()
}

func (that *Metrics) SessionOpened() {
	that.SessionsOpened.Inc()
}

func (that *Metrics) SessionClosed() {
	that.SessionsEnded.WithLabelValues(EndClosed).Inc()
}

func (that *Metrics) SessionsExpired(n int) {
	if n > 0 {
		that.SessionsEnded.WithLabelValues(EndExpired).Add(float64(n))
	}
}

func (that *Metrics) ObserveMove(historyLength int, outcome string) {
	that.HistoryLengths.Observe(float64(historyLength))

	if outcome != "" {
		that.FinishedGames.WithLabelValues(outcome).Inc()
	}
}
