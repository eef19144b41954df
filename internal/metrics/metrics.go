package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hamed0406/statusbot/internal/domain"
)

// Prometheus metrics for the status loop
var (
	Cycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statusbot_cycles_total",
			Help: "Poll cycles completed",
		},
	)

	PollFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statusbot_poll_failures_total",
			Help: "Polls that ended unreachable, by failure kind",
		},
		[]string{"kind"},
	)

	UpdateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "statusbot_channel_update_failures_total",
			Help: "Channel rename calls that failed",
		},
	)

	ServerReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statusbot_server_reachable",
			Help: "1 if the last poll reached the server, 0 otherwise",
		},
	)

	PlayersOnline = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statusbot_players_online",
			Help: "Players online at the last successful poll",
		},
	)

	PlayersMax = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "statusbot_players_max",
			Help: "Player limit at the last successful poll",
		},
	)

	PollLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "statusbot_poll_latency_seconds",
			Help:    "Time taken by successful status queries",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
	)
)

// ObservePoll records one poll outcome.
func ObservePoll(o domain.Outcome) {
	if !o.Reachable {
		ServerReachable.Set(0)
		PollFailures.WithLabelValues(string(o.Kind)).Inc()
		return
	}
	ServerReachable.Set(1)
	PlayersOnline.Set(float64(o.Players.Online))
	PlayersMax.Set(float64(o.Players.Max))
	PollLatency.Observe(o.Latency.Seconds())
}
