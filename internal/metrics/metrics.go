package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dallebot",
			Name:      "commands_total",
			Help:      "Chat commands handled, by outcome",
		},
		[]string{"command", "status"},
	)

	ImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dallebot",
			Name:      "images_total",
			Help:      "Images relayed to the channel",
		},
		[]string{"kind"},
	)

	LedgerWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dallebot",
			Name:      "ledger_writes_total",
			Help:      "Ledger inserts, by result",
		},
		[]string{"status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dallebot",
			Name:      "upstream_duration_seconds",
			Help:      "Image API call duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"op"},
	)
)
