package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ComputationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dominance_computations_total",
		Help: "Total number of dominance grid computations by status",
	}, []string{"status"})
	ComputationDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dominance_computation_duration_ms",
		Help:    "Dominance pipeline duration in milliseconds",
		Buckets: []float64{5, 10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	CellsComputed = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dominance_cells",
		Help:    "Number of grid cells per computation",
		Buckets: prometheus.ExponentialBuckets(100, 2, 10),
	})
	VotesPerComputation = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dominance_votes",
		Help:    "Number of weighted votes per computation",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	})
	RegionsPerComputation = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dominance_regions",
		Help:    "Number of extracted regions per computation",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
	})
)

func init() {
	prometheus.MustRegister(ComputationsTotal)
	prometheus.MustRegister(ComputationDurationMs)
	prometheus.MustRegister(CellsComputed)
	prometheus.MustRegister(VotesPerComputation)
	prometheus.MustRegister(RegionsPerComputation)
}

// Handler 登録済みメトリクスを /metrics で公開するハンドラー
func Handler() http.Handler { return promhttp.Handler() }
