package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	AssetMutationCounter *prometheus.CounterVec

	SyncCounter        *prometheus.CounterVec
	SyncRunTimeSummary *prometheus.SummaryVec

	AuthAttemptCounter *prometheus.CounterVec

	StoreWriteErrorCount *prometheus.CounterVec
)

func init() {
	AssetMutationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_asset_mutations_total",
			Help: "A counter metric to measure asset add, update, remove and replace operations",
		},
		[]string{"operation", "result"},
	)

	SyncCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_sheets_sync_total",
			Help: "A counter metric to measure spreadsheet push and pull operations",
		},
		[]string{"direction", "result"},
	)

	SyncRunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "inventory_sheets_sync_duration_seconds",
			Help: "A summary metric to measure the time spent in each spreadsheet sync",
		},
		[]string{"direction", "result"},
	)

	AuthAttemptCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_auth_attempts_total",
			Help: "A counter metric to measure login and register attempts by outcome",
		},
		[]string{"method", "outcome"},
	)

	StoreWriteErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_store_write_error_count",
			Help: "A counter metric to measure failed writes to the local mirror",
		},
		[]string{"key"},
	)
}

func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveSync records one push or pull that started at start.
func ObserveSync(direction string, start time.Time, err error) {
	result := Result(err)
	SyncCounter.WithLabelValues(direction, result).Inc()
	SyncRunTimeSummary.WithLabelValues(direction, result).Observe(time.Since(start).Seconds())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
